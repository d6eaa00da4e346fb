package symtab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codeviews/syntax"
)

func parseC(t *testing.T, src string) *syntax.Node {
	t.Helper()
	p, err := syntax.NewParser(syntax.C)
	require.NoError(t, err)
	root, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return root
}

func TestBuildResolvesShadowedLocal(t *testing.T) {
	src := `
int f(int x) {
    int y = x + 1;
    {
        int x = 2;
        y = x;
    }
    return x;
}
`
	root := parseC(t, src)
	b := New(syntax.C)
	table := b.Build(root)
	assert.NotEmpty(t, table.Declaration)
	assert.NotEmpty(t, table.ScopeMap)
}

func TestBuildParametersVisibleInBody(t *testing.T) {
	src := `
int add(int a, int b) {
    return a + b;
}
`
	root := parseC(t, src)
	b := New(syntax.C)
	table := b.Build(root)

	var paramDecls int
	for _, name := range table.Declaration {
		if name == "a" || name == "b" {
			paramDecls++
		}
	}
	assert.Equal(t, 2, paramDecls)
}

func TestBuildExpandsChainedTypedefsPreservingStars(t *testing.T) {
	src := `
typedef int Base;
typedef Base *BasePtr;
typedef BasePtr *BasePtrPtr;
`
	root := parseC(t, src)
	b := New(syntax.C)
	table := b.Build(root)

	assert.Equal(t, "int", table.ExpandTypedef("Base"))
	assert.Equal(t, "int *", table.ExpandTypedef("BasePtr"))
	assert.Equal(t, "int **", table.ExpandTypedef("BasePtrPtr"))
}

func TestBuildCollectsStructFieldTypes(t *testing.T) {
	src := `
struct Point {
    int x;
    int y;
};
`
	root := parseC(t, src)
	b := New(syntax.C)
	table := b.Build(root)

	typ, ok := table.FieldType("Point", "x")
	require.True(t, ok)
	assert.Equal(t, "int", typ)

	typ, ok = table.FieldType("Point", "y")
	require.True(t, ok)
	assert.Equal(t, "int", typ)
}

func TestFieldTypeResolvesThroughTypedefName(t *testing.T) {
	src := `
struct Point {
    int x;
};
typedef struct Point PointT;
`
	root := parseC(t, src)
	b := New(syntax.C)
	table := b.Build(root)

	typ, ok := table.FieldType("PointT", "x")
	require.True(t, ok)
	assert.Equal(t, "int", typ)
}
