package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codeviews/syntax"
)

func parse(t *testing.T, lang syntax.Language, src string) *syntax.Node {
	t.Helper()
	p, err := syntax.NewParser(lang)
	require.NoError(t, err)
	root, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return root
}

func TestExtractFunctionList(t *testing.T) {
	src := `
int main(void) {
    return 0;
}
`
	root := parse(t, syntax.C, src)
	res := New(syntax.C).Run(root)

	require.Len(t, res.Workspace.FunctionList, 1)
	assert.NotZero(t, res.Workspace.MainFunctionID)
	for k := range res.Workspace.FunctionList {
		assert.Equal(t, "main", k.Name)
	}
}

func TestExtractClassExtends(t *testing.T) {
	src := `
class Base {};
class Derived : public Base {
    void f();
};
`
	root := parse(t, syntax.Cpp, src)
	res := New(syntax.Cpp).Run(root)

	assert.Contains(t, res.Workspace.ClassList, "Base")
	assert.Contains(t, res.Workspace.ClassList, "Derived")
	assert.Equal(t, []string{"Base"}, res.Workspace.Extends["Derived"])
}

func TestExtractPreprocIfdefTakesDefinedBranch(t *testing.T) {
	src := `
#define FEATURE_X 1
#ifdef FEATURE_X
int enabled(void) { return 1; }
#else
int disabled(void) { return 0; }
#endif
`
	root := parse(t, syntax.C, src)
	res := New(syntax.C).Run(root)

	var names []string
	for k := range res.Workspace.FunctionList {
		names = append(names, k.Name)
	}
	assert.Contains(t, names, "enabled")
	assert.NotContains(t, names, "disabled")
}

func TestExtractLabelStatementMap(t *testing.T) {
	src := `
int f(void) {
    goto done;
done:
    return 0;
}
`
	root := parse(t, syntax.C, src)
	res := New(syntax.C).Run(root)
	assert.Contains(t, res.Workspace.LabelStatementMap, "done")
}
