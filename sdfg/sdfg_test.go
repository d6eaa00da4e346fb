package sdfg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codeviews/cfg"
	"github.com/viant/codeviews/extract"
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/symtab"
	"github.com/viant/codeviews/syntax"
)

func build(t *testing.T, src string) (*Graph, *cfg.Graph) {
	t.Helper()
	p, err := syntax.NewParser(syntax.C)
	require.NoError(t, err)
	root, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	res := extract.New(syntax.C).Run(root)
	table := symtab.New(syntax.C).Build(root)
	cfgGraph := cfg.New(syntax.C, res.Workspace, table).Build(root)

	eng := New(syntax.C, res.Workspace, table, Options{})
	return eng.Build(root, cfgGraph), cfgGraph
}

func TestComesFromEdgeFromDeclarationToUse(t *testing.T) {
	src := `
int f(void) {
    int x = 1;
    int y = x + 2;
    return y;
}
`
	graph, _ := build(t, src)

	var sawComesFrom bool
	for _, e := range graph.Edges {
		if e.Kind == records.ComesFrom {
			sawComesFrom = true
		}
	}
	assert.True(t, sawComesFrom, "expected at least one comesFrom edge")
}

func TestPointerModificationInjectsDefAtCallSite(t *testing.T) {
	src := `
void set(int *p) {
    *p = 5;
}

int f(void) {
    int x = 0;
    set(&x);
    return x;
}
`
	graph, cfgGraph := build(t, src)
	assert.NotNil(t, graph)

	var callStmt, returnStmt NodeId
	for _, n := range cfgGraph.Nodes {
		switch {
		case n.KindTag == "expression_statement" && n.Label == "set(&x);":
			callStmt = n.ID
		case n.KindTag == "return_statement" && n.Label == "return x;":
			returnStmt = n.ID
		}
	}
	require.NotZero(t, callStmt)
	require.NotZero(t, returnStmt)

	var sawDefFromCall bool
	for _, e := range graph.Edges {
		if e.Kind == records.ComesFrom && e.Source == callStmt && e.Target == returnStmt {
			sawDefFromCall = true
		}
	}
	assert.True(t, sawDefFromCall, "expected a comesFrom edge from set(&x); to return x;")
}
