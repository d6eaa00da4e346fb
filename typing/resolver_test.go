package typing

import (
	"context"
	"testing"

	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

func findExpressionStatement(n *syntax.Node) *syntax.Node {
	if n.IsNil() {
		return nil
	}
	if n.Kind() == "expression_statement" && n.NamedChildCount() > 0 {
		return n.NamedChild(0)
	}
	for i := 0; i < n.NamedChildCount(); i++ {
		if found := findExpressionStatement(n.NamedChild(i)); !found.IsNil() {
			return found
		}
	}
	return nil
}

func TestGetArgumentTypeConstructorCallUsesCalleeName(t *testing.T) {
	p, err := syntax.NewParser(syntax.Cpp)
	if err != nil {
		t.Fatalf("creating parser: %v", err)
	}
	root, err := p.Parse(context.Background(), []byte(`
void f() {
    std::runtime_error("boom");
}
`))
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}

	expr := findExpressionStatement(root)
	if expr.IsNil() || expr.Kind() != "call_expression" {
		t.Fatalf("expected to find a call_expression, got %v", expr)
	}

	r := NewResolver(records.NewSymbolTable())
	got := r.GetArgumentType(expr, nil)
	if got != "std::runtime_error" {
		t.Fatalf("GetArgumentType = %q, want std::runtime_error", got)
	}
}
