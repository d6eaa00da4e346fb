package cfg

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codeviews/extract"
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/symtab"
	"github.com/viant/codeviews/syntax"
)

func buildGraph(t *testing.T, lang syntax.Language, src string) (*Graph, *records.Workspace) {
	t.Helper()
	p, err := syntax.NewParser(lang)
	require.NoError(t, err)
	root, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	res := extract.New(lang).Run(root)
	table := symtab.New(lang).Build(root)

	b := New(lang, res.Workspace, table)
	return b.Build(root), res.Workspace
}

func TestIfStatementEmitsPosNegEdges(t *testing.T) {
	src := `
int f(int x) {
    if (x > 0) {
        x = 1;
    } else {
        x = 2;
    }
    return x;
}
`
	graph, _ := buildGraph(t, syntax.C, src)

	var hasPos, hasNeg bool
	for _, e := range graph.Edges {
		if e.Kind == records.PosNext {
			hasPos = true
		}
		if e.Kind == records.NegNext {
			hasNeg = true
		}
	}
	assert.True(t, hasPos, "expected a pos_next edge")
	assert.True(t, hasNeg, "expected a neg_next edge")
}

func TestWhileLoopEmitsLoopControl(t *testing.T) {
	src := `
int f(int n) {
    while (n > 0) {
        n = n - 1;
    }
    return n;
}
`
	graph, _ := buildGraph(t, syntax.C, src)
	var sawLoopControl bool
	for _, e := range graph.Edges {
		if e.Kind == records.LoopControl {
			sawLoopControl = true
		}
	}
	assert.True(t, sawLoopControl)
}

func TestFunctionCallWiresInterproceduralEdges(t *testing.T) {
	src := `
int helper(int x) {
    return x + 1;
}

int main(void) {
    int y = helper(3);
    return y;
}
`
	graph, _ := buildGraph(t, syntax.C, src)

	var sawCall, sawReturn bool
	for _, e := range graph.Edges {
		if e.Kind == records.FunctionCall {
			sawCall = true
		}
		if e.Kind == records.FunctionReturn {
			sawReturn = true
		}
	}
	assert.True(t, sawCall, "expected a function_call edge")
	assert.True(t, sawReturn, "expected a function_return edge")
}

func TestStartNodePresentAndEdgeDeduplicated(t *testing.T) {
	src := `
int main(void) {
    return 0;
}
`
	graph, _ := buildGraph(t, syntax.C, src)

	var startSeen bool
	for _, n := range graph.Nodes {
		if n.ID == records.StartNodeID {
			startSeen = true
		}
	}
	assert.True(t, startSeen)

	seen := map[records.Edge]int{}
	for _, e := range graph.Edges {
		seen[e]++
	}
	assert.NotEmpty(t, seen)
	for e, count := range seen {
		assert.Equalf(t, 1, count, "edge %+v appears more than once", e)
	}
}

func TestImplicitReturnIsRecordedInReturnStatementMap(t *testing.T) {
	src := `
void f(int x) {
    x = x + 1;
}
`
	_, ws := buildGraph(t, syntax.C, src)

	var fnID records.NodeId
	for id := range ws.FunctionInfo {
		fnID = id
	}
	require.NotZero(t, fnID, "expected one function to be recorded")

	implicit, ok := ws.ImplicitReturnMap[fnID]
	require.True(t, ok, "expected an implicit return to be assigned")

	returns := ws.ReturnStatementMap[fnID]
	assert.Contains(t, returns, implicit, "invariant 4: implicit_return_map[f] must be in return_statement_map[f]")
}

func TestThrowRoutesToTypeMatchingCatchNotCatchAll(t *testing.T) {
	src := `
void f() {
    try {
        throw std::runtime_error("boom");
    } catch (const std::runtime_error& e) {
    } catch (...) {
    }
}
`
	graph, _ := buildGraph(t, syntax.Cpp, src)

	var throwID, typedCatchID, catchAllID records.NodeId
	for _, n := range graph.Nodes {
		switch {
		case n.KindTag == "throw_statement":
			throwID = n.ID
		case n.KindTag == "catch_clause" && strings.Contains(n.Label, "runtime_error"):
			typedCatchID = n.ID
		case n.KindTag == "catch_clause" && strings.Contains(n.Label, "..."):
			catchAllID = n.ID
		}
	}
	require.NotZero(t, throwID, "expected to find the throw statement node")
	require.NotZero(t, typedCatchID, "expected to find the typed catch clause node")
	require.NotZero(t, catchAllID, "expected to find the catch-all clause node")

	var routedToTyped, routedToCatchAll bool
	for _, e := range graph.Edges {
		if e.Source != throwID || e.Kind != records.ThrowExit {
			continue
		}
		if e.Target == typedCatchID {
			routedToTyped = true
		}
		if e.Target == catchAllID {
			routedToCatchAll = true
		}
	}
	assert.True(t, routedToTyped, "expected throw_exit to the type-matching catch clause")
	assert.False(t, routedToCatchAll, "throw_exit should not fall through to the catch-all")
}

func TestImmediatelyInvokedLambdaGetsInvocationEdge(t *testing.T) {
	src := `
void f() {
    int x = [](int y) { return y + 1; }(2);
}
`
	graph, ws := buildGraph(t, syntax.Cpp, src)

	require.Len(t, ws.LambdaMap, 1, "expected one lambda recorded")
	var lambda *records.LambdaInfo
	for _, l := range ws.LambdaMap {
		lambda = l
	}
	require.True(t, lambda.IsImmediate, "expected the lambda to be detected as immediately invoked")
	require.NotZero(t, lambda.BodyID, "expected the lambda body's first statement to be recorded")

	var sawInvocation bool
	for _, e := range graph.Edges {
		if e.Kind == records.LambdaInvocation && e.Target == lambda.BodyID {
			sawInvocation = true
		}
	}
	assert.True(t, sawInvocation, "expected a lambda_invocation edge into the lambda body")
}

func TestLambdaPassedAsArgumentWiresParamInvocation(t *testing.T) {
	src := `
void runner(Callback cb) {
    cb(3);
}

void f() {
    runner([](int x) { return x; });
}
`
	graph, ws := buildGraph(t, syntax.Cpp, src)

	require.Len(t, ws.LambdaMap, 1, "expected one lambda recorded")
	var lambda *records.LambdaInfo
	for _, l := range ws.LambdaMap {
		lambda = l
	}
	require.NotZero(t, lambda.BodyID)

	var runnerID records.NodeId
	for id, info := range ws.FunctionInfo {
		if info.Key.Name == "runner" {
			runnerID = id
		}
	}
	require.NotZero(t, runnerID, "expected to find the runner function")
	require.Contains(t, ws.FunctionParamToLambda, runnerID, "expected runner's params to bind the lambda")

	var sawInvocation bool
	for _, e := range graph.Edges {
		if e.Kind == records.LambdaInvocation && e.Target == lambda.BodyID {
			sawInvocation = true
		}
	}
	assert.True(t, sawInvocation, "expected a lambda_invocation edge at runner's cb(3) call site")
}

func TestKnownRuntimeTypeNarrowsMethodDispatch(t *testing.T) {
	src := `
class Base {
public:
    virtual void f() {}
};

class Derived : public Base {
public:
    void f() {}
};

void g() {
    Base* p = new Derived();
    p->f();
}
`
	graph, ws := buildGraph(t, syntax.Cpp, src)

	assert.Equal(t, "Derived", ws.RuntimeType["p"], "expected new Derived() to bind p's runtime type")

	var derivedF, baseF records.NodeId
	for id, info := range ws.FunctionInfo {
		if info.Key.Name == "f" && info.Key.Owner == "Derived" {
			derivedF = id
		}
		if info.Key.Name == "f" && info.Key.Owner == "Base" {
			baseF = id
		}
	}
	require.NotZero(t, derivedF)
	require.NotZero(t, baseF)

	var sawDerived, sawBase bool
	for _, e := range graph.Edges {
		if e.Target == derivedF && (e.Kind == records.MethodCall || e.Kind == records.VirtualCall) {
			sawDerived = true
		}
		if e.Target == baseF && (e.Kind == records.MethodCall || e.Kind == records.VirtualCall) {
			sawBase = true
		}
	}
	assert.True(t, sawDerived, "expected the call to resolve to Derived::f via the known runtime type")
	assert.False(t, sawBase, "narrowing to the known runtime type should not also wire Base::f")
}

func TestFunctionPointerAssignmentResolvesIndirectCall(t *testing.T) {
	src := `
int helper(int x) {
    return x + 1;
}

int main() {
    auto fp = helper;
    int y = fp(3);
    return y;
}
`
	graph, ws := buildGraph(t, syntax.Cpp, src)

	require.Contains(t, ws.FunctionPointerAssignments, "fp")

	var helperID records.NodeId
	for id, info := range ws.FunctionInfo {
		if info.Key.Name == "helper" {
			helperID = id
		}
	}
	require.NotZero(t, helperID)

	var sawIndirectCall bool
	for _, e := range graph.Edges {
		if e.Target == helperID && e.Kind == records.IndirectCall {
			sawIndirectCall = true
		}
	}
	assert.True(t, sawIndirectCall, "expected fp(3) to resolve to helper via function_pointer_assignments")
}
