// Package records holds the data model shared by symtab, extract, cfg and
// sdfg: graph nodes, edges, the symbol table, and the "records" workspace
// (spec.md §3) that the extractor populates and the CFG/SDFG builders
// consume. It is deliberately free of any parser or graph-building logic —
// callers own the lifecycle (build once, never mutate after Phase H, per
// spec.md §5).
package records

import "github.com/viant/codeviews/syntax"

// NodeId re-exports syntax.NodeId so callers outside syntax don't need to
// import it just to name the type.
type NodeId = syntax.NodeId

// StartNodeID and EndNodeID are the synthetic dummy nodes spec.md §4.4
// Phase D introduces: "Insert start_node (id 1)" and the fallback target for
// falling off the end of a function with no implicit-return slot ("the
// synthetic end node (id 2)").
const (
	StartNodeID NodeId = 1
	EndNodeID   NodeId = 2
	// FirstSyntheticID is the offset, added to syntax.SyntheticBase, of the
	// first id handed out for synthetic nodes that aren't the two fixed
	// dummies above (implicit returns, implicit
	// default constructors, synthesized literals).
	FirstSyntheticID NodeId = 3
)

// GraphNode is a single statement-level vertex, per spec.md §3.
type GraphNode struct {
	ID         NodeId
	Line       int
	Label      string
	KindTag    string
	BlockIndex int
}

// EdgeKind enumerates the control/data-flow edge tags spec.md §4 names.
// Values are taken verbatim from original_source's add_edge call sites so
// downstream consumers that pattern-match on edge-kind strings keep
// working unchanged.
type EdgeKind string

const (
	NextLine      EdgeKind = "next_line"
	FirstNextLine EdgeKind = "first_next_line"
	PosNext       EdgeKind = "pos_next"
	NegNext       EdgeKind = "neg_next"
	LoopControl   EdgeKind = "loop_control"
	LoopUpdate    EdgeKind = "loop_update"
	SwitchCase    EdgeKind = "switch_case"
	SwitchExit    EdgeKind = "switch_exit"
	CaseNext      EdgeKind = "case_next"
	JumpNext      EdgeKind = "jump_next"

	TryNext        EdgeKind = "try_next"
	TryExit        EdgeKind = "try_exit"
	CatchException EdgeKind = "catch_exception"
	CatchNext      EdgeKind = "catch_next"
	CatchExit      EdgeKind = "catch_exit"
	ThrowExit      EdgeKind = "throw_exit"

	FunctionCall    EdgeKind = "function_call"
	MethodCall      EdgeKind = "method_call"
	VirtualCall     EdgeKind = "virtual_call"
	StaticCall      EdgeKind = "static_call"
	ConstructorCall EdgeKind = "constructor_call"
	OperatorCall    EdgeKind = "operator_call"
	DestructorCall  EdgeKind = "destructor_call"
	IndirectCall    EdgeKind = "indirect_call"

	FunctionReturn    EdgeKind = "function_return"
	MethodReturn      EdgeKind = "method_return"
	VirtualReturn     EdgeKind = "virtual_return"
	StaticReturn      EdgeKind = "static_return"
	ConstructorReturn EdgeKind = "constructor_return"
	OperatorReturn    EdgeKind = "operator_return"
	DestructorReturn  EdgeKind = "destructor_return"
	IndirectReturn    EdgeKind = "indirect_return"

	LambdaInvocation EdgeKind = "lambda_invocation"
	LambdaReturn     EdgeKind = "lambda_return"

	ScopeExitDestructor  EdgeKind = "scope_exit_destructor"
	DestructorChain      EdgeKind = "destructor_chain"
	ScopeDestructorReturn EdgeKind = "scope_destructor_return"
	BaseDestructorCall   EdgeKind = "base_destructor_call"

	// SDFG edge kinds (spec.md §4.6).
	ComesFrom EdgeKind = "comesFrom"
	LastDef   EdgeKind = "lastDef"
	CallToFunction       EdgeKind = "call_to_function"
	ModificationToUse    EdgeKind = "modification_to_use"
)

// callReturnPairs maps a call-kind to its matching return-kind, used by cfg
// Phase F when wiring interprocedural edges.
var callReturnPairs = map[EdgeKind]EdgeKind{
	FunctionCall:    FunctionReturn,
	MethodCall:      MethodReturn,
	VirtualCall:     VirtualReturn,
	StaticCall:      StaticReturn,
	ConstructorCall: ConstructorReturn,
	OperatorCall:    OperatorReturn,
	DestructorCall:  DestructorReturn,
	IndirectCall:    IndirectReturn,
}

// ReturnKindFor reports the return-edge kind matching a call-edge kind.
func ReturnKindFor(call EdgeKind) (EdgeKind, bool) {
	k, ok := callReturnPairs[call]
	return k, ok
}

// Edge is a labeled, deduplicated transition between two GraphNodes.
type Edge struct {
	Source NodeId
	Target NodeId
	Kind   EdgeKind
	Extra  string // call-site id for return-edge matching, per spec.md §3
}

// key is the edge's dedup identity: spec.md invariant 5 — "between the same
// ordered pair the same (kind, extra) edge appears at most once".
func (e Edge) key() Edge { return e }
