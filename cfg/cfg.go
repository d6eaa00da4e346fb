// Package cfg builds the control-flow graph (spec.md C4/C5): the shared
// phase pipeline that turns a parsed translation unit plus its extracted
// records.Workspace and symbol table into a sequence of records.GraphNode /
// records.Edge values. Grounded on the pack's CFG builders (see DESIGN.md)
// for the "phase over a node list, each phase a separate pass" shape, and on
// original_source/src/atlas/codeviews/CFG/CFG_c.py for the exact edge-kind
// vocabulary and phase ordering spec.md §4.4 describes.
package cfg

import (
	"github.com/viant/codeviews/classify"
	"github.com/viant/codeviews/extract"
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
	"github.com/viant/codeviews/typing"
)

type NodeId = records.NodeId

// Graph is the output of a CFG build: every statement-level node plus the
// deduplicated, ordered edges connecting them.
type Graph struct {
	Nodes []records.GraphNode
	Edges []records.Edge
}

// Builder accumulates one CFG build. Not safe for concurrent use (spec.md
// §5: single-threaded, owned by one analysis run).
type Builder struct {
	lang     syntax.Language
	table    classify.Table
	ws       *records.Workspace
	sym      *records.SymbolTable
	resolver *typing.Resolver

	lenientTemplates bool

	root *syntax.Node

	nodes    map[NodeId]*records.GraphNode
	order    []NodeId
	syntaxOf map[NodeId]*syntax.Node

	edges   []records.Edge
	edgeSet map[edgeKey]bool

	// uf is the union-find used by Phase B to compute weakly connected
	// components over the Phase-A sequential graph.
	uf map[NodeId]NodeId

	// loopStack / switchStack / tryStack track enclosing control
	// constructs for break/continue/throw resolution during Phase E.
	loopStack   []*syntax.Node
	switchStack []*syntax.Node
	tryStack    []*syntax.Node

	nextSynthetic NodeId
}

type edgeKey struct {
	src, dst NodeId
	kind     records.EdgeKind
	extra    string
}

// New creates a Builder for one translation unit. ws and sym must already
// be populated by extract.Extractor and symtab.Builder over the same root.
func New(lang syntax.Language, ws *records.Workspace, sym *records.SymbolTable) *Builder {
	return &Builder{
		lang:             lang,
		table:            classify.For(lang),
		ws:               ws,
		sym:              sym,
		resolver:         typing.NewResolver(sym),
		lenientTemplates: true,
		nodes:            map[NodeId]*records.GraphNode{},
		syntaxOf:         map[NodeId]*syntax.Node{},
		edgeSet:          map[edgeKey]bool{},
		uf:               map[NodeId]NodeId{},
		nextSynthetic:    records.FirstSyntheticID,
	}
}

// WithLenientTemplateMatching toggles whether a bare template parameter in a
// callee signature matches any call-site argument type, mirroring
// graph.Config.LenientTemplateMatching.
func (b *Builder) WithLenientTemplateMatching(lenient bool) *Builder {
	b.lenientTemplates = lenient
	return b
}

// Build runs all phases in spec.md §4.4's order and returns the resulting
// graph. root must be the same tree ws/sym were built from.
func (b *Builder) Build(root *syntax.Node) *Graph {
	b.root = root

	b.collectNodes(root)
	b.collectRuntimeBindings()
	b.assignImplicitReturns()
	b.phaseA()
	b.phaseB()
	b.phaseC(root)
	b.phaseD()
	b.phaseE(root)
	b.phaseF()
	b.phaseG()
	if b.lang == syntax.Cpp {
		b.phaseH(root)
	}

	out := &Graph{Edges: b.edges}
	for _, id := range b.order {
		out.Nodes = append(out.Nodes, *b.nodes[id])
	}
	return out
}

// collectNodes performs the initial preorder walk registering every
// classified statement node (spec.md's filtered node_list).
func (b *Builder) collectNodes(n *syntax.Node) {
	if n.IsNil() {
		return
	}
	info := b.table.Lookup(n.Kind())
	if info.Statement {
		b.register(n)
	}
	for i := 0; i < n.ChildCount(); i++ {
		b.collectNodes(n.Child(i))
	}
}

func (b *Builder) register(n *syntax.Node) *records.GraphNode {
	id := n.Id()
	if existing, ok := b.nodes[id]; ok {
		return existing
	}
	gn := &records.GraphNode{ID: id, Line: n.Line(), Label: n.Text(), KindTag: n.Kind()}
	b.nodes[id] = gn
	b.order = append(b.order, id)
	b.syntaxOf[id] = n
	b.uf[id] = id
	return gn
}

// assignImplicitReturns gives every function a synthetic "falling off the
// end" return slot, labeled per the original implementation's
// "implicit_return_" + funcName convention (SPEC_FULL.md §C), so
// routeFunctionFallOff has somewhere real to point instead of defaulting
// every function to the shared synthetic end node.
func (b *Builder) assignImplicitReturns() {
	for id, info := range b.ws.FunctionInfo {
		label := extract.ImplicitReturnLabel(info.Key.Name)
		implicit := b.registerSynthetic(label, "implicit_return")
		b.ws.ImplicitReturnMap[id] = implicit
		b.ws.ReturnStatementMap[id] = append(b.ws.ReturnStatementMap[id], implicit)
		b.addEdge(implicit, records.EndNodeID, records.NextLine, "")
	}
}

// registerSynthetic allocates a node above SyntheticBase with no backing
// syntax.Node (implicit returns, implicit default constructors).
func (b *Builder) registerSynthetic(label, kindTag string) NodeId {
	id := syntax.SyntheticBase + b.nextSynthetic
	b.nextSynthetic++
	b.nodes[id] = &records.GraphNode{ID: id, Label: label, KindTag: kindTag}
	b.order = append(b.order, id)
	b.uf[id] = id
	return id
}

func (b *Builder) addEdge(src, dst NodeId, kind records.EdgeKind, extra string) {
	if src == 0 || dst == 0 {
		return
	}
	k := edgeKey{src, dst, kind, extra}
	if b.edgeSet[k] {
		return
	}
	b.edgeSet[k] = true
	b.edges = append(b.edges, records.Edge{Source: src, Target: dst, Kind: kind, Extra: extra})
}

// removeEdge deletes a previously added edge, used by Phase F rule 4
// ([[noreturn]] targets delete the Phase-A next_line edge).
func (b *Builder) removeEdge(src, dst NodeId, kind records.EdgeKind) {
	k := edgeKey{src, dst, kind, ""}
	if !b.edgeSet[k] {
		return
	}
	delete(b.edgeSet, k)
	filtered := b.edges[:0]
	for _, e := range b.edges {
		if e.Source == src && e.Target == dst && e.Kind == kind {
			continue
		}
		filtered = append(filtered, e)
	}
	b.edges = filtered
}
