// Package graph implements the in-memory multi-digraph model (spec.md C8)
// shared by the CFG and SDFG builders: idempotent node insertion,
// deduplicated edge insertion, predecessor/successor lookups, and
// serialization to JSON node-link form and DOT. Grounded on the teacher's
// inspector/graph package — the index-map-plus-slice idiom
// (fieldMap/methodMap keyed lookups over an ordered slice) carried over
// here as the node-id-map and edge-dedup-key pattern, and emitter.go's
// pluggable Emitter interface for the two serialization formats.
package graph

import "github.com/viant/codeviews/records"

type NodeId = records.NodeId

// Node is a graph vertex with the attributes spec.md §4.7 names.
type Node struct {
	ID         NodeId
	Label      string
	KindTag    string
	Line       int
	BlockIndex int
}

// Edge is a graph arc with the attributes spec.md §4.7 names. DataflowType
// distinguishes SDFG edge shadings (comesFrom vs lastDef) when a combined
// graph carries both CFG and SDFG edges; Color is advisory, used only by
// the DOT emitter.
type Edge struct {
	Source       NodeId
	Target       NodeId
	Kind         records.EdgeKind
	Extra        string
	DataflowType string
	Color        string
}

type edgeKey struct {
	src, dst     NodeId
	kind         records.EdgeKind
	extra        string
	dataflowType string
}

// Graph is a multi-digraph: many edges may connect the same ordered pair,
// so long as they differ in (kind, extra, dataflow_type).
type Graph struct {
	nodes    []Node
	nodeMap  map[NodeId]int
	edges    []Edge
	edgeKeys map[edgeKey]bool

	outAdj map[NodeId][]int
	inAdj  map[NodeId][]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodeMap:  map[NodeId]int{},
		edgeKeys: map[edgeKey]bool{},
		outAdj:   map[NodeId][]int{},
		inAdj:    map[NodeId][]int{},
	}
}

// AddNode inserts n, or no-ops if its id is already present (idempotent on
// id, per spec.md §4.7).
func (g *Graph) AddNode(n Node) {
	if _, ok := g.nodeMap[n.ID]; ok {
		return
	}
	g.nodeMap[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// GetNode retrieves a node by id.
func (g *Graph) GetNode(id NodeId) (Node, bool) {
	idx, ok := g.nodeMap[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// Nodes returns every node, in insertion order.
func (g *Graph) Nodes() []Node { return g.nodes }

// AddEdge inserts e, deduplicated on (source, target, kind, extra,
// dataflow_type) per spec.md §4.7 / invariant 5.
func (g *Graph) AddEdge(e Edge) {
	k := edgeKey{e.Source, e.Target, e.Kind, e.Extra, e.DataflowType}
	if g.edgeKeys[k] {
		return
	}
	g.edgeKeys[k] = true
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outAdj[e.Source] = append(g.outAdj[e.Source], idx)
	g.inAdj[e.Target] = append(g.inAdj[e.Target], idx)
}

// Edges returns every edge, in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// Successors returns every node id reachable from id via a single edge.
func (g *Graph) Successors(id NodeId) []NodeId {
	var out []NodeId
	for _, idx := range g.outAdj[id] {
		out = append(out, g.edges[idx].Target)
	}
	return out
}

// Predecessors returns every node id with a single edge into id.
func (g *Graph) Predecessors(id NodeId) []NodeId {
	var out []NodeId
	for _, idx := range g.inAdj[id] {
		out = append(out, g.edges[idx].Source)
	}
	return out
}

// OutEdges returns every edge whose source is id.
func (g *Graph) OutEdges(id NodeId) []Edge {
	var out []Edge
	for _, idx := range g.outAdj[id] {
		out = append(out, g.edges[idx])
	}
	return out
}

// FromRecords builds a Graph from a records-level (GraphNode, Edge) pair,
// the shape both the CFG and SDFG builders produce.
func FromRecords(nodes []records.GraphNode, edges []records.Edge) *Graph {
	g := New()
	for _, n := range nodes {
		g.AddNode(Node{ID: n.ID, Label: n.Label, KindTag: n.KindTag, Line: n.Line, BlockIndex: n.BlockIndex})
	}
	for _, e := range edges {
		g.AddEdge(Edge{Source: e.Source, Target: e.Target, Kind: e.Kind, Extra: e.Extra})
	}
	return g
}

// Combine merges a CFG and an SDFG built over the same node set into one
// graph carrying both control- and data-flow edges, tagging SDFG edges with
// a dataflow_type so downstream consumers (and the DOT emitter's coloring)
// can tell them apart.
func Combine(cfgGraph *Graph, sdfgEdges []records.Edge) *Graph {
	g := New()
	for _, n := range cfgGraph.Nodes() {
		g.AddNode(n)
	}
	for _, e := range cfgGraph.Edges() {
		g.AddEdge(e)
	}
	for _, e := range sdfgEdges {
		g.AddEdge(Edge{Source: e.Source, Target: e.Target, Kind: e.Kind, Extra: e.Extra, DataflowType: string(e.Kind)})
	}
	return g
}
