package cfg

import (
	"strings"

	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// boundaryKinds stop the upward search in nextExecutable: falling off these
// is "falling off the end of a function" (or further out), not a sequential
// next statement.
var boundaryKinds = map[string]bool{
	"function_definition": true,
	"class_specifier":     true,
	"struct_specifier":    true,
	"namespace_definition": true,
	"translation_unit":    true,
}

// nextExecutable finds the "next executable statement" per spec.md §4.4
// Phase A: first the next named sibling that's a classified statement; if
// none, walk up to the nearest enclosing statement holder and repeat,
// stopping at function/class/namespace boundaries. case_statement is a
// soft boundary: fallthrough to the next case only happens when the current
// case carries a [[fallthrough]] attribute.
func (b *Builder) nextExecutable(n *syntax.Node) *syntax.Node {
	cur := n
	for {
		sib := cur.NextSibling()
		for !sib.IsNil() {
			if b.table.IsStatement(sib.Kind()) {
				return sib
			}
			sib = sib.NextSibling()
		}

		parent := cur.Parent()
		if parent.IsNil() {
			return nil
		}
		if boundaryKinds[parent.Kind()] {
			return nil
		}
		if parent.Kind() == "case_statement" && !hasFallthrough(parent) {
			return nil
		}
		cur = parent
	}
}

func hasFallthrough(caseStmt *syntax.Node) bool {
	return strings.Contains(caseStmt.Text(), "[[fallthrough]]")
}

// enclosingFunction walks up from n to the nearest function_definition.
func enclosingFunction(n *syntax.Node) *syntax.Node {
	cur := n.Parent()
	for !cur.IsNil() {
		if cur.Kind() == "function_definition" {
			return cur
		}
		cur = cur.Parent()
	}
	return nil
}

// phaseA adds next_line edges for every non-control, non-jump statement,
// routing falls-off-function-end to the implicit return or the synthetic
// end node per spec.md §4.4.
func (b *Builder) phaseA() {
	for _, id := range append([]NodeId{}, b.order...) {
		n := b.syntaxOf[id]
		if n.IsNil() {
			continue
		}
		info := b.table.Lookup(n.Kind())
		if !info.Statement || info.Control || info.Jump {
			continue
		}

		if next := b.nextExecutable(n); !next.IsNil() {
			b.register(next)
			b.addEdge(id, next.Id(), records.NextLine, "")
			continue
		}

		b.routeFunctionFallOff(n, id)
	}
}

// routeFunctionFallOff connects a statement that falls off the end of its
// enclosing function to that function's implicit return slot, or the
// synthetic end node if none was recorded.
func (b *Builder) routeFunctionFallOff(n *syntax.Node, id NodeId) {
	fn := enclosingFunction(n)
	if fn.IsNil() {
		return
	}
	if implicit, ok := b.ws.ImplicitReturnMap[fn.Id()]; ok {
		b.addEdge(id, implicit, records.NextLine, "")
		return
	}
	b.addEdge(id, records.EndNodeID, records.NextLine, "")
}

// union-find for Phase B's weakly-connected-component block indices.

func (b *Builder) find(x NodeId) NodeId {
	root, ok := b.uf[x]
	if !ok {
		b.uf[x] = x
		return x
	}
	if root == x {
		return x
	}
	r := b.find(root)
	b.uf[x] = r
	return r
}

func (b *Builder) union(x, y NodeId) {
	rx, ry := b.find(x), b.find(y)
	if rx != ry {
		b.uf[rx] = ry
	}
}

// phaseB computes weakly connected components over the Phase-A graph and
// assigns each node a dense block_index in first-seen order.
func (b *Builder) phaseB() {
	for _, e := range b.edges {
		if _, ok := b.nodes[e.Source]; !ok {
			continue
		}
		if _, ok := b.nodes[e.Target]; !ok {
			continue
		}
		b.union(e.Source, e.Target)
	}

	assigned := map[NodeId]int{}
	next := 0
	for _, id := range b.order {
		root := b.find(id)
		idx, ok := assigned[root]
		if !ok {
			idx = next
			assigned[root] = idx
			next++
		}
		b.nodes[id].BlockIndex = idx
	}
}
