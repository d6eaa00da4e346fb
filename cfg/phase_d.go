package cfg

import (
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// phaseD inserts the synthetic start node and, for C++, the static
// initialization chain through global initializers into main (spec.md §4.4
// Phase D).
func (b *Builder) phaseD() {
	b.nodes[records.StartNodeID] = &records.GraphNode{ID: records.StartNodeID, Label: "start", KindTag: "start_node"}
	if _, seen := b.uf[records.StartNodeID]; !seen {
		b.order = append([]NodeId{records.StartNodeID}, b.order...)
	}
	b.uf[records.StartNodeID] = records.StartNodeID

	entry := b.entryTarget()
	if entry == 0 {
		return
	}

	if b.lang != syntax.Cpp {
		b.addEdge(records.StartNodeID, entry, records.NextLine, "")
		return
	}

	cur := records.StartNodeID
	for _, init := range b.globalInitializers() {
		b.addEdge(cur, init, records.NextLine, "")
		cur = init
	}
	b.addEdge(cur, entry, records.NextLine, "")
}

// entryTarget picks main's body entry, or the first function's, as the
// CFG's sole root per spec.md §4.4 Phase D.
func (b *Builder) entryTarget() NodeId {
	if main, ok := b.ws.FunctionInfo[b.ws.MainFunctionID]; ok && b.ws.MainFunctionID != 0 {
		if main.BodyID != 0 {
			return main.BodyID
		}
		return b.ws.MainFunctionID
	}

	var first *records.FunctionInfo
	var firstID NodeId
	var firstPos syntax.Point
	for id, info := range b.ws.FunctionInfo {
		n := b.syntaxOf[id]
		if n.IsNil() {
			continue
		}
		pos := n.Start()
		if first == nil || pos.Row < firstPos.Row || (pos.Row == firstPos.Row && pos.Column < firstPos.Column) {
			first, firstID, firstPos = info, id, pos
		}
	}
	if first == nil {
		return 0
	}
	if first.BodyID != 0 {
		return first.BodyID
	}
	return firstID
}

// globalInitializers returns top-level variable declarations with an
// initializer, in source order, standing in for C++'s static-init phase.
func (b *Builder) globalInitializers() []NodeId {
	var out []NodeId
	for i := 0; i < b.root.NamedChildCount(); i++ {
		c := b.root.NamedChild(i)
		if c.Kind() != "declaration" {
			continue
		}
		for _, d := range c.NamedChildren() {
			if d.Kind() == "init_declarator" {
				gn := b.register(c)
				out = append(out, gn.ID)
				break
			}
		}
	}
	return out
}
