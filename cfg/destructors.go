package cfg

import (
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// phaseH wires RAII destructor chains per spec.md §4.4 Phase H. For every
// recorded scope with destructible locals: the scope's last statement gets
// a scope_exit_destructor edge into the first (reverse-construction-order)
// destructor, the destructors chain into each other, and the final one
// flows to the statement after the scope via scope_destructor_return. User
// destructors also chain into their base-class destructors.
func (b *Builder) phaseH(root *syntax.Node) {
	for blockID, objects := range b.ws.DestructibleScopes {
		if len(objects) == 0 {
			continue
		}
		block := b.syntaxOf[blockID]
		if block.IsNil() {
			continue
		}

		last := lastStatementOf(block, b.table)
		if last.IsNil() {
			continue
		}
		b.register(last)

		post := b.postScope(block)

		chain := b.destructorChain(objects)
		if len(chain) == 0 {
			continue
		}

		b.addEdge(last.Id(), chain[0], records.ScopeExitDestructor, "")
		for i := 0; i+1 < len(chain); i++ {
			b.addEdge(chain[i], chain[i+1], records.DestructorChain, "")
		}
		if post != 0 {
			b.addEdge(chain[len(chain)-1], post, records.ScopeDestructorReturn, "")
		}

		b.rerouteReturnsThroughChain(block, chain, post)
	}

	b.wireUserDestructorBaseChains()
}

// destructorChain resolves one destructor node per object, in reverse
// construction order (spec.md §4.4 Phase H.2).
func (b *Builder) destructorChain(objects []records.DestructibleObject) []NodeId {
	ordered := append([]records.DestructibleObject{}, objects...)
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}

	var out []NodeId
	for _, obj := range ordered {
		dtorName := "~" + obj.Class
		found := false
		for key, id := range b.ws.FunctionList {
			if key.Owner == obj.Class && key.Name == dtorName {
				out = append(out, id)
				found = true
				break
			}
		}
		if !found {
			out = append(out, b.implicitDestructor(obj.Class))
		}
	}
	return out
}

func (b *Builder) implicitDestructor(class string) NodeId {
	key := records.FunctionKey{Owner: class, Name: "~" + class, Signature: ""}
	if id, ok := b.ws.FunctionList[key]; ok {
		return id
	}
	id := b.registerSynthetic(key.Name+"()", "implicit_destructor")
	b.ws.FunctionList[key] = id
	b.ws.FunctionInfo[id] = &records.FunctionInfo{ID: id, Key: key}
	return id
}

// postScope finds the statement immediately following block's owning
// construct (the compound_statement's parent-level successor).
func (b *Builder) postScope(block *syntax.Node) NodeId {
	if post := b.nextExecutable(block); !post.IsNil() {
		b.register(post)
		return post.Id()
	}
	if fn := enclosingFunction(block); !fn.IsNil() {
		if implicit, ok := b.ws.ImplicitReturnMap[fn.Id()]; ok {
			return implicit
		}
	}
	return records.EndNodeID
}

// rerouteReturnsThroughChain implements Phase H.4: a return inside this
// scope routes through the destructor chain before exiting. Returns inside a
// nested block that owns destructible objects of its own are left to that
// block's chain.
func (b *Builder) rerouteReturnsThroughChain(block *syntax.Node, chain []NodeId, post NodeId) {
	var walk func(n *syntax.Node)
	walk = func(n *syntax.Node) {
		if n.IsNil() {
			return
		}
		if n.Kind() == "return_statement" {
			b.addEdge(n.Id(), chain[0], records.ScopeExitDestructor, "")
		}
		if n.Kind() == "compound_statement" && n.Id() != block.Id() && len(b.ws.DestructibleScopes[n.Id()]) > 0 {
			return
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	for i := 0; i < block.ChildCount(); i++ {
		walk(block.Child(i))
	}
}

// wireUserDestructorBaseChains implements Phase H.3: the exits of a
// user-defined destructor (its returns, or else its implicit return) get a
// base_destructor_call edge into each direct base-class destructor. No edge
// leads from a base destructor back to the derived destructor's
// post-destructor target.
func (b *Builder) wireUserDestructorBaseChains() {
	for class, bases := range b.ws.Extends {
		dtorKey := records.FunctionKey{Owner: class, Name: "~" + class}
		dtorID, ok := b.ws.FunctionList[dtorKey]
		if !ok {
			continue
		}
		exits := b.ws.ReturnStatementMap[dtorID]
		if len(exits) == 0 {
			if implicit, ok := b.ws.ImplicitReturnMap[dtorID]; ok {
				exits = []NodeId{implicit}
			}
		}

		for _, base := range bases {
			baseDtor := b.implicitDestructor(base)
			for _, exit := range exits {
				b.addEdge(exit, baseDtor, records.BaseDestructorCall, "")
			}
		}
	}
}
