package cfg

import (
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// phaseE walks the tree a second time emitting the per-statement-kind
// control-flow edges of spec.md §4.4's table. Phase A already handles
// straight-line sequencing; this phase adds the branching/looping/jump
// edges that make the graph a true control-flow graph.
func (b *Builder) phaseE(root *syntax.Node) {
	b.walkControlFlow(root)
}

func (b *Builder) walkControlFlow(n *syntax.Node) {
	if n.IsNil() {
		return
	}

	switch n.Kind() {
	case "function_definition":
		b.emitFunctionEntry(n)
	case "if_statement":
		b.emitIf(n)
	case "while_statement", "for_statement", "for_range_loop":
		b.emitLoop(n)
	case "do_statement":
		b.emitDoWhile(n)
	case "switch_statement":
		b.emitSwitch(n)
	case "case_statement":
		b.emitCase(n)
	case "break_statement":
		b.emitBreak(n)
	case "continue_statement":
		b.emitContinue(n)
	case "goto_statement":
		b.emitGoto(n)
	case "return_statement":
		b.recordReturn(n)
	case "try_statement":
		b.emitTry(n)
	case "throw_statement":
		b.emitThrow(n)
	}

	b.pushControl(n)
	for i := 0; i < n.ChildCount(); i++ {
		b.walkControlFlow(n.Child(i))
	}
	b.popControl(n)
}

func (b *Builder) pushControl(n *syntax.Node) {
	switch n.Kind() {
	case "while_statement", "for_statement", "for_range_loop", "do_statement":
		b.loopStack = append(b.loopStack, n)
	case "switch_statement":
		b.switchStack = append(b.switchStack, n)
	case "try_statement":
		b.tryStack = append(b.tryStack, n)
	}
}

func (b *Builder) popControl(n *syntax.Node) {
	switch n.Kind() {
	case "while_statement", "for_statement", "for_range_loop", "do_statement":
		b.loopStack = b.loopStack[:len(b.loopStack)-1]
	case "switch_statement":
		b.switchStack = b.switchStack[:len(b.switchStack)-1]
	case "try_statement":
		b.tryStack = b.tryStack[:len(b.tryStack)-1]
	}
}

func (b *Builder) emitFunctionEntry(n *syntax.Node) {
	body := n.Field("body")
	if body.IsNil() {
		return
	}
	first := firstStatementOf(body, b.table)
	if first.IsNil() {
		return
	}
	b.register(first)
	b.addEdge(n.Id(), first.Id(), records.FirstNextLine, "")
}

func (b *Builder) emitIf(n *syntax.Node) {
	cons := n.Field("consequence")
	alt := n.Field("alternative")

	if first := firstStatementOf(cons, b.table); !first.IsNil() {
		b.register(first)
		b.addEdge(n.Id(), first.Id(), records.PosNext, "")
	}

	if !alt.IsNil() {
		altBody := alt
		if alt.Kind() == "else_clause" {
			if c := alt.Field("body"); !c.IsNil() {
				altBody = c
			} else if alt.NamedChildCount() > 0 {
				altBody = alt.NamedChild(0)
			}
		}
		if first := firstStatementOf(altBody, b.table); !first.IsNil() {
			b.register(first)
			b.addEdge(n.Id(), first.Id(), records.NegNext, "")
		} else {
			b.emitIfFallback(n, altBody)
		}
	} else if post := b.nextExecutable(n); !post.IsNil() {
		b.register(post)
		b.addEdge(n.Id(), post.Id(), records.NegNext, "")
	}
}

func (b *Builder) emitIfFallback(n, altBody *syntax.Node) {
	if altBody.IsNil() {
		return
	}
	b.register(altBody)
	b.addEdge(n.Id(), altBody.Id(), records.NegNext, "")
}

// emitLoop handles while/for/for_range_loop: pos_next into the body,
// neg_next to the statement after the loop, loop_control from the body's
// tail back to self, and a self loop_update modeling the update step.
func (b *Builder) emitLoop(n *syntax.Node) {
	body := n.Field("body")
	if first := firstStatementOf(body, b.table); !first.IsNil() {
		b.register(first)
		b.addEdge(n.Id(), first.Id(), records.PosNext, "")
		if tail := lastStatementOf(body, b.table); !tail.IsNil() {
			b.register(tail)
			if !b.table.IsJump(tail.Kind()) {
				b.addEdge(tail.Id(), n.Id(), records.LoopControl, "")
			}
		}
	}

	if post := b.nextExecutable(n); !post.IsNil() {
		b.register(post)
		b.addEdge(n.Id(), post.Id(), records.NegNext, "")
	}

	b.addEdge(n.Id(), n.Id(), records.LoopUpdate, "")
}

func (b *Builder) emitDoWhile(n *syntax.Node) {
	body := n.Field("body")
	cond := n.Field("condition")
	first := firstStatementOf(body, b.table)
	if first.IsNil() {
		return
	}
	b.register(first)
	b.addEdge(n.Id(), first.Id(), records.FirstNextLine, "")

	condID := n.Id()
	if !cond.IsNil() {
		condID = cond.Id()
	}

	if tail := lastStatementOf(body, b.table); !tail.IsNil() {
		b.register(tail)
		if !b.table.IsJump(tail.Kind()) {
			b.addEdge(tail.Id(), condID, records.NextLine, "")
		}
	}

	b.addEdge(condID, first.Id(), records.PosNext, "")
	if post := b.nextExecutable(n); !post.IsNil() {
		b.register(post)
		b.addEdge(condID, post.Id(), records.NegNext, "")
	}
}

func (b *Builder) emitSwitch(n *syntax.Node) {
	body := n.Field("body")
	if body.IsNil() {
		return
	}
	hasDefault := false
	for _, c := range body.NamedChildren() {
		if c.Kind() != "case_statement" {
			continue
		}
		b.register(c)
		b.addEdge(n.Id(), c.Id(), records.SwitchCase, "")
		if isDefaultCase(c) {
			hasDefault = true
		}
	}
	if !hasDefault {
		if post := b.nextExecutable(n); !post.IsNil() {
			b.register(post)
			b.addEdge(n.Id(), post.Id(), records.SwitchExit, "")
		}
	}
}

func isDefaultCase(c *syntax.Node) bool {
	return c.Field("value").IsNil()
}

func (b *Builder) emitCase(n *syntax.Node) {
	valueNode := n.Field("value")
	var first *syntax.Node
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if !valueNode.IsNil() && c.Id() == valueNode.Id() {
			continue
		}
		if b.table.IsStatement(c.Kind()) {
			first = c
			break
		}
	}
	if first.IsNil() {
		return
	}
	b.register(first)
	b.addEdge(n.Id(), first.Id(), records.CaseNext, "")
}

func (b *Builder) emitBreak(n *syntax.Node) {
	if len(b.switchStack) > 0 && (len(b.loopStack) == 0 || isInnermost(n, b.switchStack[len(b.switchStack)-1], b.loopStack)) {
		sw := b.switchStack[len(b.switchStack)-1]
		if post := b.nextExecutable(sw); !post.IsNil() {
			b.register(post)
			b.addEdge(n.Id(), post.Id(), records.JumpNext, "")
			return
		}
	}
	if len(b.loopStack) > 0 {
		loop := b.loopStack[len(b.loopStack)-1]
		if post := b.nextExecutable(loop); !post.IsNil() {
			b.register(post)
			b.addEdge(n.Id(), post.Id(), records.JumpNext, "")
		}
	}
}

// isInnermost is a rough heuristic: if a loop was pushed after the
// innermost switch, break binds to the loop instead.
func isInnermost(_ *syntax.Node, sw *syntax.Node, loops []*syntax.Node) bool {
	if len(loops) == 0 {
		return true
	}
	// Compare source offsets: the construct that starts later encloses more
	// tightly around the break only if it also ends after it; a simple and
	// adequate proxy here is source order of the header node.
	return sw.Start().Row >= loops[len(loops)-1].Start().Row
}

func (b *Builder) emitContinue(n *syntax.Node) {
	if len(b.loopStack) == 0 {
		return
	}
	loop := b.loopStack[len(b.loopStack)-1]
	b.addEdge(n.Id(), loop.Id(), records.JumpNext, "")
}

func (b *Builder) emitGoto(n *syntax.Node) {
	label := n.Field("label")
	name := ""
	if !label.IsNil() {
		name = label.Text()
	} else if n.NamedChildCount() > 0 {
		name = n.NamedChild(0).Text()
	}
	if target, ok := b.ws.LabelStatementMap[name]; ok {
		b.addEdge(n.Id(), target, records.JumpNext, "")
	}
}

func (b *Builder) recordReturn(n *syntax.Node) {
	fn := enclosingFunction(n)
	if fn.IsNil() {
		return
	}
	b.ws.ReturnStatementMap[fn.Id()] = append(b.ws.ReturnStatementMap[fn.Id()], n.Id())
}

func (b *Builder) emitTry(n *syntax.Node) {
	body := n.Field("body")
	first := firstStatementOf(body, b.table)
	var tailID NodeId
	if !first.IsNil() {
		b.register(first)
		b.addEdge(n.Id(), first.Id(), records.TryNext, "")
		if tail := lastStatementOf(body, b.table); !tail.IsNil() {
			b.register(tail)
			tailID = tail.Id()
		}
	}

	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c.Kind() != "catch_clause" {
			continue
		}
		b.register(c)
		b.addEdge(n.Id(), c.Id(), records.CatchException, "")
		b.emitCatch(c)
	}

	if tailID != 0 {
		if post := b.nextExecutable(n); !post.IsNil() {
			b.register(post)
			b.addEdge(tailID, post.Id(), records.TryExit, "")
		}
	}
}

// emitCatch handles catch_clause entries; invoked from the general walk via
// classify (catch_clause is Control:true so it participates in phaseE's
// dispatch only through its parent try_statement's loop above — here we add
// its own body-entry/body-exit edges).
func (b *Builder) emitCatch(n *syntax.Node) {
	body := n.Field("body")
	first := firstStatementOf(body, b.table)
	if first.IsNil() {
		return
	}
	b.register(first)
	b.addEdge(n.Id(), first.Id(), records.CatchNext, "")

	tryNode := n.Parent()
	if tryNode.IsNil() {
		return
	}
	if tail := lastStatementOf(body, b.table); !tail.IsNil() {
		b.register(tail)
		if post := b.nextExecutable(tryNode); !post.IsNil() {
			b.register(post)
			b.addEdge(tail.Id(), post.Id(), records.CatchExit, "")
		}
	}
}

func (b *Builder) emitThrow(n *syntax.Node) {
	for i := len(b.tryStack) - 1; i >= 0; i-- {
		tryStmt := b.tryStack[i]
		if catch := b.matchingCatch(tryStmt, n); !catch.IsNil() {
			b.register(catch)
			b.addEdge(n.Id(), catch.Id(), records.ThrowExit, "")
			return
		}
	}
	fn := enclosingFunction(n)
	if !fn.IsNil() {
		b.ws.ReturnStatementMap[fn.Id()] = append(b.ws.ReturnStatementMap[fn.Id()], n.Id())
	}
}

// matchingCatch returns the first catch clause of tryStmt whose declared
// exception type matches throwStmt's thrown expression type, or the first
// catch-all (`catch (...)`) clause, or nil.
func (b *Builder) matchingCatch(tryStmt, throwStmt *syntax.Node) *syntax.Node {
	thrownType := ""
	arg := throwStmt.Field("value")
	if arg.IsNil() && throwStmt.NamedChildCount() > 0 {
		arg = throwStmt.NamedChild(0)
	}
	if !arg.IsNil() {
		stack := b.sym.ScopeMap[throwStmt.Id()]
		thrownType = trimValueSuffix(b.resolver.GetArgumentType(arg, stack))
	}

	var fallback *syntax.Node
	for i := 0; i < tryStmt.NamedChildCount(); i++ {
		c := tryStmt.NamedChild(i)
		if c.Kind() != "catch_clause" {
			continue
		}
		params := c.Field("parameters")
		if params.IsNil() {
			if fallback == nil {
				fallback = c
			}
			continue
		}
		if params.NamedChildCount() == 0 {
			if fallback == nil {
				fallback = c
			}
			continue
		}
		p := params.NamedChild(0)
		declType := p.Field("type")
		if declType.IsNil() {
			continue
		}
		if thrownType != "" && declType.Text() == thrownType {
			return c
		}
	}
	return fallback
}

func trimValueSuffix(t string) string {
	for len(t) > 0 && (t[len(t)-1] == '&' || t[len(t)-1] == '*') {
		t = t[:len(t)-1]
	}
	return t
}

func firstStatementOf(body *syntax.Node, table interface{ IsStatement(string) bool }) *syntax.Node {
	if body.IsNil() {
		return nil
	}
	if table.IsStatement(body.Kind()) {
		return body
	}
	for i := 0; i < body.NamedChildCount(); i++ {
		c := body.NamedChild(i)
		if table.IsStatement(c.Kind()) {
			return c
		}
	}
	return nil
}

func lastStatementOf(body *syntax.Node, table interface{ IsStatement(string) bool }) *syntax.Node {
	if body.IsNil() {
		return nil
	}
	if table.IsStatement(body.Kind()) {
		return body
	}
	var last *syntax.Node
	for i := 0; i < body.NamedChildCount(); i++ {
		c := body.NamedChild(i)
		if table.IsStatement(c.Kind()) {
			last = c
		}
	}
	return last
}
