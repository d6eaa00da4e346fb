package cfg

import (
	"strings"

	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// phaseC populates the call-site lists in ws (function_calls, method_calls,
// ...) and the destructible-scope table Phase H needs, by re-walking every
// registered statement's subtree for call/new/delete expressions and local
// class-typed declarations.
func (b *Builder) phaseC(root *syntax.Node) {
	for _, id := range b.order {
		n := b.syntaxOf[id]
		if n.IsNil() {
			continue
		}
		b.scanCallsIn(n, id)
	}
	b.collectDestructibleScopes(root)
}

// scanCallsIn walks stmt's subtree (without descending into nested
// function/lambda bodies, which get their own statement-level entries)
// looking for call-like expressions.
func (b *Builder) scanCallsIn(stmt *syntax.Node, stmtID NodeId) {
	var walk func(n *syntax.Node)
	walk = func(n *syntax.Node) {
		if n.IsNil() {
			return
		}
		switch n.Kind() {
		case "function_definition", "lambda_expression":
			return
		case "call_expression":
			b.classifyCall(n, stmtID)
		case "new_expression":
			b.recordConstructorCall(n, stmtID)
		case "delete_expression":
			b.recordDestructorCall(n, stmtID)
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	for i := 0; i < stmt.ChildCount(); i++ {
		walk(stmt.Child(i))
	}
}

func (b *Builder) classifyCall(call *syntax.Node, stmtID NodeId) {
	fn := call.Field("function")
	if fn.IsNil() {
		return
	}

	site := records.CallSite{CallID: call.Id(), StmtID: stmtID, ArgTypes: b.argTypes(call)}
	b.recordLambdaArguments(call)

	switch fn.Kind() {
	case "field_expression":
		obj := fn.Field("argument")
		if !obj.IsNil() {
			site.Object = obj.Text()
			stack := b.sym.ScopeMap[call.Id()]
			site.ReceiverType = trimValueSuffix(b.resolver.GetArgumentType(obj, stack))
		}
		if method := fn.Field("field"); !method.IsNil() {
			site.Name = method.Text()
		}
		b.ws.MethodCalls = append(b.ws.MethodCalls, site)

	case "qualified_identifier":
		if name := fn.Field("name"); !name.IsNil() {
			site.Name = name.Text()
		} else {
			site.Name = fn.Text()
		}
		if scope := fn.Field("scope"); !scope.IsNil() {
			site.Object = scope.Text()
		}
		b.ws.StaticMethodCalls = append(b.ws.StaticMethodCalls, site)

	case "identifier":
		name := fn.Text()
		site.Name = name
		site.Object = name
		if ptrTargets, ok := b.ws.FunctionPointerAssignments[name]; ok && len(ptrTargets) > 0 {
			b.ws.IndirectCalls = append(b.ws.IndirectCalls, site)
			return
		}
		if strings.HasPrefix(name, "operator") {
			b.ws.OperatorCalls = append(b.ws.OperatorCalls, site)
			return
		}
		b.ws.FunctionCalls = append(b.ws.FunctionCalls, site)

	case "parenthesized_expression":
		b.ws.IndirectCalls = append(b.ws.IndirectCalls, site)

	default:
		site.Name = fn.Text()
		b.ws.FunctionCalls = append(b.ws.FunctionCalls, site)
	}
}

func (b *Builder) isVirtualMethodName(name string) bool {
	for id, info := range b.ws.FunctionInfo {
		if info.Key.Name == name && b.ws.VirtualFunctions[id] {
			return true
		}
	}
	return false
}

func (b *Builder) recordConstructorCall(n *syntax.Node, stmtID NodeId) {
	typeNode := n.Field("type")
	site := records.CallSite{CallID: n.Id(), StmtID: stmtID, ArgTypes: b.argTypes(n)}
	if !typeNode.IsNil() {
		site.Object = typeNode.Text()
	}
	b.ws.ConstructorCalls = append(b.ws.ConstructorCalls, site)
}

func (b *Builder) recordDestructorCall(n *syntax.Node, stmtID NodeId) {
	operand := n.Field("argument")
	site := records.CallSite{CallID: n.Id(), StmtID: stmtID}
	if !operand.IsNil() {
		site.Object = operand.Text()
		if t, ok := b.ws.RuntimeType[operand.Text()]; ok {
			site.ArgTypes = []string{t}
		}
	}
	b.ws.DestructorCalls = append(b.ws.DestructorCalls, site)
}

// recordLambdaArguments notes, per spec.md §3 lambda_arguments, which
// positional argument of a call expression is itself a lambda literal, so
// Phase F can later bind those positions to the resolved callee's formal
// parameters (function_param_to_lambda).
func (b *Builder) recordLambdaArguments(call *syntax.Node) {
	args := call.Field("arguments")
	if args.IsNil() {
		return
	}
	named := args.NamedChildren()
	positions := make([]NodeId, len(named))
	any := false
	for i, a := range named {
		if a.Kind() == "lambda_expression" {
			positions[i] = a.Id()
			any = true
		}
	}
	if any {
		b.ws.LambdaArguments[call.Id()] = positions
	}
}

func (b *Builder) argTypes(call *syntax.Node) []string {
	args := call.Field("arguments")
	if args.IsNil() {
		return nil
	}
	var out []string
	stack := b.sym.ScopeMap[call.Id()]
	for _, a := range args.NamedChildren() {
		out = append(out, b.resolver.GetArgumentType(a, stack))
	}
	return out
}

// collectDestructibleScopes scans every compound_statement for locally
// declared class-typed objects, in declaration order, per spec.md §4.4
// Phase H.1.
func (b *Builder) collectDestructibleScopes(root *syntax.Node) {
	var walk func(n *syntax.Node)
	walk = func(n *syntax.Node) {
		if n.IsNil() {
			return
		}
		if n.Kind() == "compound_statement" {
			b.collectDestructiblesInBlock(n)
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (b *Builder) collectDestructiblesInBlock(block *syntax.Node) {
	order := 0
	for i := 0; i < block.NamedChildCount(); i++ {
		c := block.NamedChild(i)
		if c.Kind() != "declaration" {
			continue
		}
		typeNode := c.Field("type")
		if typeNode.IsNil() {
			continue
		}
		className := typeNode.Text()
		if _, isClass := b.ws.ClassList[className]; !isClass {
			continue
		}
		for _, d := range c.NamedChildren() {
			var name *syntax.Node
			switch d.Kind() {
			case "identifier":
				name = d
			case "init_declarator":
				name = d.Field("declarator")
			}
			if name.IsNil() {
				continue
			}
			b.ws.DestructibleScopes[block.Id()] = append(b.ws.DestructibleScopes[block.Id()], records.DestructibleObject{
				Var:        name.Text(),
				Class:      className,
				DeclStmtID: c.Id(),
				Order:      order,
			})
			order++
		}
	}
}
