package sdfg

import (
	"strings"

	"github.com/viant/codeviews/syntax"
)

// inputRoutines are callees whose pointer/buffer arguments are treated as
// DEFs of the pointee, per spec.md §4.6 ("scanf, fgets, ...").
var inputRoutines = map[string]bool{
	"scanf": true, "fscanf": true, "sscanf": true,
	"fgets": true, "gets": true, "read": true, "recv": true,
}

// extractDefUse walks the tree from root and records the DEF/USE tuples of
// every node whose kind isStatementKind accepts, per spec.md §4.6's DEF/USE
// extraction rules.
func (e *Engine) extractDefUse(root *syntax.Node) {
	e.walkStatements(root)
}

// isStatementKind is a small, local classification: sdfg only needs to know
// which nodes are DEF/USE-bearing statement units, not the full classifier
// table (which belongs to the statement-extraction stage).
func isStatementKind(kind string) bool {
	switch kind {
	case "declaration", "expression_statement", "if_statement", "while_statement",
		"do_statement", "for_statement", "for_range_loop", "switch_statement",
		"case_statement", "return_statement", "labeled_statement":
		return true
	}
	return false
}

func (e *Engine) walkStatements(n *syntax.Node) {
	if n.IsNil() {
		return
	}
	if isStatementKind(n.Kind()) {
		e.walkStatementBody(n, n.Id())
	}
	for i := 0; i < n.ChildCount(); i++ {
		e.walkStatements(n.Child(i))
	}
}

func (e *Engine) walkStatementBody(n *syntax.Node, stmtID NodeId) {
	var inner func(n *syntax.Node)
	inner = func(n *syntax.Node) {
		if n.IsNil() {
			return
		}
		switch n.Kind() {
		case "function_definition", "lambda_expression":
			return
		case "declaration":
			e.handleDeclarationDefUse(n, stmtID)
		case "assignment_expression":
			e.handleAssignment(n, stmtID)
		case "update_expression":
			e.handleUpdate(n, stmtID)
		case "call_expression":
			e.handleCallDefUse(n, stmtID)
		}
		for i := 0; i < n.ChildCount(); i++ {
			inner(n.Child(i))
		}
	}

	switch n.Kind() {
	case "return_statement":
		e.collectUses(n, stmtID)
	case "if_statement", "while_statement", "do_statement", "switch_statement":
		if cond := n.Field("condition"); !cond.IsNil() {
			e.collectUses(cond, stmtID)
		}
	case "for_statement":
		if cond := n.Field("condition"); !cond.IsNil() {
			e.collectUses(cond, stmtID)
		}
	}
	inner(n)
}

func (e *Engine) handleDeclarationDefUse(decl *syntax.Node, stmtID NodeId) {
	stack := e.sym.ScopeMap[decl.Id()]
	for _, d := range decl.NamedChildren() {
		switch d.Kind() {
		case "init_declarator":
			name := declaredName(d.Field("declarator"))
			if name != "" {
				e.addDef(stmtID, Def{Name: name, StmtID: stmtID, Scope: stack, IsDecl: true})
			}
			if v := d.Field("value"); !v.IsNil() {
				e.collectUses(v, stmtID)
			}
		case "identifier":
			e.addDef(stmtID, Def{Name: d.Text(), StmtID: stmtID, Scope: stack, IsDecl: true})
		}
	}
}

func (e *Engine) handleAssignment(n *syntax.Node, stmtID NodeId) {
	left := n.Field("left")
	right := n.Field("right")

	lhsName := declaredName(left)
	stack := e.sym.ScopeMap[n.Id()]
	if lhsName != "" {
		e.addDef(stmtID, Def{Name: lhsName, StmtID: stmtID, Scope: stack})
	}
	if operatorOf(n) != "=" {
		if lhsName != "" {
			e.addUse(stmtID, Use{Name: lhsName, StmtID: stmtID, Scope: stack})
		}
	}
	if !right.IsNil() {
		e.collectUses(right, stmtID)
	}
}

func operatorOf(assign *syntax.Node) string {
	// the operator is the anonymous child between left and right.
	left := assign.Field("left")
	for i := 0; i < assign.ChildCount(); i++ {
		c := assign.Child(i)
		if !left.IsNil() && c.Id() == left.Id() {
			if i+1 < assign.ChildCount() {
				return assign.Child(i + 1).Text()
			}
		}
	}
	return "="
}

func (e *Engine) handleUpdate(n *syntax.Node, stmtID NodeId) {
	operand := n.Field("argument")
	name := declaredName(operand)
	if name == "" {
		return
	}
	stack := e.sym.ScopeMap[n.Id()]
	e.addUse(stmtID, Use{Name: name, StmtID: stmtID, Scope: stack})
	e.addDef(stmtID, Def{Name: name, StmtID: stmtID, Scope: stack})
}

func (e *Engine) handleCallDefUse(call *syntax.Node, stmtID NodeId) {
	fn := call.Field("function")
	args := call.Field("arguments")
	if args.IsNil() {
		return
	}

	calleeName := ""
	if !fn.IsNil() {
		calleeName = fn.Text()
	}
	modified := e.modifiedParamsFor(calleeName)

	stack := e.sym.ScopeMap[call.Id()]
	for i, a := range args.NamedChildren() {
		if a.Kind() == "pointer_expression" && strings.HasPrefix(strings.TrimSpace(a.Text()), "&") {
			operand := a.Field("argument")
			if operand.IsNil() && a.NamedChildCount() > 0 {
				operand = a.NamedChild(0)
			}
			name := declaredName(operand)
			if name != "" && (inputRoutines[calleeName] || modified[i]) {
				e.addDef(stmtID, Def{Name: name, StmtID: stmtID, Scope: stack})
				continue
			}
		}
		e.collectUses(a, stmtID)
	}
}

func (e *Engine) modifiedParamsFor(calleeName string) map[int]bool {
	for key, set := range e.modifiedParams {
		if key.Name == calleeName {
			return set
		}
	}
	return nil
}

// collectUses records a USE for every identifier reachable inside expr,
// without descending into nested call/assignment handling (those record
// their own DEF/USE when walkStatementBody's inner walk reaches them).
func (e *Engine) collectUses(expr *syntax.Node, stmtID NodeId) {
	if expr.IsNil() {
		return
	}
	switch expr.Kind() {
	case "identifier", "field_identifier":
		stack := e.sym.ScopeMap[expr.Id()]
		e.addUse(stmtID, Use{Name: expr.Text(), StmtID: stmtID, Scope: stack})
		return
	case "number_literal", "string_literal", "char_literal":
		return
	case "call_expression", "assignment_expression":
		return
	}
	for i := 0; i < expr.ChildCount(); i++ {
		e.collectUses(expr.Child(i), stmtID)
	}
}

func (e *Engine) addDef(stmtID NodeId, d Def) {
	e.defsByStmt[stmtID] = append(e.defsByStmt[stmtID], d)
}

func (e *Engine) addUse(stmtID NodeId, u Use) {
	e.usesByStmt[stmtID] = append(e.usesByStmt[stmtID], u)
}

// declaredName unwraps pointer/array/reference/field declarators and
// expressions to the identifier they ultimately name.
func declaredName(n *syntax.Node) string {
	if n.IsNil() {
		return ""
	}
	switch n.Kind() {
	case "identifier", "field_identifier":
		return n.Text()
	case "pointer_declarator", "reference_declarator", "pointer_expression":
		if inner := n.Field("declarator"); !inner.IsNil() {
			return declaredName(inner)
		}
		if inner := n.Field("argument"); !inner.IsNil() {
			return declaredName(inner)
		}
	case "array_declarator", "subscript_expression":
		if inner := n.Field("declarator"); !inner.IsNil() {
			return declaredName(inner)
		}
		if inner := n.Field("argument"); !inner.IsNil() {
			return declaredName(inner)
		}
	case "field_expression":
		if arg := n.Field("argument"); !arg.IsNil() {
			if field := n.Field("field"); !field.IsNil() {
				return declaredName(arg) + "." + field.Text()
			}
		}
	}
	return strings.TrimSpace(n.Text())
}
