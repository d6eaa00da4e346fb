package sdfg

import (
	"strings"

	"github.com/viant/codeviews/syntax"
)

// analyzePointerModification inspects every function body for the patterns
// spec.md §4.6 names (`*p = …`, `p[i] = …`, `p->f = …`, `(*p)++`) and
// records which pointer-parameter indices each function modifies.
func (e *Engine) analyzePointerModification(root *syntax.Node) {
	var walk func(n *syntax.Node)
	walk = func(n *syntax.Node) {
		if n.IsNil() {
			return
		}
		if n.Kind() == "function_definition" {
			e.analyzeFunctionPointerMod(n)
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (e *Engine) analyzeFunctionPointerMod(fn *syntax.Node) {
	info, ok := e.ws.FunctionInfo[fn.Id()]
	if !ok {
		return
	}
	params := pointerParams(fn)
	if len(params) == 0 {
		return
	}

	modified := map[int]bool{}
	body := fn.Field("body")
	var scan func(n *syntax.Node)
	scan = func(n *syntax.Node) {
		if n.IsNil() {
			return
		}
		switch n.Kind() {
		case "assignment_expression":
			left := n.Field("left")
			if name, idx := matchesModifiedPointerTarget(left, params); name != "" {
				modified[idx] = true
			}
		case "update_expression":
			operand := n.Field("argument")
			if name, idx := matchesModifiedPointerTarget(operand, params); name != "" {
				modified[idx] = true
			}
		}
		for i := 0; i < n.ChildCount(); i++ {
			scan(n.Child(i))
		}
	}
	scan(body)

	if len(modified) > 0 {
		e.modifiedParams[info.Key] = modified
	}
}

// matchesModifiedPointerTarget recognizes *p, p[i], p->f, (*p) against the
// known pointer-parameter set, returning the base name and its parameter
// index when it matches.
func matchesModifiedPointerTarget(target *syntax.Node, params map[string]int) (string, int) {
	if target.IsNil() {
		return "", 0
	}
	switch target.Kind() {
	case "pointer_expression":
		operand := target.Field("argument")
		if operand.IsNil() && target.NamedChildCount() > 0 {
			operand = target.NamedChild(0)
		}
		name := strings.TrimSpace(operand.Text())
		if idx, ok := params[name]; ok {
			return name, idx
		}
	case "subscript_expression":
		operand := target.Field("argument")
		name := strings.TrimSpace(operand.Text())
		if idx, ok := params[name]; ok {
			return name, idx
		}
	case "field_expression":
		operand := target.Field("argument")
		if operand.Kind() == "identifier" {
			name := strings.TrimSpace(operand.Text())
			if idx, ok := params[name]; ok {
				return name, idx
			}
		}
	case "parenthesized_expression":
		if target.NamedChildCount() > 0 {
			return matchesModifiedPointerTarget(target.NamedChild(0), params)
		}
	}
	return "", 0
}

// pointerParams maps each pointer-typed parameter name to its 0-based index.
func pointerParams(fn *syntax.Node) map[string]int {
	out := map[string]int{}
	declarator := fn.Field("declarator")
	params := findParamListNode(declarator)
	if params.IsNil() {
		return out
	}
	idx := 0
	for _, p := range params.NamedChildren() {
		if p.Kind() != "parameter_declaration" {
			continue
		}
		d := p.Field("declarator")
		if d.Kind() == "pointer_declarator" {
			if name := d.Field("declarator"); !name.IsNil() {
				out[name.Text()] = idx
			}
		}
		idx++
	}
	return out
}

func findParamListNode(n *syntax.Node) *syntax.Node {
	if n.IsNil() {
		return nil
	}
	if n.Kind() == "parameter_list" {
		return n
	}
	for _, c := range n.Children() {
		if found := findParamListNode(c); !found.IsNil() {
			return found
		}
	}
	return nil
}

// injectPointerModSyntheticDefs adds a DEF for x at call sites that pass
// &x to a parameter this engine's analysis marked as modified, so the
// caller's later uses of x correctly reach that definition.
func (e *Engine) injectPointerModSyntheticDefs(root *syntax.Node) {
	var walk func(n *syntax.Node, stmtID NodeId)
	walk = func(n *syntax.Node, stmtID NodeId) {
		if n.IsNil() {
			return
		}
		if n.Kind() == "call_expression" {
			e.injectCallSiteDefs(n, stmtID)
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i), stmtID)
		}
	}

	var visit func(n *syntax.Node)
	visit = func(n *syntax.Node) {
		if n.IsNil() {
			return
		}
		if isStatementKind(n.Kind()) {
			walk(n, n.Id())
			return
		}
		for i := 0; i < n.ChildCount(); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
}

func (e *Engine) injectCallSiteDefs(call *syntax.Node, stmtID NodeId) {
	fn := call.Field("function")
	args := call.Field("arguments")
	if fn.IsNil() || args.IsNil() {
		return
	}
	modified := e.modifiedParamsFor(fn.Text())
	if modified == nil {
		return
	}
	stack := e.sym.ScopeMap[call.Id()]
	for i, a := range args.NamedChildren() {
		if !modified[i] {
			continue
		}
		if a.Kind() != "pointer_expression" {
			continue
		}
		operand := a.Field("argument")
		if operand.IsNil() && a.NamedChildCount() > 0 {
			operand = a.NamedChild(0)
		}
		name := declaredName(operand)
		if name == "" {
			continue
		}
		e.addDef(stmtID, Def{Name: name, StmtID: stmtID, Scope: stack})
	}
}
