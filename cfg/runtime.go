package cfg

import (
	"strings"

	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// collectRuntimeBindings scans every registered statement for two
// best-effort bindings Phase C/F need before they run: a pointer/reference
// variable's known dynamic type (ws.RuntimeType, from `new T(...)` or
// `T* p = &local` where local's declared type is known) and a variable bound
// to a free function's address (ws.FunctionPointerAssignments, from
// `fp = someFunction;` or `fp = &someFunction;`), per spec.md §4.4's "known
// runtime type narrows dispatch" and indirect-call resolution rules.
func (b *Builder) collectRuntimeBindings() {
	for _, id := range b.order {
		n := b.syntaxOf[id]
		if n.IsNil() {
			continue
		}
		switch n.Kind() {
		case "declaration":
			b.collectDeclarationBindings(n)
		case "expression_statement":
			if assign := firstNamedOfKind(n, "assignment_expression"); !assign.IsNil() {
				b.collectAssignmentBinding(assign)
			}
		}
	}
}

func firstNamedOfKind(n *syntax.Node, kind string) *syntax.Node {
	for i := 0; i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c.Kind() == kind {
			return c
		}
	}
	return nil
}

func (b *Builder) collectDeclarationBindings(decl *syntax.Node) {
	for _, d := range decl.NamedChildren() {
		if d.Kind() != "init_declarator" {
			continue
		}
		name := d.Field("declarator")
		value := d.Field("value")
		if name.IsNil() || value.IsNil() {
			continue
		}
		if varName := declaratorLeafName(name); varName != "" {
			b.bindRuntimeValue(varName, value)
		}
	}
}

func (b *Builder) collectAssignmentBinding(assign *syntax.Node) {
	left := assign.Field("left")
	right := assign.Field("right")
	if left.IsNil() || right.IsNil() {
		return
	}
	b.bindRuntimeValue(left.Text(), right)
}

// bindRuntimeValue records varName's known dynamic type (from a
// `new T(...)` or an address-of a variable of known type) or its bound
// function (from a bare function name or its address).
func (b *Builder) bindRuntimeValue(varName string, value *syntax.Node) {
	switch value.Kind() {
	case "new_expression":
		if t := value.Field("type"); !t.IsNil() {
			b.ws.RuntimeType[varName] = t.Text()
		}

	case "pointer_expression":
		if !strings.HasPrefix(strings.TrimSpace(value.Text()), "&") {
			return
		}
		operand := value.Field("argument")
		if operand.IsNil() && value.NamedChildCount() > 0 {
			operand = value.NamedChild(0)
		}
		b.bindFromOperand(varName, operand)

	case "identifier":
		b.bindFromOperand(varName, value)
	}
}

// bindFromOperand resolves operand as either a known free function (becomes
// a function-pointer assignment) or a variable of known declared type
// (becomes a runtime-type binding).
func (b *Builder) bindFromOperand(varName string, operand *syntax.Node) {
	if operand.IsNil() {
		return
	}
	name := operand.Text()

	var fns []records.FunctionKey
	for key := range b.ws.FunctionList {
		if key.Owner == "" && key.Name == name {
			fns = append(fns, key)
		}
	}
	if len(fns) > 0 {
		b.ws.FunctionPointerAssignments[varName] = append(b.ws.FunctionPointerAssignments[varName], fns...)
		return
	}

	stack := b.sym.ScopeMap[operand.Id()]
	declID, ok := b.sym.Resolve(name, stack)
	if !ok {
		return
	}
	if t, ok := b.sym.DataType[declID]; ok && t != "" {
		b.ws.RuntimeType[varName] = t
	}
}

// declaratorLeafName unwraps a declarator to its leaf identifier, mirroring
// symtab's findDeclaredName for the declarator kinds a local declaration can
// carry.
func declaratorLeafName(n *syntax.Node) string {
	switch n.Kind() {
	case "identifier", "field_identifier":
		return n.Text()
	case "pointer_declarator", "reference_declarator", "abstract_pointer_declarator":
		return declaratorLeafName(n.Field("declarator"))
	default:
		return ""
	}
}
