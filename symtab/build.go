// Package symtab builds the per-token scope stacks, declaration map and
// type map described in spec.md §3/§4.2 (C2): a preorder walk that pushes a
// fresh scope on block entry and pops on exit, resolving uses by the
// longest-scope-match rule. Grounded on analyzer/node.go's walk (scope
// push/pop around block nodes) from the teacher, generalized to C/C++'s
// richer set of scope-introducing kinds.
package symtab

import (
	"strings"

	"github.com/viant/codeviews/classify"
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// blockKinds introduce a new scope on entry. Function/catch/for bodies all
// open a scope even though their own node isn't a "compound_statement",
// because parameters/catch-bindings/for-inits are visible only inside.
var blockKinds = map[string]bool{
	"compound_statement":  true,
	"function_definition": true,
	"for_statement":        true,
	"for_range_loop":       true,
	"catch_clause":         true,
	"namespace_definition": true,
	"class_specifier":      true,
	"struct_specifier":     true,
	"union_specifier":      true,
}

// Builder walks a translation unit and fills a records.SymbolTable.
type Builder struct {
	lang  syntax.Language
	table classify.Table
	sym   *records.SymbolTable

	// ownerStack holds enclosing struct/class/union names, innermost last,
	// so a field_declaration can be attributed to the type that owns it.
	ownerStack []string
}

// New creates a Builder for the given language.
func New(lang syntax.Language) *Builder {
	return &Builder{lang: lang, table: classify.For(lang), sym: records.NewSymbolTable()}
}

// Build walks root and returns the populated symbol table.
func (b *Builder) Build(root *syntax.Node) *records.SymbolTable {
	rootScope := b.sym.NewScope()
	b.walk(root, []records.ScopeID{rootScope}, "")
	return b.sym
}

func (b *Builder) walk(n *syntax.Node, stack []records.ScopeID, declKind string) {
	if n.IsNil() {
		return
	}

	kind := n.Kind()
	nextStack := stack
	if blockKinds[kind] && kind != "function_definition" {
		nextStack = append(append([]records.ScopeID{}, stack...), b.sym.NewScope())
	}

	switch kind {
	case "identifier", "field_identifier", "type_identifier":
		b.recordToken(n, nextStack, declKind)
	case "function_definition":
		b.handleFunction(n, nextStack)
		return
	case "declaration", "field_declaration", "parameter_declaration", "init_declarator":
		b.handleDeclaration(n, nextStack)
	case "for_range_loop":
		b.handleForRange(n, nextStack)
		return
	case "class_specifier", "struct_specifier", "union_specifier":
		b.handleStructLike(n, nextStack)
		return
	case "type_definition":
		b.handleTypedef(n)
	}

	for i := 0; i < n.ChildCount(); i++ {
		b.walk(n.Child(i), nextStack, "")
	}
}

func (b *Builder) recordToken(n *syntax.Node, stack []records.ScopeID, declKind string) {
	b.sym.RecordToken(n.Id(), stack)
	if declKind != "" {
		b.sym.RecordDeclaration(n.Id(), n.Text(), declKind, stack)
		return
	}
	b.sym.RecordUse(n.Id(), n.Text(), stack)
}

// handleFunction pushes a scope covering parameters + body as one unit (a
// C function's parameter scope and its top-level body scope are the same
// scope in practice — a local can't shadow a parameter at the outermost
// block level), then recurses into parameters and body under it.
func (b *Builder) handleFunction(n *syntax.Node, stack []records.ScopeID) {
	fnStack := append(append([]records.ScopeID{}, stack...), b.sym.NewScope())

	declarator := n.Field("declarator")
	if !declarator.IsNil() {
		b.walkParameters(declarator, fnStack)
	}
	if ret := n.Field("type"); !ret.IsNil() {
		b.walk(ret, fnStack, "")
	}
	if body := n.Field("body"); !body.IsNil() {
		for i := 0; i < body.ChildCount(); i++ {
			b.walk(body.Child(i), fnStack, "")
		}
	}
}

func (b *Builder) walkParameters(declarator *syntax.Node, stack []records.ScopeID) {
	params := findParamList(declarator)
	if params.IsNil() {
		return
	}
	for i := 0; i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p.Kind() != "parameter_declaration" {
			continue
		}
		typ := typeText(p)
		if name := findDeclaredName(p); !name.IsNil() {
			b.sym.RecordToken(name.Id(), stack)
			b.sym.RecordDeclaration(name.Id(), name.Text(), typ, stack)
		}
	}
}

func findParamList(n *syntax.Node) *syntax.Node {
	if n.IsNil() {
		return nil
	}
	if n.Kind() == "parameter_list" {
		return n
	}
	for _, child := range n.Children() {
		if found := findParamList(child); !found.IsNil() {
			return found
		}
	}
	return nil
}

// handleDeclaration records the declared name(s) with the declaration's
// type text, then walks the initializer (if any) as uses.
func (b *Builder) handleDeclaration(n *syntax.Node, stack []records.ScopeID) {
	typ := typeText(n)
	isField := n.Kind() == "field_declaration"
	owner := b.currentOwner()
	declarators := n.NamedChildren()
	for _, d := range declarators {
		switch d.Kind() {
		case "init_declarator":
			name := findDeclaredName(d.Field("declarator"))
			if name.IsNil() {
				name = findDeclaredName(d)
			}
			if !name.IsNil() {
				b.sym.RecordToken(name.Id(), stack)
				b.sym.RecordDeclaration(name.Id(), name.Text(), typ, stack)
				if isField && owner != "" {
					b.sym.RecordStructField(owner, name.Text(), typ)
				}
			}
			if init := d.Field("value"); !init.IsNil() {
				b.walk(init, stack, "")
			}
		case "identifier", "field_identifier", "pointer_declarator", "array_declarator", "reference_declarator":
			if name := findDeclaredName(d); !name.IsNil() {
				b.sym.RecordToken(name.Id(), stack)
				b.sym.RecordDeclaration(name.Id(), name.Text(), typ, stack)
				if isField && owner != "" {
					b.sym.RecordStructField(owner, name.Text(), typ)
				}
			}
		}
	}
}

// handleStructLike pushes n's name onto ownerStack (if it has one) so
// nested field_declarations can be attributed to it, then recurses.
func (b *Builder) handleStructLike(n *syntax.Node, stack []records.ScopeID) {
	name := ""
	if nameNode := n.Field("name"); !nameNode.IsNil() {
		name = nameNode.Text()
	}
	if name != "" {
		b.ownerStack = append(b.ownerStack, name)
	}
	for i := 0; i < n.ChildCount(); i++ {
		b.walk(n.Child(i), stack, "")
	}
	if name != "" {
		b.ownerStack = b.ownerStack[:len(b.ownerStack)-1]
	}
}

func (b *Builder) currentOwner() string {
	if len(b.ownerStack) == 0 {
		return ""
	}
	return b.ownerStack[len(b.ownerStack)-1]
}

// handleTypedef records name -> expansion for every declarator in a
// `typedef <type> name, *other, ...;` statement (spec.md §4.2).
func (b *Builder) handleTypedef(n *syntax.Node) {
	base := ""
	if t := n.Field("type"); !t.IsNil() {
		base = t.Text()
	}
	if base == "" {
		return
	}
	typeNode := n.Field("type")
	for i := 0; i < n.NamedChildCount(); i++ {
		d := n.NamedChild(i)
		if d.Id() == typeNode.Id() {
			continue
		}
		switch d.Kind() {
		case "identifier", "type_identifier", "pointer_declarator", "array_declarator",
			"function_declarator", "reference_declarator", "abstract_pointer_declarator":
			name := findDeclaredName(d)
			if name.IsNil() {
				continue
			}
			expansion := base
			if stars := pointerStarCount(d); stars > 0 {
				expansion = base + " " + strings.Repeat("*", stars)
			}
			b.sym.RecordTypedef(name.Text(), expansion)
		}
	}
}

// pointerStarCount counts the pointer_declarator/abstract_pointer_declarator
// levels wrapping a declarator, e.g. `**p` -> 2.
func pointerStarCount(n *syntax.Node) int {
	if n.IsNil() {
		return 0
	}
	switch n.Kind() {
	case "pointer_declarator", "abstract_pointer_declarator":
		return 1 + pointerStarCount(n.Field("declarator"))
	case "array_declarator", "reference_declarator", "function_declarator":
		return pointerStarCount(n.Field("declarator"))
	default:
		return 0
	}
}

func (b *Builder) handleForRange(n *syntax.Node, stack []records.ScopeID) {
	loopStack := append(append([]records.ScopeID{}, stack...), b.sym.NewScope())
	typ := typeText(n)
	if decl := n.Field("declarator"); !decl.IsNil() {
		if name := findDeclaredName(decl); !name.IsNil() {
			b.sym.RecordToken(name.Id(), loopStack)
			b.sym.RecordDeclaration(name.Id(), name.Text(), typ, loopStack)
		}
	}
	if right := n.Field("right"); !right.IsNil() {
		b.walk(right, loopStack, "")
	}
	if body := n.Field("body"); !body.IsNil() {
		b.walk(body, loopStack, "")
	}
}

// findDeclaredName unwraps pointer/array/reference declarators to find the
// leaf identifier being declared (e.g. `*p` -> `p`, `arr[10]` -> `arr`).
func findDeclaredName(n *syntax.Node) *syntax.Node {
	if n.IsNil() {
		return nil
	}
	switch n.Kind() {
	case "identifier", "field_identifier", "type_identifier":
		return n
	case "pointer_declarator", "reference_declarator", "abstract_pointer_declarator":
		return findDeclaredName(n.Field("declarator"))
	case "array_declarator":
		return findDeclaredName(n.Field("declarator"))
	case "function_declarator":
		return findDeclaredName(n.Field("declarator"))
	}
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c.Kind() == "identifier" || c.Kind() == "field_identifier" {
			return c
		}
	}
	return nil
}

// typeText returns the best-effort type text for a declaration node: the
// text of its "type" field when present, otherwise every named child that
// is not a declarator, joined with spaces.
func typeText(n *syntax.Node) string {
	if n.IsNil() {
		return ""
	}
	if t := n.Field("type"); !t.IsNil() {
		return t.Text()
	}
	var parts []string
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		switch c.Kind() {
		case "init_declarator", "identifier", "pointer_declarator", "array_declarator",
			"function_declarator", "reference_declarator":
			continue
		}
		parts = append(parts, c.Text())
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
