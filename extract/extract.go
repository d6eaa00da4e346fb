// Package extract implements the Statement Extractor (spec.md C3): a
// preorder walk that records each statement-kind node into a node list and
// populates the shared records.Workspace with function/class/label/lambda
// bookkeeping, descending only into the taken branch of preprocessor
// conditionals. Grounded on analyzer/node.go's walk/handleFunction/
// handleAssignment dispatch shape and the pack's recursive
// walkForFunctions/walkForStructs pattern for declaration capture.
package extract

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viant/codeviews/classify"
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// Result is everything the extractor produces from one translation unit.
type Result struct {
	Nodes     []records.GraphNode
	Workspace *records.Workspace
	// PreprocTrace records, in visit order, every preprocessor branch
	// decision (DEBUG_PREPROC per SPEC_FULL.md §A).
	PreprocTrace []PreprocDecision
}

// PreprocDecision is one #if/#ifdef resolution, kept for diagnostics.
type PreprocDecision struct {
	NodeID NodeId
	Line   int
	Taken  string // "then", "else", or "then (unresolved)"
	Reason string
}

type NodeId = records.NodeId

// Extractor holds the mutable state of one extraction pass.
type Extractor struct {
	lang  syntax.Language
	table classify.Table
	ws    *records.Workspace

	nodes   []records.GraphNode
	macros  map[string]string
	trace   []PreprocDecision
	classStack []string // enclosing class/namespace names, innermost last
}

// New creates an Extractor for the given language.
func New(lang syntax.Language) *Extractor {
	return &Extractor{
		lang:   lang,
		table:  classify.For(lang),
		ws:     records.NewWorkspace(),
		macros: map[string]string{},
	}
}

// Run walks root and returns the accumulated Result.
func (e *Extractor) Run(root *syntax.Node) *Result {
	e.walk(root)
	return &Result{Nodes: e.nodes, Workspace: e.ws, PreprocTrace: e.trace}
}

// Tracer writes a preprocessor decision trace to w, one line per branch
// taken, for DEBUG_PREPROC=1 per SPEC_FULL.md §A.1.
type Tracer struct {
	w io.Writer
}

// NewTracer wraps w as a Tracer.
func NewTracer(w io.Writer) Tracer { return Tracer{w: w} }

// Write emits every decision in trace as one line each.
func (t Tracer) Write(trace []PreprocDecision) {
	if t.w == nil {
		return
	}
	for _, d := range trace {
		fmt.Fprintf(t.w, "line %d: took %s (%s)\n", d.Line, d.Taken, d.Reason)
	}
}

// ImplicitReturnLabel reproduces the original implementation's synthetic
// return-node label ("implicit_return_" + funcName), so tooling that
// pattern-matches on node labels keeps working (SPEC_FULL.md §C).
func ImplicitReturnLabel(funcName string) string {
	return "implicit_return_" + funcName
}

func (e *Extractor) currentOwner() string {
	if len(e.classStack) == 0 {
		return ""
	}
	return e.classStack[len(e.classStack)-1]
}

func (e *Extractor) emit(n *syntax.Node, kindTag string) {
	e.nodes = append(e.nodes, records.GraphNode{
		ID:      n.Id(),
		Line:    n.Line(),
		Label:   n.Text(),
		KindTag: kindTag,
	})
}

func (e *Extractor) walk(n *syntax.Node) {
	if n.IsNil() {
		return
	}

	kind := n.Kind()
	info := e.table.Lookup(kind)
	if info.Statement {
		e.emit(n, kind)
	}

	switch kind {
	case "function_definition":
		e.handleFunction(n)
		return
	case "class_specifier", "struct_specifier":
		e.handleClass(n)
		return
	case "namespace_definition":
		e.handleNamespace(n)
		return
	case "namespace_alias_definition":
		e.handleNamespaceAlias(n)
		return
	case "labeled_statement":
		e.handleLabel(n)
	case "lambda_expression":
		e.handleLambda(n)
	case "preproc_ifdef":
		e.handlePreprocIfdef(n)
		return
	case "preproc_if":
		e.handlePreprocIf(n)
		return
	case "preproc_def", "preproc_function_def":
		e.handlePreprocDef(n)
	}

	for i := 0; i < n.ChildCount(); i++ {
		e.walk(n.Child(i))
	}
}

// handleFunction records function_list/return_type/virtual/noexcept/
// attribute tags and recurses into the body, scanning descendants for
// nested lambdas along the way.
func (e *Extractor) handleFunction(n *syntax.Node) {
	name, sig := functionNameAndSignature(n)
	owner := e.currentOwner()
	key := records.FunctionKey{Owner: owner, Name: name, Signature: sig}

	returnType := ""
	if t := n.Field("type"); !t.IsNil() {
		returnType = t.Text()
	}

	info := &records.FunctionInfo{
		ID:         n.Id(),
		Key:        key,
		ReturnType: returnType,
		IsMain:     owner == "" && name == "main",
	}

	text := n.Text()
	if strings.Contains(text, "virtual ") {
		info.IsVirtual = true
		e.ws.VirtualFunctions[n.Id()] = true
	}
	if strings.Contains(text, "constexpr ") {
		info.IsConstexpr = true
		e.ws.ConstexprFunctions[n.Id()] = true
	}
	if strings.Contains(text, "noexcept") {
		info.IsNoexcept = true
		e.ws.NoexceptFunctions[n.Id()] = true
	}
	if strings.Contains(text, "override") {
		info.IsOverride = true
	}
	if strings.Contains(text, "[[noreturn]]") {
		info.IsNoreturn = true
	}
	if attrs := noreturnAttributes(text); len(attrs) > 0 {
		info.Attributes = attrs
		e.ws.AttributedFunctions[n.Id()] = attrs
	}

	if body := n.Field("body"); !body.IsNil() {
		if first := firstStatement(body); !first.IsNil() {
			info.BodyID = first.Id()
		}
	}

	e.ws.FunctionList[key] = n.Id()
	e.ws.FunctionInfo[n.Id()] = info
	e.ws.ReturnType[key] = returnType
	if info.IsMain {
		e.ws.MainFunctionID = n.Id()
	}

	if declarator := n.Field("declarator"); !declarator.IsNil() {
		e.walk(declarator)
	}
	if body := n.Field("body"); !body.IsNil() {
		e.walk(body)
	}
}

// handleClass records class_list and extends (base_class_clause), then
// recurses with the class pushed as the current owner.
func (e *Extractor) handleClass(n *syntax.Node) {
	name := ""
	if nameNode := n.Field("name"); !nameNode.IsNil() {
		name = nameNode.Text()
	}
	if name == "" {
		for i := 0; i < n.ChildCount(); i++ {
			e.walk(n.Child(i))
		}
		return
	}

	e.ws.ClassList[name] = n.Id()

	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c.Kind() == "base_class_clause" {
			for _, base := range c.NamedChildren() {
				if base.Kind() == "access_specifier" {
					continue
				}
				baseName := base.Text()
				baseName = strings.TrimPrefix(baseName, "public ")
				baseName = strings.TrimPrefix(baseName, "private ")
				baseName = strings.TrimPrefix(baseName, "protected ")
				e.ws.Extends[name] = append(e.ws.Extends[name], strings.TrimSpace(baseName))
			}
		}
	}

	e.classStack = append(e.classStack, name)
	for i := 0; i < n.ChildCount(); i++ {
		e.walk(n.Child(i))
	}
	e.classStack = e.classStack[:len(e.classStack)-1]
}

func (e *Extractor) handleNamespace(n *syntax.Node) {
	name := ""
	if nameNode := n.Field("name"); !nameNode.IsNil() {
		name = nameNode.Text()
	}
	e.classStack = append(e.classStack, name)
	for i := 0; i < n.ChildCount(); i++ {
		e.walk(n.Child(i))
	}
	e.classStack = e.classStack[:len(e.classStack)-1]
}

func (e *Extractor) handleNamespaceAlias(n *syntax.Node) {
	text := n.Text()
	text = strings.TrimPrefix(text, "namespace")
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	parts := strings.SplitN(text, "=", 2)
	if len(parts) == 2 {
		alias := strings.TrimSpace(parts[0])
		target := strings.TrimSpace(parts[1])
		e.ws.NamespaceAliases[alias] = target
	}
}

func (e *Extractor) handleLabel(n *syntax.Node) {
	if label := n.Field("label"); !label.IsNil() {
		e.ws.LabelStatementMap[label.Text()] = n.Id()
	} else if n.NamedChildCount() > 0 {
		e.ws.LabelStatementMap[n.NamedChild(0).Text()] = n.Id()
	}
}

// handleLambda records the lambda site: its enclosing statement, the first
// statement of its body, its parameters, and whether it is invoked in place
// or bound to a variable. It does not walk the body; no owner is pushed for
// the lambda.
func (e *Extractor) handleLambda(n *syntax.Node) {
	info := &records.LambdaInfo{
		ID:           n.Id(),
		Enclosing:    e.enclosingStatementID(n),
		ParamToIndex: map[string]int{},
		IsImmediate:  isImmediatelyInvokedLambda(n),
		BoundVar:     boundLambdaVariable(n),
	}
	if body := n.Field("body"); !body.IsNil() {
		if first := firstStatement(body); !first.IsNil() {
			info.BodyID = first.Id()
		}
	}
	if params := n.Field("parameters"); !params.IsNil() {
		for i, p := range params.NamedChildren() {
			info.ParamToIndex[p.Text()] = i
		}
	}
	if info.BoundVar != "" {
		e.ws.LambdaVariables[info.BoundVar] = n.Id()
	}
	e.ws.LambdaMap[n.Id()] = info
}

// enclosingStatementID walks up from n to the nearest ancestor classified as
// a statement, e.g. the expression_statement/declaration a lambda literal
// sits in.
func (e *Extractor) enclosingStatementID(n *syntax.Node) NodeId {
	for p := n.Parent(); !p.IsNil(); p = p.Parent() {
		if e.table.Lookup(p.Kind()).Statement {
			return p.Id()
		}
	}
	return 0
}

// isImmediatelyInvokedLambda reports whether n is invoked at its own
// definition site: `[...](...){...}(args)`, optionally parenthesized.
func isImmediatelyInvokedLambda(n *syntax.Node) bool {
	parent := n.Parent()
	if parent.Kind() == "parenthesized_expression" {
		parent = parent.Parent()
	}
	if parent.IsNil() || parent.Kind() != "call_expression" {
		return false
	}
	fn := parent.Field("function")
	if fn.IsNil() {
		return false
	}
	if fn.Id() == n.Id() {
		return true
	}
	return fn.Kind() == "parenthesized_expression" && fn.NamedChildCount() > 0 && fn.NamedChild(0).Id() == n.Id()
}

// boundLambdaVariable walks up from a lambda literal looking for the
// declarator or assignment target it is bound to, e.g. `auto f = [...]{...};`
// or `f = [...]{...};`. Returns "" when the lambda is used inline (an
// argument, an immediately-invoked call) rather than named.
func boundLambdaVariable(n *syntax.Node) string {
	for p := n.Parent(); !p.IsNil(); p = p.Parent() {
		switch p.Kind() {
		case "init_declarator":
			if decl := p.Field("declarator"); !decl.IsNil() {
				return decl.Text()
			}
			return ""
		case "assignment_expression":
			if left := p.Field("left"); !left.IsNil() {
				return left.Text()
			}
			return ""
		case "declaration", "expression_statement", "argument_list", "function_definition", "call_expression":
			return ""
		}
	}
	return ""
}

// handlePreprocDef extends the running macro table per spec.md §4.3.
func (e *Extractor) handlePreprocDef(n *syntax.Node) {
	name := ""
	value := ""
	if nameNode := n.Field("name"); !nameNode.IsNil() {
		name = nameNode.Text()
	}
	if valNode := n.Field("value"); !valNode.IsNil() {
		value = strings.TrimSpace(valNode.Text())
	}
	if name != "" {
		e.macros[name] = value
	}
}

// handlePreprocIfdef descends into the taken branch only: #ifdef takes the
// body when the macro is defined, #ifndef when it is not.
func (e *Extractor) handlePreprocIfdef(n *syntax.Node) {
	negated := strings.HasPrefix(strings.TrimSpace(n.Text()), "#ifndef")
	macroName := ""
	if nameNode := n.Field("name"); !nameNode.IsNil() {
		macroName = nameNode.Text()
	}
	_, defined := e.macros[macroName]
	taken := defined
	if negated {
		taken = !defined
	}

	branch := "then (unresolved)"
	if taken {
		branch = "then"
	} else {
		branch = "else"
	}
	e.trace = append(e.trace, PreprocDecision{NodeID: n.Id(), Line: n.Line(), Taken: branch,
		Reason: "macro " + macroName + " defined=" + strconv.FormatBool(defined)})

	nameNode := n.Field("name")
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if !nameNode.IsNil() && c.Id() == nameNode.Id() {
			continue
		}
		if c.Kind() == "preproc_else" {
			if !taken {
				for j := 0; j < c.ChildCount(); j++ {
					e.walk(c.Child(j))
				}
			}
			continue
		}
		if taken {
			e.walk(c)
		}
	}
}

// handlePreprocIf evaluates numeric/macro #if conditions with short-circuit
// &&/||; unknowable conditions default to including the then-branch, per
// spec.md §4.3 and SPEC_FULL.md's DEBUG_PREPROC tracer.
func (e *Extractor) handlePreprocIf(n *syntax.Node) {
	cond := n.Field("condition")
	value, resolved := e.evalPreprocCondition(cond)
	taken := value
	reason := "resolved"
	if !resolved {
		taken = true
		reason = "unresolvable, defaulting to then-branch"
	}

	branch := "else"
	if taken {
		branch = "then"
	}
	if !resolved {
		branch = "then (unresolved)"
	}
	e.trace = append(e.trace, PreprocDecision{NodeID: n.Id(), Line: n.Line(), Taken: branch, Reason: reason})

	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Id() == cond.Id() {
			continue
		}
		if c.Kind() == "preproc_elif" || c.Kind() == "preproc_else" {
			if !taken {
				for j := 0; j < c.ChildCount(); j++ {
					e.walk(c.Child(j))
				}
			}
			continue
		}
		if taken {
			e.walk(c)
		}
	}
}

// evalPreprocCondition handles "defined(X)", numeric literals, and
// &&/|| combinations thereof. Returns (value, resolved).
func (e *Extractor) evalPreprocCondition(n *syntax.Node) (bool, bool) {
	if n.IsNil() {
		return false, false
	}
	text := strings.TrimSpace(n.Text())

	if strings.HasPrefix(text, "defined(") && strings.HasSuffix(text, ")") {
		name := strings.TrimSuffix(strings.TrimPrefix(text, "defined("), ")")
		_, ok := e.macros[strings.TrimSpace(name)]
		return ok, true
	}
	if strings.HasPrefix(text, "defined ") {
		name := strings.TrimSpace(strings.TrimPrefix(text, "defined "))
		_, ok := e.macros[name]
		return ok, true
	}

	if idx := splitTopLevel(text, "&&"); idx >= 0 {
		lv, lok := e.evalPreprocConditionText(text[:idx])
		rv, rok := e.evalPreprocConditionText(text[idx+2:])
		if lok && rok {
			return lv && rv, true
		}
		return false, false
	}
	if idx := splitTopLevel(text, "||"); idx >= 0 {
		lv, lok := e.evalPreprocConditionText(text[:idx])
		rv, rok := e.evalPreprocConditionText(text[idx+2:])
		if lok && rok {
			return lv || rv, true
		}
		return false, false
	}

	if n.NamedChildCount() == 1 {
		return e.evalPreprocCondition(n.NamedChild(0))
	}

	return e.evalPreprocConditionText(text)
}

func (e *Extractor) evalPreprocConditionText(text string) (bool, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "defined(") && strings.HasSuffix(text, ")") {
		name := strings.TrimSuffix(strings.TrimPrefix(text, "defined("), ")")
		_, ok := e.macros[strings.TrimSpace(name)]
		return ok, true
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n != 0, true
	}
	if v, ok := e.macros[text]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n != 0, true
		}
	}
	return false, false
}

// splitTopLevel finds op outside of parens, returning its index or -1.
func splitTopLevel(text, op string) int {
	depth := 0
	for i := 0; i+len(op) <= len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && text[i:i+len(op)] == op {
			return i
		}
	}
	return -1
}

// firstStatement returns the first named child of a block that is not a
// comment (braces are anonymous children and never returned). The
// classifier is not consulted.
func firstStatement(body *syntax.Node) *syntax.Node {
	for i := 0; i < body.NamedChildCount(); i++ {
		c := body.NamedChild(i)
		if c.Kind() != "comment" {
			return c
		}
	}
	return nil
}

// functionNameAndSignature extracts the declared name and a best-effort
// parameter-type signature text used as the function_list key's disambiguator.
func functionNameAndSignature(n *syntax.Node) (string, string) {
	declarator := n.Field("declarator")
	name := ""
	var params *syntax.Node
	for d := declarator; !d.IsNil(); {
		switch d.Kind() {
		case "function_declarator":
			if params == nil {
				params = d.Field("parameters")
			}
			d = d.Field("declarator")
		case "identifier", "field_identifier", "destructor_name", "operator_name":
			name = d.Text()
			d = nil
		case "qualified_identifier":
			if scoped := d.Field("name"); !scoped.IsNil() {
				name = scoped.Text()
			} else {
				name = d.Text()
			}
			d = nil
		case "pointer_declarator", "reference_declarator":
			d = d.Field("declarator")
		default:
			d = nil
		}
	}
	sig := ""
	if params != nil && !params.IsNil() {
		var types []string
		for _, p := range params.NamedChildren() {
			types = append(types, typeOf(p))
		}
		sig = strings.Join(types, ",")
	}
	return name, sig
}

func typeOf(param *syntax.Node) string {
	if t := param.Field("type"); !t.IsNil() {
		return t.Text()
	}
	return param.Text()
}

// noreturnAttributes scans for GCC/Clang/C++11 noreturn-style attribute text.
func noreturnAttributes(text string) []string {
	var out []string
	if strings.Contains(text, "[[noreturn]]") {
		out = append(out, "noreturn")
	}
	if strings.Contains(text, "__attribute__((noreturn))") {
		out = append(out, "noreturn")
	}
	return out
}
