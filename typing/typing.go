// Package typing implements argument and signature typing (spec.md C6):
// get_argument_type infers a value-category-tagged type string for a call
// argument expression, and signatures_match decides whether a call's
// inferred argument types are compatible with a candidate function's
// formal parameter types, under a deliberately lenient policy (templates
// and unresolved names are wildcards) so Phase F's target resolution degrades
// gracefully instead of rejecting calls outright. Grounded on the teacher
// and pack's type-inference switch-on-expression-kind shape, adapted to the
// C/C++ surface spec.md §4.5 names explicitly.
package typing

import (
	"strings"
	"unicode"

	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// Resolver infers argument types using a symbol table for identifier
// lookups.
type Resolver struct {
	Symbols *records.SymbolTable
	Scope   map[syntax.NodeId][]records.ScopeID
}

// NewResolver builds a Resolver for one translation unit's symbol table.
func NewResolver(table *records.SymbolTable) *Resolver {
	return &Resolver{Symbols: table}
}

// GetArgumentType infers expr's type, suffixed with a value-category tag
// per spec.md §4.5.
func (r *Resolver) GetArgumentType(expr *syntax.Node, scopeStack []records.ScopeID) string {
	if expr.IsNil() {
		return "unknown"
	}

	switch expr.Kind() {
	case "identifier", "field_identifier":
		if declID, ok := r.Symbols.Resolve(expr.Text(), scopeStack); ok {
			if t, ok := r.Symbols.DataType[declID]; ok && t != "" {
				return ensureSuffix(t, "&")
			}
		}
		return "unknown&"

	case "number_literal":
		text := expr.Text()
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "f"):
			return "float"
		case strings.Contains(lower, "."), strings.Contains(lower, "e"):
			return "double"
		default:
			return "int"
		}

	case "string_literal":
		return "const char*"

	case "char_literal":
		return "char"

	case "call_expression":
		return r.callExpressionType(expr, scopeStack)

	case "pointer_expression":
		return r.pointerExpressionType(expr, scopeStack)

	case "unary_expression":
		return r.unaryExpressionType(expr, scopeStack)

	case "subscript_expression":
		base := r.GetArgumentType(expr.Field("argument"), scopeStack)
		return stripOnePointer(trimSuffix(base)) + "&"

	case "field_expression":
		return "unknown&"

	case "binary_expression":
		left := r.GetArgumentType(expr.Field("left"), scopeStack)
		right := r.GetArgumentType(expr.Field("right"), scopeStack)
		return promote(trimSuffix(left), trimSuffix(right))

	default:
		return "unknown"
	}
}

// callExpressionType special-cases std::move / std::forward<T>, spec.md
// §4.5's two named library-call typing rules. Any other call is treated as
// constructing the type named by its callee (`std::runtime_error("x")` ->
// "std::runtime_error"), the best syntactic guess available without a
// resolved overload set — this is what lets a by-value `throw T(...)` type-
// match a `catch (const T&)` clause.
func (r *Resolver) callExpressionType(expr *syntax.Node, scopeStack []records.ScopeID) string {
	fn := expr.Field("function")
	name := fn.Text()

	if name == "std::move" || strings.HasSuffix(name, "::move") {
		if args := expr.Field("arguments"); !args.IsNil() && args.NamedChildCount() > 0 {
			inner := r.GetArgumentType(args.NamedChild(0), scopeStack)
			return trimSuffix(inner) + "&&"
		}
		return "unknown&&"
	}

	if strings.HasPrefix(name, "std::forward") || strings.Contains(name, "forward<") {
		if t := templateArg(fn); t != "" {
			return t
		}
		return "unknown"
	}

	if name == "" {
		return "unknown"
	}
	return name
}

func (r *Resolver) pointerExpressionType(expr *syntax.Node, scopeStack []records.ScopeID) string {
	text := strings.TrimSpace(expr.Text())
	operand := expr.Field("argument")
	if operand.IsNil() && expr.NamedChildCount() > 0 {
		operand = expr.NamedChild(0)
	}
	base := r.GetArgumentType(operand, scopeStack)

	if strings.HasPrefix(text, "&") {
		return trimSuffix(base) + "*"
	}
	// dereference: base stripped of one '*', suffixed '&'
	return stripOnePointer(trimSuffix(base)) + "&"
}

func (r *Resolver) unaryExpressionType(expr *syntax.Node, scopeStack []records.ScopeID) string {
	operand := expr.Field("argument")
	base := r.GetArgumentType(operand, scopeStack)
	return trimSuffix(base)
}

func templateArg(fn *syntax.Node) string {
	text := fn.Text()
	start := strings.Index(text, "<")
	end := strings.LastIndex(text, ">")
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start+1 : end])
}

func ensureSuffix(t, suffix string) string {
	if strings.HasSuffix(t, suffix) {
		return t
	}
	return t + suffix
}

func trimSuffix(t string) string {
	t = strings.TrimSuffix(t, "&&")
	t = strings.TrimSuffix(t, "&")
	return strings.TrimSpace(t)
}

func stripOnePointer(t string) string {
	t = strings.TrimSpace(t)
	if strings.HasSuffix(t, "*") {
		return strings.TrimSpace(strings.TrimSuffix(t, "*"))
	}
	return t
}

// promote is the standard-promotion fallback for binary expressions:
// double beats float beats int beats anything else, unknown otherwise.
func promote(a, b string) string {
	rank := func(t string) int {
		switch t {
		case "double":
			return 3
		case "float":
			return 2
		case "int":
			return 1
		default:
			return 0
		}
	}
	ra, rb := rank(a), rank(b)
	if ra == 0 && rb == 0 {
		return "unknown"
	}
	if ra >= rb {
		if ra == 0 {
			return b
		}
		return a
	}
	return b
}

// IsTemplateParameter reports whether a type name looks like a template
// parameter by its shape alone: a single uppercase letter, a name starting
// with "_T", or a name of at most three characters starting with "T". The
// symbol table is not consulted, so an identifier that does not resolve to a
// concrete type is not a template parameter unless it has one of these shapes.
func IsTemplateParameter(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if len(name) == 1 && unicode.IsUpper(rune(name[0])) {
		return true
	}
	if strings.HasPrefix(name, "_T") || strings.HasPrefix(name, "T") && len(name) <= 3 {
		return true
	}
	return false
}

// SignaturesMatch implements signatures_match per spec.md §4.5, with
// lenient template-wildcard matching (a bare template parameter like T
// matches any argument type).
func SignaturesMatch(callSig, fnSig []string) bool {
	return SignaturesMatchWithOptions(callSig, fnSig, true)
}

// SignaturesMatchWithOptions is SignaturesMatch with the template-wildcard
// relaxation gated by lenientTemplates, for callers driven by
// graph.Config.LenientTemplateMatching.
func SignaturesMatchWithOptions(callSig, fnSig []string, lenientTemplates bool) bool {
	variadic := len(fnSig) > 0 && fnSig[len(fnSig)-1] == "..."
	if !variadic && len(callSig) != len(fnSig) {
		return false
	}
	if variadic && len(callSig) < len(fnSig)-1 {
		return false
	}

	limit := len(fnSig)
	if variadic {
		limit--
	}
	for i := 0; i < limit; i++ {
		if !paramMatches(callSig[i], fnSig[i], lenientTemplates) {
			return false
		}
	}
	return true
}

func paramMatches(callType, fnType string, lenientTemplates bool) bool {
	callType = strings.TrimSpace(callType)
	fnType = strings.TrimSpace(fnType)

	if callType == "unknown" || trimSuffix(callType) == "unknown" {
		return true
	}
	if fnType == "unknown" {
		return true
	}
	if lenientTemplates && IsTemplateParameter(stripTemplateQualifiers(fnType)) {
		return true
	}
	if callType == fnType {
		return true
	}

	// T& binds T and T binds T&; const T& binds T.
	bareCall := trimSuffix(callType)
	bareFn := trimSuffix(strings.TrimPrefix(fnType, "const "))
	if bareCall == bareFn {
		return true
	}

	// const char* binds string types.
	if (fnType == "const char*" || fnType == "char*") &&
		(callType == "const char*" || strings.Contains(callType, "string")) {
		return true
	}

	return false
}

func stripTemplateQualifiers(t string) string {
	t = strings.TrimPrefix(t, "const ")
	t = strings.TrimSuffix(t, "&")
	t = strings.TrimSuffix(t, "&")
	t = strings.TrimSuffix(t, "*")
	return strings.TrimSpace(t)
}
