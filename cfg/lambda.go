package cfg

import (
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

// phaseG wires lambda invocation/return edges per spec.md §4.4 Phase G: an
// immediately-invoked lambda gets direct invocation edges at its own site;
// a lambda bound to a variable gets them at every recorded call whose
// callee name is that variable; a lambda passed as an argument and invoked inside the callee
// connects the callee's call statement straight to the lambda body.
func (b *Builder) phaseG() {
	for _, lambda := range b.ws.LambdaMap {
		if lambda.BodyID == 0 {
			continue
		}

		if lambda.IsImmediate && lambda.Enclosing != 0 {
			b.wireLambdaInvocation(lambda.Enclosing, lambda.BodyID)
			continue
		}

		if lambda.BoundVar != "" {
			for stmtID := range b.lambdaCallSites(lambda.BoundVar) {
				b.wireLambdaInvocation(stmtID, lambda.BodyID)
			}
		}

		for stmtID, paramIdx := range b.lambdaArgumentInvocations(lambda.ID) {
			_ = paramIdx
			b.wireLambdaInvocation(stmtID, lambda.BodyID)
		}
	}
}

func (b *Builder) wireLambdaInvocation(callSite, bodyID NodeId) {
	b.addEdge(callSite, bodyID, records.LambdaInvocation, "")
	for _, exitID := range b.functionExitsFor(bodyID) {
		if post, ok := b.nextLineTarget(callSite); ok {
			b.addEdge(exitID, post, records.LambdaReturn, "")
		}
	}
}

// functionExitsFor returns the return_statement_map entry keyed by bodyID,
// or bodyID itself when there is none. The map is keyed by the enclosing
// function_definition's id, so for a lambda body this is normally just
// bodyID.
func (b *Builder) functionExitsFor(bodyID NodeId) []NodeId {
	for fnID, returns := range b.ws.ReturnStatementMap {
		if fnID == bodyID {
			return returns
		}
	}
	return []NodeId{bodyID}
}

// lambdaCallSites finds statement ids whose call sites invoke a named
// function-local variable, via the indirect-call bookkeeping populated in
// Phase C.
func (b *Builder) lambdaCallSites(boundVar string) map[NodeId]string {
	out := map[NodeId]string{}
	for _, site := range b.ws.IndirectCalls {
		if site.Object == boundVar {
			out[site.StmtID] = boundVar
		}
	}
	for _, site := range b.ws.FunctionCalls {
		if site.Name == boundVar {
			out[site.StmtID] = boundVar
		}
	}
	return out
}

// lambdaArgumentInvocations finds, for a lambda passed as an argument,
// every callee-side statement that later invokes the corresponding
// parameter, via function_param_to_lambda: look up the callee's declared
// parameter name at that index, then find call sites of that name inside
// the callee's own body.
func (b *Builder) lambdaArgumentInvocations(lambdaID NodeId) map[NodeId]int {
	out := map[NodeId]int{}
	for fnID, paramMap := range b.ws.FunctionParamToLambda {
		for idx, lid := range paramMap {
			if lid != lambdaID {
				continue
			}
			paramName := b.paramNameAt(fnID, idx)
			if paramName == "" {
				continue
			}
			for _, stmtID := range b.callSitesOfName(fnID, paramName) {
				out[stmtID] = idx
			}
		}
	}
	return out
}

// paramNameAt returns the declared name of fn's idx'th formal parameter, or
// "" when fn isn't a registered function node or has no such parameter.
func (b *Builder) paramNameAt(fnID NodeId, idx int) string {
	fn := b.syntaxOf[fnID]
	if fn.IsNil() {
		return ""
	}
	for d := fn.Field("declarator"); !d.IsNil(); d = d.Field("declarator") {
		if d.Kind() != "function_declarator" {
			continue
		}
		params := d.Field("parameters")
		if params.IsNil() {
			return ""
		}
		named := params.NamedChildren()
		if idx < 0 || idx >= len(named) {
			return ""
		}
		return lambdaParamDeclaredName(named[idx].Field("declarator"))
	}
	return ""
}

// lambdaParamDeclaredName unwraps a parameter declarator to its leaf name,
// mirroring symtab's findDeclaredName for the declarator kinds a parameter
// list can carry.
func lambdaParamDeclaredName(n *syntax.Node) string {
	switch {
	case n.IsNil():
		return ""
	case n.Kind() == "identifier" || n.Kind() == "field_identifier":
		return n.Text()
	case n.Kind() == "pointer_declarator" || n.Kind() == "reference_declarator" || n.Kind() == "abstract_pointer_declarator":
		return lambdaParamDeclaredName(n.Field("declarator"))
	default:
		return ""
	}
}

// callSitesOfName finds every statement inside fn's body that calls
// paramName as a function or indirect callee.
func (b *Builder) callSitesOfName(fnID NodeId, paramName string) []NodeId {
	var out []NodeId
	for _, site := range b.ws.FunctionCalls {
		if site.Name == paramName && b.statementInFunction(site.StmtID, fnID) {
			out = append(out, site.StmtID)
		}
	}
	for _, site := range b.ws.IndirectCalls {
		if site.Object == paramName && b.statementInFunction(site.StmtID, fnID) {
			out = append(out, site.StmtID)
		}
	}
	return out
}

// statementInFunction reports whether stmtID's syntax node lies within
// fnID's subtree, since records.CallSite carries no enclosing-function id.
func (b *Builder) statementInFunction(stmtID, fnID NodeId) bool {
	fn := b.syntaxOf[fnID]
	if fn.IsNil() {
		return false
	}
	return nodeContainsID(fn, stmtID)
}

func nodeContainsID(n *syntax.Node, target NodeId) bool {
	if n.IsNil() {
		return false
	}
	if n.Id() == target {
		return true
	}
	for i := 0; i < n.ChildCount(); i++ {
		if nodeContainsID(n.Child(i), target) {
			return true
		}
	}
	return false
}
