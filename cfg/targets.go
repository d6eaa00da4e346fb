package cfg

import (
	"strings"

	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/typing"
)

// phaseF resolves every recorded call site to one or more callee functions
// and wires the interprocedural call/return edges, per spec.md §4.4 Phase F
// and its "target resolution" rules.
func (b *Builder) phaseF() {
	b.resolveCalls(b.ws.FunctionCalls, records.FunctionCall, b.resolveFunctionCall)
	b.resolveCalls(b.ws.MethodCalls, records.MethodCall, b.resolveMethodCall)
	b.resolveCalls(b.ws.StaticMethodCalls, records.StaticCall, b.resolveStaticCall)
	b.resolveCalls(b.ws.ConstructorCalls, records.ConstructorCall, b.resolveConstructorCall)
	b.resolveCalls(b.ws.DestructorCalls, records.DestructorCall, b.resolveDestructorCall)
	b.resolveCalls(b.ws.OperatorCalls, records.OperatorCall, b.resolveOperatorCall)
	b.resolveCalls(b.ws.IndirectCalls, records.IndirectCall, b.resolveIndirectCall)
}

type resolverFunc func(site records.CallSite) []NodeId

func (b *Builder) resolveCalls(sites []records.CallSite, kind records.EdgeKind, resolve resolverFunc) {
	for _, site := range sites {
		targets := resolve(site)
		callKind := kind
		if len(targets) > 1 {
			callKind = records.VirtualCall
		}
		callSiteID := b.ws.NextCallSiteID()
		for _, fnID := range targets {
			b.wireCall(site, fnID, callKind, callSiteID)
		}
		b.wireLambdaParams(site, targets)
	}
}

// wireLambdaParams binds a call's lambda-literal arguments (recorded by
// recordLambdaArguments at their syntactic position) to the resolved
// callee's formal parameter index, once target resolution has determined
// who the callee actually is.
func (b *Builder) wireLambdaParams(site records.CallSite, targets []NodeId) {
	positions, ok := b.ws.LambdaArguments[site.CallID]
	if !ok {
		return
	}
	for idx, lambdaID := range positions {
		if lambdaID == 0 {
			continue
		}
		for _, fnID := range targets {
			if b.ws.FunctionParamToLambda[fnID] == nil {
				b.ws.FunctionParamToLambda[fnID] = map[int]NodeId{}
			}
			b.ws.FunctionParamToLambda[fnID][idx] = lambdaID
		}
	}
}

// wireCall adds the call edge, the matching return edges for every return
// point of fnID, and deletes the Phase-A fallthrough edge when the callee
// is [[noreturn]].
func (b *Builder) wireCall(site records.CallSite, fnID NodeId, kind records.EdgeKind, callSiteID string) {
	if fnID == 0 {
		return
	}
	b.addEdge(site.StmtID, fnID, kind, callSiteID)

	returnKind, _ := records.ReturnKindFor(kind)
	for _, r := range b.ws.ReturnStatementMap[fnID] {
		b.addEdge(r, site.StmtID, returnKind, callSiteID)
	}
	if implicit, ok := b.ws.ImplicitReturnMap[fnID]; ok {
		b.addEdge(implicit, site.StmtID, returnKind, callSiteID)
	}

	if info, ok := b.ws.FunctionInfo[fnID]; ok && info.IsNoreturn {
		if next, ok := b.nextLineTarget(site.StmtID); ok {
			b.removeEdge(site.StmtID, next, records.NextLine)
		}
	}
}

func (b *Builder) nextLineTarget(stmtID NodeId) (NodeId, bool) {
	for _, e := range b.edges {
		if e.Source == stmtID && e.Kind == records.NextLine {
			return e.Target, true
		}
	}
	return 0, false
}

func callSignature(site records.CallSite) []string { return site.ArgTypes }

// resolveFunctionCall matches by name and signatures_match, per spec.md §4.4.
func (b *Builder) resolveFunctionCall(site records.CallSite) []NodeId {
	name := b.calleeName(site)
	var out []NodeId
	for key, id := range b.ws.FunctionList {
		if key.Owner != "" || key.Name != name {
			continue
		}
		if typing.SignaturesMatchWithOptions(callSignature(site), splitSignature(key.Signature), b.lenientTemplates) {
			out = append(out, id)
		}
	}
	return out
}

func (b *Builder) calleeName(site records.CallSite) string { return site.Name }

// resolveMethodCall restricts candidates to methods on type(o) and, when a
// virtual override exists, every derived class reachable via extends. A
// known runtime type narrows the search to that type's hierarchy.
func (b *Builder) resolveMethodCall(site records.CallSite) []NodeId {
	owner := site.ReceiverType
	if runtimeType, ok := b.ws.RuntimeType[site.Object]; ok && runtimeType != "" {
		owner = runtimeType
	}
	if owner == "" {
		return nil
	}

	candidates := b.methodsNamed(owner, site)

	isVirtual := false
	for _, id := range candidates {
		if b.ws.VirtualFunctions[id] {
			isVirtual = true
		}
	}
	if !isVirtual {
		return candidates
	}

	var out []NodeId
	out = append(out, candidates...)
	for _, derived := range b.ws.Derived(owner) {
		out = append(out, b.methodsNamed(derived, site)...)
	}
	return dedupeIds(out)
}

func (b *Builder) methodsNamed(owner string, site records.CallSite) []NodeId {
	var out []NodeId
	for key, id := range b.ws.FunctionList {
		if key.Owner != owner || key.Name != site.Name {
			continue
		}
		if typing.SignaturesMatchWithOptions(callSignature(site), splitSignature(key.Signature), b.lenientTemplates) {
			out = append(out, id)
		}
	}
	return out
}

func (b *Builder) resolveStaticCall(site records.CallSite) []NodeId {
	return b.resolveFunctionCall(site)
}

// resolveConstructorCall matches (owner, T); when none exists with the
// empty signature it synthesizes an implicit default constructor and
// chains it to each base class's implicit default constructor.
func (b *Builder) resolveConstructorCall(site records.CallSite) []NodeId {
	owner := site.Object
	for key, id := range b.ws.FunctionList {
		if key.Owner == owner && key.Name == owner {
			if typing.SignaturesMatchWithOptions(callSignature(site), splitSignature(key.Signature), b.lenientTemplates) {
				return []NodeId{id}
			}
		}
	}
	if len(site.ArgTypes) == 0 {
		return []NodeId{b.implicitDefaultConstructor(owner)}
	}
	return nil
}

func (b *Builder) implicitDefaultConstructor(owner string) NodeId {
	key := records.FunctionKey{Owner: owner, Name: owner, Signature: ""}
	if id, ok := b.ws.FunctionList[key]; ok {
		return id
	}
	id := b.registerSynthetic(owner+"::"+owner+"()", "implicit_default_constructor")
	b.ws.FunctionList[key] = id
	b.ws.FunctionInfo[id] = &records.FunctionInfo{ID: id, Key: key}

	cur := id
	for _, base := range b.ws.Extends[owner] {
		baseCtor := b.implicitDefaultConstructor(base)
		b.addEdge(cur, baseCtor, records.ConstructorCall, "")
		cur = baseCtor
	}
	return id
}

func (b *Builder) resolveDestructorCall(site records.CallSite) []NodeId {
	owner := site.Object
	if t, ok := b.ws.RuntimeType[site.Object]; ok {
		owner = t
	} else if len(site.ArgTypes) > 0 {
		owner = site.ArgTypes[0]
	}
	dtorName := "~" + owner
	for key, id := range b.ws.FunctionList {
		if key.Owner == owner && key.Name == dtorName {
			return []NodeId{id}
		}
	}
	return nil
}

func (b *Builder) resolveOperatorCall(site records.CallSite) []NodeId {
	name := b.calleeName(site)
	var out []NodeId
	for key, id := range b.ws.FunctionList {
		if strings.HasPrefix(key.Name, "operator") && (name == "" || key.Name == name) {
			out = append(out, id)
		}
	}
	return out
}

// resolveIndirectCall expands through function_pointer_assignments to every
// possible target.
func (b *Builder) resolveIndirectCall(site records.CallSite) []NodeId {
	keys := b.ws.FunctionPointerAssignments[site.Object]
	var out []NodeId
	for _, key := range keys {
		if id, ok := b.ws.FunctionList[key]; ok {
			out = append(out, id)
		}
	}
	return out
}

func splitSignature(sig string) []string {
	if sig == "" {
		return nil
	}
	return strings.Split(sig, ",")
}

func dedupeIds(ids []NodeId) []NodeId {
	seen := map[NodeId]bool{}
	var out []NodeId
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
