package sdfg

import (
	"github.com/viant/codeviews/cfg"
	"github.com/viant/codeviews/records"
)

// augmentInterprocedural adds the two edge kinds spec.md §4.6's
// "Interprocedural augmentation" names: a binding edge from each
// pass-by-reference call site to the callee's definition, and a
// propagation edge from the call statement to the first use of the
// corresponding variable back in the caller, found via a BFS over the CFG
// that stops at redefinition. The propagation edge starts at the call
// statement, not at the modifying statement inside the callee.
func (e *Engine) augmentInterprocedural(g *cfg.Graph, add func(records.Edge)) {
	succ := successorsOf(g.Edges)

	for _, sites := range [][]records.CallSite{e.ws.FunctionCalls, e.ws.MethodCalls, e.ws.StaticMethodCalls} {
		for _, site := range sites {
			fnID, ok := e.calleeIDFor(site)
			if !ok {
				continue
			}
			if !e.hasReferenceArg(site) {
				continue
			}
			add(records.Edge{Source: site.StmtID, Target: fnID, Kind: records.CallToFunction})

			modified := e.modifiedParamsFor(site.Name)
			for _, varName := range e.referenceArgNames(site) {
				if len(modified) == 0 {
					continue
				}
				if firstUse, ok := e.firstUseAfter(site.StmtID, varName, succ); ok {
					add(records.Edge{Source: site.StmtID, Target: firstUse, Kind: records.ModificationToUse})
				}
			}
		}
	}
}

func (e *Engine) calleeIDFor(site records.CallSite) (NodeId, bool) {
	for key, id := range e.ws.FunctionList {
		if key.Name == site.Name {
			return id, true
		}
	}
	return 0, false
}

func (e *Engine) hasReferenceArg(site records.CallSite) bool {
	return len(e.referenceArgNames(site)) > 0
}

// referenceArgNames returns argument names this call passes by address
// (&x), the only shape spec.md's propagation rule covers.
func (e *Engine) referenceArgNames(site records.CallSite) []string {
	var out []string
	for _, d := range e.defsByStmt[site.StmtID] {
		out = append(out, d.Name)
	}
	return out
}

func successorsOf(edges []records.Edge) map[NodeId][]NodeId {
	succ := map[NodeId][]NodeId{}
	for _, e := range edges {
		succ[e.Source] = append(succ[e.Source], e.Target)
	}
	return succ
}

// firstUseAfter does a BFS from start over succ, stopping at the first node
// that uses varName, and not crossing a node that redefines it.
func (e *Engine) firstUseAfter(start NodeId, varName string, succ map[NodeId][]NodeId) (NodeId, bool) {
	visited := map[NodeId]bool{start: true}
	queue := append([]NodeId{}, succ[start]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		for _, u := range e.usesByStmt[cur] {
			if u.Name == varName {
				return cur, true
			}
		}
		redefines := false
		for _, d := range e.defsByStmt[cur] {
			if d.Name == varName {
				redefines = true
			}
		}
		if redefines {
			continue
		}
		queue = append(queue, succ[cur]...)
	}
	return 0, false
}
