package sdfg

import "github.com/viant/codeviews/records"

// reachingDefinitions runs the classical fixed-point iteration spec.md
// §4.6 specifies:
//
//	IN[n]  = ⋃ OUT[p] over predecessors p
//	OUT[n] = (IN[n] \ { d : name(d) ∈ defined_at(n) }) ∪ defined_at(n)
func (e *Engine) reachingDefinitions(nodes []records.GraphNode, preds map[NodeId][]NodeId) (map[NodeId][]Def, map[NodeId][]Def) {
	in := map[NodeId][]Def{}
	out := map[NodeId][]Def{}
	for _, n := range nodes {
		out[n.ID] = append([]Def{}, e.defsByStmt[n.ID]...)
	}

	changed := true
	for changed {
		changed = false
		for _, n := range nodes {
			merged := mergePredecessorOut(preds[n.ID], out)
			in[n.ID] = merged

			defined := e.defsByStmt[n.ID]
			definedNames := map[string]bool{}
			for _, d := range defined {
				definedNames[d.Name] = true
			}

			next := make([]Def, 0, len(merged)+len(defined))
			for _, d := range merged {
				if !definedNames[d.Name] {
					next = append(next, d)
				}
			}
			next = append(next, defined...)

			if !sameDefSet(out[n.ID], next) {
				out[n.ID] = next
				changed = true
			}
		}
	}

	return in, out
}

func mergePredecessorOut(preds []NodeId, out map[NodeId][]Def) []Def {
	seen := map[defKey]bool{}
	var merged []Def
	for _, p := range preds {
		for _, d := range out[p] {
			k := defKey{d.Name, d.StmtID}
			if seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, d)
		}
	}
	return merged
}

type defKey struct {
	name   string
	stmtID NodeId
}

func sameDefSet(a, b []Def) bool {
	if len(a) != len(b) {
		return false
	}
	ak := map[defKey]bool{}
	for _, d := range a {
		ak[defKey{d.Name, d.StmtID}] = true
	}
	for _, d := range b {
		if !ak[defKey{d.Name, d.StmtID}] {
			return false
		}
	}
	return true
}
