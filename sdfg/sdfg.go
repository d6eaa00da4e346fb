// Package sdfg implements the Static Data Flow Graph engine (spec.md C7):
// it reuses the CFG's nodes but replaces the control edges with
// reaching-definitions data-dependency edges (comesFrom, and optionally
// lastDef). Grounded on other_examples' l3aro-go-context-query dfg-cpp and
// dfg-python packages — the scope-stack-aware DEF/USE visitor shape and the
// "DFGInfo wraps a CFG with VarRef-derived edges" pattern — generalized to
// the fixed-point fomulation spec.md §4.6 spells out explicitly.
package sdfg

import (
	"strings"

	"github.com/viant/codeviews/cfg"
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/syntax"
)

type NodeId = records.NodeId

// Graph is the SDFG output: the CFG's nodes, with data-dependency edges.
type Graph struct {
	Nodes []records.GraphNode
	Edges []records.Edge
}

// Def is a (name, defining statement, scope stack, is-declaration,
// is-literal) tuple, spec.md §4.6's "identifier value".
type Def struct {
	Name      string
	StmtID    NodeId
	Scope     []records.ScopeID
	IsDecl    bool
	IsLiteral bool
}

// Use is a (name, using statement, scope stack) reference.
type Use struct {
	Name   string
	StmtID NodeId
	Scope  []records.ScopeID
}

// Options toggles optional SDFG edge kinds.
type Options struct {
	// LastDef additionally emits killed-definition edges.
	LastDef bool
}

// Engine accumulates one SDFG build over a CFG's output.
type Engine struct {
	lang syntax.Language
	ws   *records.Workspace
	sym  *records.SymbolTable
	opts Options

	defsByStmt map[NodeId][]Def
	usesByStmt map[NodeId][]Use

	modifiedParams map[records.FunctionKey]map[int]bool
}

// New creates an Engine for one translation unit.
func New(lang syntax.Language, ws *records.Workspace, sym *records.SymbolTable, opts Options) *Engine {
	return &Engine{
		lang:           lang,
		ws:             ws,
		sym:            sym,
		opts:           opts,
		defsByStmt:     map[NodeId][]Def{},
		usesByStmt:     map[NodeId][]Use{},
		modifiedParams: map[records.FunctionKey]map[int]bool{},
	}
}

// Build runs the DEF/USE pass, the pointer-modification analysis, the
// reaching-definitions fixed point, and edge synthesis, returning the SDFG.
func (e *Engine) Build(root *syntax.Node, g *cfg.Graph) *Graph {
	e.analyzePointerModification(root)
	e.extractDefUse(root)
	e.injectPointerModSyntheticDefs(root)

	preds := predecessorsOf(g.Edges)
	in, out := e.reachingDefinitions(g.Nodes, preds)

	var edges []records.Edge
	seen := map[records.Edge]bool{}
	add := func(edge records.Edge) {
		if seen[edge] {
			return
		}
		seen[edge] = true
		edges = append(edges, edge)
	}

	for _, n := range g.Nodes {
		for _, u := range e.usesByStmt[n.ID] {
			for _, d := range in[n.ID] {
				if !defMatchesUse(d, u) {
					continue
				}
				add(records.Edge{Source: d.StmtID, Target: n.ID, Kind: records.ComesFrom})
			}
		}
		if e.opts.LastDef {
			for _, d := range e.defsByStmt[n.ID] {
				for _, killed := range killedBy(in[n.ID], d) {
					add(records.Edge{Source: killed.StmtID, Target: n.ID, Kind: records.LastDef})
				}
			}
		}
	}

	e.augmentInterprocedural(g, add)

	_ = out
	return &Graph{Nodes: g.Nodes, Edges: edges}
}

// defMatchesUse implements spec.md §4.6's match rule: same name (struct-
// field prefix allowed) and the definition's scope is visible from the use.
func defMatchesUse(d Def, u Use) bool {
	if d.Name != u.Name && !strings.HasPrefix(u.Name, d.Name+".") && !strings.HasPrefix(u.Name, d.Name+"->") {
		return false
	}
	return records.ScopeStackPrefix(d.Scope, u.Scope)
}

// killedBy returns every definition in ins with the same name as d but a
// different defining statement — the set d's fresh definition kills.
func killedBy(ins []Def, d Def) []Def {
	var out []Def
	for _, other := range ins {
		if other.Name == d.Name && other.StmtID != d.StmtID {
			out = append(out, other)
		}
	}
	return out
}

func predecessorsOf(edges []records.Edge) map[NodeId][]NodeId {
	preds := map[NodeId][]NodeId{}
	for _, e := range edges {
		preds[e.Target] = append(preds[e.Target], e.Source)
	}
	return preds
}
