package main

import (
	"context"
	"fmt"

	"github.com/viant/codeviews/cfg"
	"github.com/viant/codeviews/extract"
	"github.com/viant/codeviews/graph"
	"github.com/viant/codeviews/records"
	"github.com/viant/codeviews/sdfg"
	"github.com/viant/codeviews/symtab"
	"github.com/viant/codeviews/syntax"
)

// pipelineResult holds every graph kind --graphs can select from, built
// once over a shared parse per spec.md §5's "one parsed tree, one CFG, one
// SDFG" budget.
type pipelineResult struct {
	ast          *graph.Graph
	cfgGraph     *cfg.Graph
	cfg          *graph.Graph
	sdfg         *graph.Graph
	combined     *graph.Graph
	preprocTrace []extract.PreprocDecision
}

// runPipeline parses src and builds every graph kind, applying
// cfg's CFG/SDFG-relevant toggles (nil uses graph.DefaultConfig()).
func runPipeline(ctx context.Context, lang syntax.Language, src []byte, cfgOpts *graph.Config) (*pipelineResult, error) {
	if cfgOpts == nil {
		cfgOpts = graph.DefaultConfig()
	}
	parser, err := syntax.NewParser(lang)
	if err != nil {
		return nil, fmt.Errorf("creating %s parser: %w", lang, err)
	}
	root, err := parser.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}

	res := extract.New(lang).Run(root)
	table := symtab.New(lang).Build(root)
	cfgGraph := cfg.New(lang, res.Workspace, table).
		WithLenientTemplateMatching(cfgOpts.LenientTemplateMatching).
		Build(root)
	sdfgGraph := sdfg.New(lang, res.Workspace, table, sdfg.Options{LastDef: cfgOpts.EnableLastDefEdges}).Build(root, cfgGraph)

	out := &pipelineResult{
		ast:          astGraph(res),
		cfgGraph:     cfgGraph,
		cfg:          graph.FromRecords(cfgGraph.Nodes, cfgGraph.Edges),
		sdfg:         graph.FromRecords(sdfgGraph.Nodes, sdfgGraph.Edges),
		preprocTrace: res.PreprocTrace,
	}
	out.combined = graph.Combine(out.cfg, sdfgGraph.Edges)
	return out, nil
}

// astGraph renders the extractor's flat statement node list as a graph with
// no edges, the --graphs ast view spec.md §6 names.
func astGraph(res *extract.Result) *graph.Graph {
	return graph.FromRecords(res.Nodes, []records.Edge{})
}

// selectGraph picks the requested view by name.
func (r *pipelineResult) selectGraph(name string) (*graph.Graph, error) {
	switch name {
	case "ast":
		return r.ast, nil
	case "cfg":
		return r.cfg, nil
	case "dfg", "sdfg":
		return r.sdfg, nil
	case "combined":
		return r.combined, nil
	default:
		return nil, fmt.Errorf("unknown graph kind %q (want ast|cfg|dfg|combined)", name)
	}
}
