package graph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codeviews/records"
)

func TestAddEdgeDedupesOnKindExtraDataflowType(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1, Label: "a"})
	g.AddNode(Node{ID: 2, Label: "b"})

	g.AddEdge(Edge{Source: 1, Target: 2, Kind: records.NextLine})
	g.AddEdge(Edge{Source: 1, Target: 2, Kind: records.NextLine})
	assert.Len(t, g.Edges(), 1, "duplicate (source,target,kind,extra,dataflow_type) edge should be ignored")

	g.AddEdge(Edge{Source: 1, Target: 2, Kind: records.NextLine, DataflowType: "comesFrom"})
	assert.Len(t, g.Edges(), 2, "differing dataflow_type makes it a distinct edge")
}

func TestAddNodeIdempotent(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1, Label: "first"})
	g.AddNode(Node{ID: 1, Label: "second"})

	n, ok := g.GetNode(1)
	require.True(t, ok)
	assert.Equal(t, "first", n.Label, "second insert with the same id is a no-op")
	assert.Len(t, g.Nodes(), 1)
}

func TestSuccessorsAndPredecessors(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1})
	g.AddNode(Node{ID: 2})
	g.AddNode(Node{ID: 3})
	g.AddEdge(Edge{Source: 1, Target: 2, Kind: records.NextLine})
	g.AddEdge(Edge{Source: 1, Target: 3, Kind: records.PosNext})

	assert.ElementsMatch(t, []NodeId{2, 3}, g.Successors(1))
	assert.ElementsMatch(t, []NodeId{1}, g.Predecessors(2))
}

func TestJSONEmitterProducesNodeLinkDocument(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1, Label: "start", KindTag: "start"})
	g.AddNode(Node{ID: 2, Label: "return y;", KindTag: "return_statement"})
	g.AddEdge(Edge{Source: 1, Target: 2, Kind: records.NextLine})

	out, err := JSONEmitter{}.Emit(g)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, true, doc["directed"])
	assert.Equal(t, true, doc["multigraph"])
	nodes, _ := doc["nodes"].([]interface{})
	assert.Len(t, nodes, 2)
}

func TestDOTEmitterContainsEdgesAndNodes(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1, Label: "a"})
	g.AddNode(Node{ID: 2, Label: "b"})
	g.AddEdge(Edge{Source: 1, Target: 2, Kind: records.FunctionCall, Extra: "call-1"})

	out, err := DOTEmitter{}.Emit(g)
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "digraph G {"))
	assert.Contains(t, text, "1 -> 2")
	assert.Contains(t, text, "function_call")
	assert.Contains(t, text, "royalblue")
}

func TestCombineMergesControlAndDataFlowEdges(t *testing.T) {
	cfgGraph := New()
	cfgGraph.AddNode(Node{ID: 1})
	cfgGraph.AddNode(Node{ID: 2})
	cfgGraph.AddEdge(Edge{Source: 1, Target: 2, Kind: records.NextLine})

	sdfgEdges := []records.Edge{
		{Source: 1, Target: 2, Kind: records.ComesFrom},
	}

	combined := Combine(cfgGraph, sdfgEdges)
	assert.Len(t, combined.Nodes(), 2)
	assert.Len(t, combined.Edges(), 2)

	var sawDataflow bool
	for _, e := range combined.Edges() {
		if e.DataflowType != "" {
			sawDataflow = true
		}
	}
	assert.True(t, sawDataflow, "sdfg edges should carry a dataflow_type tag")
}
