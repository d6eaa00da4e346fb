package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/codeviews/graph"
	"github.com/viant/codeviews/syntax"
)

const samplePipelineSource = `
int add(int a, int b) {
    int sum = a + b;
    return sum;
}

int main() {
    int result = add(1, 2);
    return result;
}
`

func TestRunPipelineProducesAllGraphKinds(t *testing.T) {
	result, err := runPipeline(context.Background(), syntax.C, []byte(samplePipelineSource), graph.DefaultConfig())
	require.NoError(t, err)

	for _, kind := range []string{"ast", "cfg", "dfg", "combined"} {
		g, err := result.selectGraph(kind)
		require.NoErrorf(t, err, "selectGraph(%s)", kind)
		assert.NotEmptyf(t, g.Nodes(), "selectGraph(%s) has no nodes", kind)
	}

	cfgGraph, _ := result.selectGraph("cfg")
	combined, _ := result.selectGraph("combined")
	assert.GreaterOrEqual(t, len(combined.Edges()), len(cfgGraph.Edges()),
		"combined view should carry at least the CFG's own edges")
}

func TestRunPipelineRejectsUnknownGraphKind(t *testing.T) {
	result, err := runPipeline(context.Background(), syntax.C, []byte(samplePipelineSource), nil)
	require.NoError(t, err)

	_, err = result.selectGraph("bogus")
	assert.Error(t, err)
}

func TestRunPipelineHonorsNilConfigAsDefault(t *testing.T) {
	withNil, err := runPipeline(context.Background(), syntax.C, []byte(samplePipelineSource), nil)
	require.NoError(t, err)
	withDefault, err := runPipeline(context.Background(), syntax.C, []byte(samplePipelineSource), graph.DefaultConfig())
	require.NoError(t, err)

	cfgNil, _ := withNil.selectGraph("cfg")
	cfgDefault, _ := withDefault.selectGraph("cfg")
	assert.Equal(t, len(cfgDefault.Nodes()), len(cfgNil.Nodes()))
}
