package flow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlab/seer/pkg/models"
)

// makeBlock builds a synthetic block for algorithm tests.
func makeBlock(id string, bt models.BlockType, line uint32) models.Block {
	return models.Block{
		ID:         id,
		SymbolName: "f",
		Type:       bt,
		StartLine:  line,
		EndLine:    line,
		Complexity: blockComplexity(bt),
	}
}

func edge(from, to string, et models.FlowEdgeType) models.FlowEdge {
	return models.FlowEdge{From: from, To: to, Type: et}
}

func TestDetectDeadCode(t *testing.T) {
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("a", models.BlockBasic, 2),
			makeBlock("orphan", models.BlockBasic, 10),
			makeBlock("x", models.BlockExit, 20),
		},
		edges: []models.FlowEdge{
			edge("e", "a", models.FlowEdgeSequential),
			edge("a", "x", models.FlowEdgeSequential),
		},
	}
	adj := buildAdjacency(&g)

	dead := detectDeadCode(&g, adj)
	assert.Equal(t, []uint32{10}, dead)
}

func TestDetectDeadCodeIdempotent(t *testing.T) {
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("c", models.BlockConditional, 2),
			makeBlock("dead1", models.BlockBasic, 5),
			makeBlock("dead2", models.BlockReturn, 6),
			makeBlock("x", models.BlockExit, 9),
		},
		edges: []models.FlowEdge{
			edge("e", "c", models.FlowEdgeSequential),
			edge("c", "x", models.FlowEdgeBranchFalse),
			edge("dead1", "dead2", models.FlowEdgeSequential),
		},
	}
	adj := buildAdjacency(&g)

	first := detectDeadCode(&g, adj)
	second := detectDeadCode(&g, adj)
	assert.Equal(t, first, second)
	assert.Equal(t, []uint32{5, 6}, first)
}

func TestDetectDeadCodeAllReachable(t *testing.T) {
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("x", models.BlockExit, 2),
		},
		edges: []models.FlowEdge{edge("e", "x", models.FlowEdgeSequential)},
	}
	assert.Empty(t, detectDeadCode(&g, buildAdjacency(&g)))
}

func TestFindHotPathsRanksByComplexity(t *testing.T) {
	// Two routes from entry to exit; the loop route carries more weight.
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("c", models.BlockConditional, 2),
			makeBlock("loop", models.BlockLoop, 3),
			makeBlock("plain", models.BlockBasic, 5),
			makeBlock("x", models.BlockExit, 9),
		},
		edges: []models.FlowEdge{
			edge("e", "c", models.FlowEdgeSequential),
			edge("c", "loop", models.FlowEdgeBranchTrue),
			edge("c", "plain", models.FlowEdgeBranchFalse),
			edge("loop", "x", models.FlowEdgeBranchFalse),
			edge("plain", "x", models.FlowEdgeSequential),
		},
	}

	hot := findHotPaths(&g, buildAdjacency(&g))
	require.Len(t, hot, 2)
	assert.Equal(t, []string{"e", "c", "loop", "x"}, hot[0])
	assert.Equal(t, []string{"e", "c", "plain", "x"}, hot[1])
}

func TestFindHotPathsKeepsTopFive(t *testing.T) {
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("x", models.BlockExit, 99),
		},
	}
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("b%d", i)
		g.blocks = append(g.blocks, makeBlock(id, models.BlockBasic, uint32(i+2)))
		g.edges = append(g.edges,
			edge("e", id, models.FlowEdgeSequential),
			edge(id, "x", models.FlowEdgeSequential),
		)
	}

	hot := findHotPaths(&g, buildAdjacency(&g))
	assert.Len(t, hot, maxHotPaths)
}

func TestFindHotPathsTerminatesOnCycles(t *testing.T) {
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("loop", models.BlockLoop, 2),
			makeBlock("body", models.BlockBasic, 3),
			makeBlock("x", models.BlockExit, 5),
		},
		edges: []models.FlowEdge{
			edge("e", "loop", models.FlowEdgeSequential),
			edge("loop", "body", models.FlowEdgeBranchTrue),
			edge("body", "loop", models.FlowEdgeLoopBack),
			edge("loop", "x", models.FlowEdgeBranchFalse),
		},
	}

	hot := findHotPaths(&g, buildAdjacency(&g))
	require.NotEmpty(t, hot)
	for _, p := range hot {
		assert.Equal(t, "x", p[len(p)-1])
	}
}

func TestGeneratePaths(t *testing.T) {
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			func() models.Block {
				b := makeBlock("c", models.BlockConditional, 2)
				b.Condition = "x > 0"
				return b
			}(),
			makeBlock("m", models.BlockBasic, 4),
			makeBlock("x", models.BlockExit, 5),
		},
		edges: []models.FlowEdge{
			edge("e", "c", models.FlowEdgeSequential),
			edge("c", "m", models.FlowEdgeBranchFalse),
			edge("m", "x", models.FlowEdgeSequential),
		},
	}

	paths := generatePaths(&g, buildAdjacency(&g), newIDGen())
	require.Len(t, paths, 1)

	p := paths[0]
	assert.Equal(t, "path_0", p.ID)
	assert.Equal(t, "e", p.StartBlock)
	assert.Equal(t, "x", p.EndBlock)
	assert.Equal(t, []string{"e", "c", "m", "x"}, p.Blocks)
	assert.Equal(t, []string{"x > 0"}, p.Conditions)
	assert.Equal(t, 1, p.Complexity)
	assert.True(t, p.IsComplete)
	assert.False(t, p.IsCyclic)
}

func TestGeneratePathsCyclicFlag(t *testing.T) {
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("a", models.BlockBasic, 2),
			makeBlock("b", models.BlockBasic, 3),
			makeBlock("x", models.BlockExit, 5),
		},
		edges: []models.FlowEdge{
			edge("e", "a", models.FlowEdgeSequential),
			edge("a", "b", models.FlowEdgeSequential),
			edge("b", "a", models.FlowEdgeLoopBack),
			edge("b", "x", models.FlowEdgeSequential),
		},
	}

	paths := generatePaths(&g, buildAdjacency(&g), newIDGen())
	require.Len(t, paths, 1)
	assert.True(t, paths[0].IsCyclic)
}

func TestGeneratePathsSkipsOtherSymbols(t *testing.T) {
	other := makeBlock("x2", models.BlockExit, 9)
	other.SymbolName = "g"
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("x", models.BlockExit, 5),
			other,
		},
		edges: []models.FlowEdge{
			edge("e", "x", models.FlowEdgeSequential),
			edge("e", "x2", models.FlowEdgeSequential),
		},
	}

	paths := generatePaths(&g, buildAdjacency(&g), newIDGen())
	require.Len(t, paths, 1)
	assert.Equal(t, "x", paths[0].EndBlock)
}

func TestCyclomaticComplexity(t *testing.T) {
	tests := []struct {
		name   string
		paths  []models.ExecutionPath
		blocks int
		want   int
	}{
		{"no paths floors at one", nil, 5, 1},
		{"minimal two block", []models.ExecutionPath{{Blocks: []string{"e", "x"}}}, 2, 1},
		{"straight line", []models.ExecutionPath{{Blocks: []string{"e", "a", "x"}}}, 3, 1},
		{
			"two branching paths",
			[]models.ExecutionPath{
				{Blocks: []string{"e", "c", "a", "x"}},
				{Blocks: []string{"e", "c", "b", "x"}},
			},
			5, 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cyclomaticComplexity(tt.paths, tt.blocks))
		})
	}
}

func TestMaxNestingDepth(t *testing.T) {
	outer := makeBlock("outer", models.BlockConditional, 2)
	inner := makeBlock("inner", models.BlockConditional, 3)
	inner.ParentBlockID = "outer"
	leaf := makeBlock("leaf", models.BlockBasic, 4)
	leaf.ParentBlockID = "inner"

	g := graph{blocks: []models.Block{
		makeBlock("e", models.BlockEntry, 1),
		outer,
		inner,
		leaf,
	}}

	assert.Equal(t, 3, maxNestingDepth(&g))
}

func TestComputeStatistics(t *testing.T) {
	g := graph{
		blocks: []models.Block{
			makeBlock("e", models.BlockEntry, 1),
			makeBlock("c", models.BlockConditional, 2),
			makeBlock("loop", models.BlockLoop, 3),
			makeBlock("try", models.BlockTry, 5),
			makeBlock("catch", models.BlockCatch, 7),
			makeBlock("x", models.BlockExit, 9),
		},
		calls: []models.FunctionCall{{ID: "call_0"}, {ID: "call_1"}},
	}
	paths := []models.ExecutionPath{
		{Blocks: []string{"e", "c", "x"}, Complexity: 1},
		{Blocks: []string{"e", "c", "loop", "x"}, Complexity: 3},
	}

	s := computeStatistics(&g, paths)
	assert.Equal(t, 6, s.TotalBlocks)
	assert.Equal(t, 1, s.ConditionalBlocks)
	assert.Equal(t, 1, s.LoopBlocks)
	assert.Equal(t, 2, s.ExceptionBlocks)
	assert.Equal(t, 2, s.CallComplexity)
	assert.Equal(t, 1, s.CyclomaticComplexity)
	assert.InDelta(t, 2.0, s.PathComplexityMean, 1e-9)
	assert.Greater(t, s.PathComplexityStdDev, 0.0)
}
