package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlab/seer/pkg/models"
)

func TestBuildFromVisualizationInfersFalseBranch(t *testing.T) {
	data := &VisualizationData{
		SymbolName: "f",
		Blocks: []VisualizationBlock{
			{ID: "entry", Type: "entry", StartLine: 1, EndLine: 1},
			{ID: "cond", Type: "condition", StartLine: 2, EndLine: 2, Condition: "x"},
			{ID: "then", Type: "basic", StartLine: 3, EndLine: 4},
			{ID: "after", Type: "basic", StartLine: 5, EndLine: 6},
			{ID: "exit", Type: "exit", StartLine: 7, EndLine: 7},
		},
		Edges: []VisualizationEdge{
			{From: "entry", To: "cond"},
			{From: "cond", To: "then", Type: "branch-true"},
			{From: "then", To: "exit"},
			{From: "after", To: "exit"},
		},
	}

	g := buildFromVisualization(data, newIDGen())

	// cond maps to block_1, after to block_3.
	falseEdges := edgesOfType(g, models.FlowEdgeBranchFalse)
	require.Len(t, falseEdges, 1)
	assert.Equal(t, "block_1", falseEdges[0].From)
	assert.Equal(t, "block_3", falseEdges[0].To)
}

func TestBuildFromVisualizationKeepsExplicitFalseBranch(t *testing.T) {
	data := &VisualizationData{
		SymbolName: "f",
		Blocks: []VisualizationBlock{
			{ID: "cond", Type: "condition", StartLine: 1, EndLine: 1},
			{ID: "a", Type: "basic", StartLine: 2, EndLine: 2},
			{ID: "b", Type: "basic", StartLine: 3, EndLine: 3},
		},
		Edges: []VisualizationEdge{
			{From: "cond", To: "a", Type: "branch-true"},
			{From: "cond", To: "b", Type: "branch-false"},
		},
	}

	g := buildFromVisualization(data, newIDGen())
	assert.Len(t, edgesOfType(g, models.FlowEdgeBranchFalse), 1)
}

func TestBuildFromVisualizationInfersLoopBack(t *testing.T) {
	data := &VisualizationData{
		SymbolName: "f",
		Blocks: []VisualizationBlock{
			{ID: "entry", Type: "entry", StartLine: 1, EndLine: 1},
			{ID: "loop", Type: "loop", StartLine: 2, EndLine: 5},
			{ID: "body", Type: "basic", StartLine: 3, EndLine: 4},
			{ID: "exit", Type: "exit", StartLine: 6, EndLine: 6},
		},
		Edges: []VisualizationEdge{
			{From: "entry", To: "loop"},
			{From: "loop", To: "body", Type: "branch-true"},
			{From: "body", To: "exit"},
		},
	}

	g := buildFromVisualization(data, newIDGen())

	backEdges := edgesOfType(g, models.FlowEdgeLoopBack)
	require.Len(t, backEdges, 1)
	assert.Equal(t, "block_2", backEdges[0].From, "last body block loops back")
	assert.Equal(t, "block_1", backEdges[0].To)
}

func TestBuildFromVisualizationSelfLoopWithoutBody(t *testing.T) {
	data := &VisualizationData{
		SymbolName: "f",
		Blocks: []VisualizationBlock{
			{ID: "loop", Type: "loop", StartLine: 2, EndLine: 2},
		},
	}

	g := buildFromVisualization(data, newIDGen())

	backEdges := edgesOfType(g, models.FlowEdgeLoopBack)
	require.Len(t, backEdges, 1)
	assert.Equal(t, backEdges[0].From, backEdges[0].To)
}

func hierarchyFixture() *models.FlowAnalysis {
	return &models.FlowAnalysis{
		Symbol: models.SymbolInfo{Name: "f"},
		Blocks: []models.Block{
			{ID: "e", Type: models.BlockEntry, StartLine: 1, EndLine: 1},
			{ID: "c", Type: models.BlockConditional, StartLine: 2, EndLine: 2},
			{ID: "a", Type: models.BlockBasic, StartLine: 3, EndLine: 4},
			{ID: "x", Type: models.BlockExit, StartLine: 6, EndLine: 6},
		},
		Edges: []models.FlowEdge{
			{From: "e", To: "c", Type: models.FlowEdgeSequential},
			{From: "c", To: "a", Type: models.FlowEdgeBranchTrue},
			{From: "c", To: "x", Type: models.FlowEdgeBranchFalse},
			{From: "a", To: "x", Type: models.FlowEdgeSequential},
			{From: "a", To: "c", Type: models.FlowEdgeLoopBack},
		},
		Calls: []models.FunctionCall{
			{ID: "call_0", TargetFunction: "first", LineNumber: 3},
			{ID: "call_1", TargetFunction: "second", LineNumber: 4},
		},
	}
}

func TestBuildHierarchy(t *testing.T) {
	root := BuildHierarchy(hierarchyFixture())
	require.NotNil(t, root)
	assert.Equal(t, "e", root.Block.ID)

	require.Len(t, root.Children, 1)
	cond := root.Children[0]
	assert.Equal(t, "c", cond.Block.ID)
	assert.Equal(t, models.FlowEdgeSequential, cond.EdgeType)

	// The loop-back edge from "a" to "c" must not recurse.
	require.Len(t, cond.Children, 1)
	a := cond.Children[0]
	assert.Equal(t, "a", a.Block.ID)
	assert.Equal(t, models.FlowEdgeBranchTrue, a.EdgeType)
	require.Len(t, a.Children, 1)
	assert.Equal(t, "x", a.Children[0].Block.ID)
}

func TestBuildHierarchyNoEntry(t *testing.T) {
	assert.Nil(t, BuildHierarchy(&models.FlowAnalysis{}))
}

func TestCallsFromLine(t *testing.T) {
	a := hierarchyFixture()

	all := CallsFromLine(a, 0, 0)
	assert.Len(t, all, 2)

	ranged := CallsFromLine(a, 4, 5)
	require.Len(t, ranged, 1)
	assert.Equal(t, "second", ranged[0].TargetFunction)

	assert.Empty(t, CallsFromLine(a, 10, 20))
}

func TestCanNavigateToNode(t *testing.T) {
	a := hierarchyFixture()

	assert.True(t, CanNavigateToNode(a, "a"), "basic block with calls in range")
	assert.False(t, CanNavigateToNode(a, "e"), "entry blocks are never targets")
	assert.False(t, CanNavigateToNode(a, "x"), "exit blocks are never targets")
	assert.False(t, CanNavigateToNode(a, "c"), "no calls on the conditional's line")
	assert.False(t, CanNavigateToNode(a, "ghost"))
}
