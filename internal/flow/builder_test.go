package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// parseFirstFunction parses source and returns the first extracted function.
func parseFirstFunction(t *testing.T, src string, lang parser.Language, path string) (parser.FunctionNode, models.SymbolInfo) {
	t.Helper()
	p := parser.New()
	defer p.Close()

	result, err := p.Parse([]byte(src), lang, path)
	require.NoError(t, err)

	fns := parser.GetFunctions(result)
	require.NotEmpty(t, fns, "no functions extracted")

	fn := fns[0]
	sym := models.SymbolInfo{
		Name:    fn.Name,
		Line:    fn.StartLine,
		EndLine: fn.EndLine,
	}
	return fn, sym
}

func blocksOfType(g graph, bt models.BlockType) []models.Block {
	var out []models.Block
	for _, b := range g.blocks {
		if b.Type == bt {
			out = append(out, b)
		}
	}
	return out
}

func edgesOfType(g graph, et models.FlowEdgeType) []models.FlowEdge {
	var out []models.FlowEdge
	for _, e := range g.edges {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

func TestBuildFromASTSimpleFunction(t *testing.T) {
	src := "package p\n\nfunc f() int {\n\treturn 1\n}\n"
	fn, sym := parseFirstFunction(t, src, parser.LangGo, "f.go")

	g := buildFromAST(fn.Body, sym, []byte(src), parser.LangGo, newIDGen())

	require.Len(t, g.blocks, 3)
	assert.Equal(t, models.BlockEntry, g.blocks[0].Type)
	assert.Equal(t, models.BlockReturn, g.blocks[1].Type)
	assert.Equal(t, models.BlockExit, g.blocks[2].Type)

	require.Len(t, g.edges, 2)
	assert.Equal(t, models.FlowEdgeSequential, g.edges[0].Type)
	assert.Equal(t, models.FlowEdgeReturn, g.edges[1].Type)
	assert.Equal(t, g.blocks[1].ID, g.edges[1].From)
	assert.Equal(t, g.blocks[2].ID, g.edges[1].To)

	assert.Equal(t, "return 1", g.blocks[1].Code)
}

func TestBuildFromASTIfWithoutElse(t *testing.T) {
	src := `package p

func f(x int) {
	if x > 0 {
		handle(x)
	}
}
`
	fn, sym := parseFirstFunction(t, src, parser.LangGo, "f.go")

	g := buildFromAST(fn.Body, sym, []byte(src), parser.LangGo, newIDGen())

	conds := blocksOfType(g, models.BlockConditional)
	require.Len(t, conds, 1)
	assert.Equal(t, "x > 0", conds[0].Condition)
	assert.Equal(t, 1, conds[0].Complexity)

	trueEdges := edgesOfType(g, models.FlowEdgeBranchTrue)
	falseEdges := edgesOfType(g, models.FlowEdgeBranchFalse)
	require.Len(t, trueEdges, 1)
	require.Len(t, falseEdges, 1)

	// The missing else branch becomes a direct false edge to the merge
	// block, never a second true edge.
	assert.Equal(t, conds[0].ID, falseEdges[0].From)
	merge := falseEdges[0].To
	var mergeSeen bool
	for _, e := range g.edges {
		if e.To == merge && e.Type == models.FlowEdgeSequential && e.From != conds[0].ID {
			mergeSeen = true
		}
	}
	assert.True(t, mergeSeen, "then branch should rejoin the merge block")
}

func TestBuildFromASTIfElse(t *testing.T) {
	src := `package p

func f(x int) int {
	if x > 0 {
		return 1
	} else {
		return 2
	}
}
`
	fn, sym := parseFirstFunction(t, src, parser.LangGo, "f.go")

	g := buildFromAST(fn.Body, sym, []byte(src), parser.LangGo, newIDGen())

	assert.Len(t, blocksOfType(g, models.BlockConditional), 1)
	assert.Len(t, blocksOfType(g, models.BlockReturn), 2)
	assert.Len(t, edgesOfType(g, models.FlowEdgeBranchTrue), 1)
	assert.Len(t, edgesOfType(g, models.FlowEdgeBranchFalse), 1)
	assert.Len(t, edgesOfType(g, models.FlowEdgeReturn), 2)
	assert.Len(t, blocksOfType(g, models.BlockExit), 1)
}

func TestBuildFromASTWhileLoop(t *testing.T) {
	src := `function f(x) {
  while (x) {
    step();
  }
}
`
	fn, sym := parseFirstFunction(t, src, parser.LangJavaScript, "f.js")

	g := buildFromAST(fn.Body, sym, []byte(src), parser.LangJavaScript, newIDGen())

	loops := blocksOfType(g, models.BlockLoop)
	require.Len(t, loops, 1)
	assert.Equal(t, models.LoopWhile, loops[0].LoopType)
	assert.Equal(t, 2, loops[0].Complexity)
	assert.Contains(t, loops[0].Condition, "x")

	backEdges := edgesOfType(g, models.FlowEdgeLoopBack)
	require.Len(t, backEdges, 1)
	assert.Equal(t, loops[0].ID, backEdges[0].To)

	falseEdges := edgesOfType(g, models.FlowEdgeBranchFalse)
	require.Len(t, falseEdges, 1)
	assert.Equal(t, loops[0].ID, falseEdges[0].From)
}

func TestBuildFromASTTryCatch(t *testing.T) {
	src := `function f() {
  try {
    risky();
  } catch (e) {
    recover();
  }
}
`
	fn, sym := parseFirstFunction(t, src, parser.LangJavaScript, "f.js")

	g := buildFromAST(fn.Body, sym, []byte(src), parser.LangJavaScript, newIDGen())

	tries := blocksOfType(g, models.BlockTry)
	catches := blocksOfType(g, models.BlockCatch)
	require.Len(t, tries, 1)
	require.Len(t, catches, 1)

	excEdges := edgesOfType(g, models.FlowEdgeException)
	require.Len(t, excEdges, 1)
	assert.Equal(t, tries[0].ID, excEdges[0].From)
	assert.Equal(t, catches[0].ID, excEdges[0].To)

	require.Len(t, g.calls, 2)
	for _, c := range g.calls {
		assert.True(t, c.IsInTryCatch, "call %s should carry try context", c.TargetFunction)
	}
}

func TestBuildFromASTCallContext(t *testing.T) {
	src := `package p

func f(items []int) {
	setup()
	for _, it := range items {
		if it > 0 {
			process(it)
		}
	}
}
`
	fn, sym := parseFirstFunction(t, src, parser.LangGo, "f.go")

	g := buildFromAST(fn.Body, sym, []byte(src), parser.LangGo, newIDGen())

	byName := make(map[string]models.FunctionCall)
	for _, c := range g.calls {
		byName[c.TargetFunction] = c
	}
	require.Contains(t, byName, "setup")
	require.Contains(t, byName, "process")

	assert.False(t, byName["setup"].IsInLoop)
	assert.False(t, byName["setup"].IsConditional)
	assert.True(t, byName["process"].IsInLoop)
	assert.True(t, byName["process"].IsConditional)
	assert.Equal(t, "f", byName["process"].CallerName)
}

func TestBuildFromASTCallClassification(t *testing.T) {
	src := `package p

func f(s store) {
	load()
	s.Flush()
}
`
	fn, sym := parseFirstFunction(t, src, parser.LangGo, "f.go")

	g := buildFromAST(fn.Body, sym, []byte(src), parser.LangGo, newIDGen())

	byName := make(map[string]models.FunctionCall)
	for _, c := range g.calls {
		byName[c.TargetFunction] = c
	}
	require.Contains(t, byName, "load")
	require.Contains(t, byName, "Flush")
	assert.Equal(t, models.CallDirect, byName["load"].CallType)
	assert.Equal(t, models.CallVirtual, byName["Flush"].CallType)
}

func TestBuildFromASTNilBody(t *testing.T) {
	sym := models.SymbolInfo{Name: "f", Line: 10, EndLine: 12}

	g := buildFromAST(nil, sym, nil, parser.LangGo, newIDGen())

	require.Len(t, g.blocks, 2)
	assert.Equal(t, models.BlockEntry, g.blocks[0].Type)
	assert.Equal(t, models.BlockExit, g.blocks[1].Type)
	require.Len(t, g.edges, 1)
	assert.Equal(t, g.blocks[0].ID, g.edges[0].From)
	assert.Equal(t, g.blocks[1].ID, g.edges[0].To)
}

func TestBuildFromASTConnectivity(t *testing.T) {
	src := `package p

func f(xs []int) int {
	total := 0
	for _, x := range xs {
		if x < 0 {
			continue
		}
		total += x
	}
	if total > 100 {
		return total
	}
	return 0
}
`
	fn, sym := parseFirstFunction(t, src, parser.LangGo, "f.go")

	g := buildFromAST(fn.Body, sym, []byte(src), parser.LangGo, newIDGen())

	adj := buildAdjacency(&g)
	assert.Empty(t, detectDeadCode(&g, adj), "every block should be reachable from entry")
}
