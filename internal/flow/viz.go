package flow

import (
	"sort"

	"github.com/seerlab/seer/pkg/models"
)

// VisualizationBlock is the pre-chunked input shape produced by rendering
// clients. It carries parent/child relations and line spans instead of a
// syntax tree.
type VisualizationBlock struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	StartLine uint32   `json:"start_line"`
	EndLine   uint32   `json:"end_line"`
	Code      string   `json:"code,omitempty"`
	Condition string   `json:"condition,omitempty"`
	ParentID  string   `json:"parent_id,omitempty"`
	Children  []string `json:"children,omitempty"`
}

// VisualizationEdge is an explicit edge provided by the client, if any.
type VisualizationEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type,omitempty"`
}

// VisualizationData is the full alternate input accepted by
// Engine.AnalyzeVisualization.
type VisualizationData struct {
	SymbolName string                `json:"symbol_name"`
	Language   string                `json:"language,omitempty"`
	Blocks     []VisualizationBlock  `json:"blocks"`
	Edges      []VisualizationEdge   `json:"edges,omitempty"`
	Calls      []models.FunctionCall `json:"calls,omitempty"`
}

// HierarchyNode is one element of the tree produced by BuildHierarchy.
// EdgeType records how the node was reached from its parent.
type HierarchyNode struct {
	Block    *models.Block       `json:"block"`
	EdgeType models.FlowEdgeType `json:"edge_type,omitempty"`
	Children []*HierarchyNode    `json:"children,omitempty"`
}

// buildFromVisualization converts dashboard blocks into the same graph
// vocabulary the AST and pattern builders produce, so every downstream
// algorithm applies unchanged. Missing control edges are inferred
// heuristically afterwards.
func buildFromVisualization(data *VisualizationData, ids *idGen) graph {
	var g graph
	idMap := make(map[string]string, len(data.Blocks))

	for _, vb := range data.Blocks {
		b := models.Block{
			ID:         ids.nextBlock(),
			SymbolName: data.SymbolName,
			Type:       vizBlockType(vb.Type),
			StartLine:  vb.StartLine,
			EndLine:    vb.EndLine,
			Code:       vb.Code,
			Condition:  vb.Condition,
		}
		b.Complexity = blockComplexity(b.Type)
		idMap[vb.ID] = b.ID
		g.blocks = append(g.blocks, b)
	}
	for i, vb := range data.Blocks {
		if parent, ok := idMap[vb.ParentID]; ok {
			g.blocks[i].ParentBlockID = parent
		}
		for _, c := range vb.Children {
			if child, ok := idMap[c]; ok {
				g.blocks[i].Children = append(g.blocks[i].Children, child)
			}
		}
	}

	for _, ve := range data.Edges {
		from, okFrom := idMap[ve.From]
		to, okTo := idMap[ve.To]
		if !okFrom || !okTo {
			continue
		}
		et := models.FlowEdgeType(ve.Type)
		if ve.Type == "" {
			et = models.FlowEdgeSequential
		}
		g.edges = append(g.edges, models.FlowEdge{From: from, To: to, Type: et})
	}

	inferFalseBranches(&g)
	inferLoopBackEdges(&g)

	for _, c := range data.Calls {
		c.ID = ids.nextCall()
		if c.CallerName == "" {
			c.CallerName = data.SymbolName
		}
		g.calls = append(g.calls, c)
	}
	return g
}

func vizBlockType(t string) models.BlockType {
	switch t {
	case "entry", "start":
		return models.BlockEntry
	case "exit", "end":
		return models.BlockExit
	case "condition", "conditional", "if", "branch":
		return models.BlockConditional
	case "loop", "for", "while":
		return models.BlockLoop
	case "switch", "case":
		return models.BlockSwitch
	case "try":
		return models.BlockTry
	case "catch", "except":
		return models.BlockCatch
	case "finally":
		return models.BlockFinally
	case "return":
		return models.BlockReturn
	case "throw", "raise":
		return models.BlockThrow
	default:
		return models.BlockBasic
	}
}

// inferFalseBranches adds a branch-false edge to every conditional block
// lacking one: the nearest subsequent block by start line that is not
// already reachable from the conditional's true-branch target.
func inferFalseBranches(g *graph) {
	for i := range g.blocks {
		cond := &g.blocks[i]
		if cond.Type != models.BlockConditional {
			continue
		}
		var trueTarget string
		hasFalse := false
		for _, e := range g.edges {
			if e.From != cond.ID {
				continue
			}
			switch e.Type {
			case models.FlowEdgeBranchTrue, models.FlowEdgeTrue:
				trueTarget = e.To
			case models.FlowEdgeBranchFalse, models.FlowEdgeFalse:
				hasFalse = true
			}
		}
		if hasFalse {
			continue
		}

		reachable := reachableFrom(g, trueTarget)
		var best *models.Block
		for j := range g.blocks {
			cand := &g.blocks[j]
			if cand.ID == cond.ID || cand.StartLine <= cond.StartLine {
				continue
			}
			if reachable[cand.ID] {
				continue
			}
			if best == nil || cand.StartLine < best.StartLine {
				best = cand
			}
		}
		if best != nil {
			g.edges = append(g.edges, models.FlowEdge{
				From: cond.ID, To: best.ID, Type: models.FlowEdgeBranchFalse,
			})
		}
	}
}

// inferLoopBackEdges connects each loop body's last block back to the loop
// header when the client supplied no loop-back edge. The last body block is
// the one with the highest start line whose outgoing edges, if any, only
// target exit blocks. A loop with no detected body gets a self-loop.
func inferLoopBackEdges(g *graph) {
	exits := make(map[string]bool)
	for _, b := range g.blocks {
		if b.Type == models.BlockExit {
			exits[b.ID] = true
		}
	}

	for i := range g.blocks {
		loop := &g.blocks[i]
		if loop.Type != models.BlockLoop {
			continue
		}
		hasBack := false
		for _, e := range g.edges {
			if e.To == loop.ID && e.Type == models.FlowEdgeLoopBack {
				hasBack = true
				break
			}
		}
		if hasBack {
			continue
		}

		body := loopBodyBlocks(g, loop)
		sort.Slice(body, func(a, b int) bool {
			return body[a].StartLine > body[b].StartLine
		})
		var tail *models.Block
		for _, cand := range body {
			if onlyTargetsExits(g, cand.ID, exits) {
				tail = cand
				break
			}
		}
		if tail == nil {
			tail = loop
		}
		g.edges = append(g.edges, models.FlowEdge{
			From: tail.ID, To: loop.ID, Type: models.FlowEdgeLoopBack,
		})
	}
}

// loopBodyBlocks collects non-exit blocks inside the loop's line span.
func loopBodyBlocks(g *graph, loop *models.Block) []*models.Block {
	var body []*models.Block
	for i := range g.blocks {
		b := &g.blocks[i]
		if b.ID == loop.ID || b.Type == models.BlockExit {
			continue
		}
		if b.StartLine > loop.StartLine && b.EndLine <= loop.EndLine {
			body = append(body, b)
		}
	}
	return body
}

func onlyTargetsExits(g *graph, id string, exits map[string]bool) bool {
	for _, e := range g.edges {
		if e.From == id && !exits[e.To] {
			return false
		}
	}
	return true
}

func reachableFrom(g *graph, start string) map[string]bool {
	seen := make(map[string]bool)
	if start == "" {
		return seen
	}
	seen[start] = true
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			if e.From == cur && !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return seen
}

// BuildHierarchy produces a tree rooted at the first entry block, following
// edges outward and marking each child with the edge type it was reached
// by. A visited set guards against cycles, so loop-back edges never recurse.
func BuildHierarchy(a *models.FlowAnalysis) *HierarchyNode {
	entries := a.EntryBlocks()
	if len(entries) == 0 {
		return nil
	}

	out := make(map[string][]models.FlowEdge)
	for _, e := range a.Edges {
		out[e.From] = append(out[e.From], e)
	}

	visited := make(map[string]bool)
	var build func(id string, via models.FlowEdgeType) *HierarchyNode
	build = func(id string, via models.FlowEdgeType) *HierarchyNode {
		if visited[id] {
			return nil
		}
		visited[id] = true
		blk := a.BlockByID(id)
		if blk == nil {
			return nil
		}
		node := &HierarchyNode{Block: blk, EdgeType: via}
		for _, e := range out[id] {
			if child := build(e.To, e.Type); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node
	}
	return build(entries[0].ID, "")
}

// CallsFromLine filters the analysis's calls to those within the given line
// range. A zero range means the whole function.
func CallsFromLine(a *models.FlowAnalysis, startLine, endLine uint32) []models.FunctionCall {
	if startLine == 0 && endLine == 0 {
		return a.Calls
	}
	var calls []models.FunctionCall
	for _, c := range a.Calls {
		if c.LineNumber >= startLine && (endLine == 0 || c.LineNumber <= endLine) {
			calls = append(calls, c)
		}
	}
	return calls
}

// CanNavigateToNode reports whether a block is a navigation target for the
// rendering client: a non-entry, non-exit block with at least one call in
// its line range.
func CanNavigateToNode(a *models.FlowAnalysis, blockID string) bool {
	blk := a.BlockByID(blockID)
	if blk == nil || blk.Type == models.BlockEntry || blk.Type == models.BlockExit {
		return false
	}
	for _, c := range a.Calls {
		if c.LineNumber >= blk.StartLine && c.LineNumber <= blk.EndLine {
			return true
		}
	}
	return false
}
