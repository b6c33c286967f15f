package flow

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/seerlab/seer/pkg/models"
)

// maxHotPaths is how many ranked entry-to-exit routes are kept.
const maxHotPaths = 5

// adjacency precomputes outgoing edges and a stable block-id index so the
// reachability bitmap can use dense integers.
type adjacency struct {
	out   map[string][]string
	index map[string]uint32
}

func buildAdjacency(g *graph) adjacency {
	adj := adjacency{
		out:   make(map[string][]string, len(g.blocks)),
		index: make(map[string]uint32, len(g.blocks)),
	}
	for i := range g.blocks {
		adj.index[g.blocks[i].ID] = uint32(i)
	}
	for _, e := range g.edges {
		adj.out[e.From] = append(adj.out[e.From], e.To)
	}
	return adj
}

// detectDeadCode walks forward from every entry block and reports the start
// line of each block never reached. This is a heuristic reachability check
// over the computed edge set, not a sound static analysis.
func detectDeadCode(g *graph, adj adjacency) []uint32 {
	visited := roaring.New()
	var queue []string
	for _, b := range g.blocks {
		if b.Type == models.BlockEntry {
			queue = append(queue, b.ID)
			visited.Add(adj.index[b.ID])
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj.out[cur] {
			idx, ok := adj.index[next]
			if !ok || visited.Contains(idx) {
				continue
			}
			visited.Add(idx)
			queue = append(queue, next)
		}
	}

	dead := []uint32{}
	for i := range g.blocks {
		if !visited.Contains(uint32(i)) {
			dead = append(dead, g.blocks[i].StartLine)
		}
	}
	return dead
}

// hotPath is a completed entry-to-exit route with its aggregate weight.
type hotPath struct {
	blocks     []string
	complexity int
}

// findHotPaths enumerates entry-to-exit routes depth-first, treating the
// walk as path-local so cyclic graphs terminate, and keeps the top routes
// ranked by complexity (descending) then length (ascending).
func findHotPaths(g *graph, adj adjacency) [][]string {
	complexityOf := make(map[string]int, len(g.blocks))
	exits := make(map[string]bool)
	for _, b := range g.blocks {
		complexityOf[b.ID] = b.Complexity
		if b.Type == models.BlockExit {
			exits[b.ID] = true
		}
	}

	var completed []hotPath
	var walk func(id string, path []string, onPath map[string]bool, complexity int)
	walk = func(id string, path []string, onPath map[string]bool, complexity int) {
		path = append(path, id)
		onPath[id] = true
		complexity += complexityOf[id]

		if exits[id] {
			completed = append(completed, hotPath{
				blocks:     append([]string(nil), path...),
				complexity: complexity,
			})
		} else {
			for _, next := range adj.out[id] {
				if onPath[next] {
					continue
				}
				walk(next, path, onPath, complexity)
			}
		}
		delete(onPath, id)
	}

	for _, b := range g.blocks {
		if b.Type == models.BlockEntry {
			walk(b.ID, nil, make(map[string]bool), 0)
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		if completed[i].complexity != completed[j].complexity {
			return completed[i].complexity > completed[j].complexity
		}
		return len(completed[i].blocks) < len(completed[j].blocks)
	})

	if len(completed) > maxHotPaths {
		completed = completed[:maxHotPaths]
	}
	result := make([][]string, len(completed))
	for i, p := range completed {
		result[i] = p.blocks
	}
	return result
}

// generatePaths finds one representative route per (entry, exit) pair via
// BFS shortest path. This deliberately yields a single path per pair, not
// all simple paths, which is combinatorially unsafe on cyclic graphs.
func generatePaths(g *graph, adj adjacency, ids *idGen) []models.ExecutionPath {
	blockByID := make(map[string]*models.Block, len(g.blocks))
	var entries, exits []string
	for i := range g.blocks {
		b := &g.blocks[i]
		blockByID[b.ID] = b
		switch b.Type {
		case models.BlockEntry:
			entries = append(entries, b.ID)
		case models.BlockExit:
			exits = append(exits, b.ID)
		}
	}

	paths := []models.ExecutionPath{}
	for _, entry := range entries {
		for _, exit := range exits {
			if blockByID[entry].SymbolName != blockByID[exit].SymbolName {
				continue
			}
			route := shortestPath(adj, entry, exit)
			if route == nil {
				continue
			}

			p := models.ExecutionPath{
				ID:         ids.nextPath(),
				StartBlock: entry,
				EndBlock:   exit,
				Blocks:     route,
				IsComplete: true,
				IsCyclic:   hasBackEdge(g, route),
			}
			for _, id := range route {
				b := blockByID[id]
				p.Complexity += b.Complexity
				if b.Condition != "" {
					p.Conditions = append(p.Conditions, b.Condition)
				}
			}
			paths = append(paths, p)
		}
	}
	return paths
}

// shortestPath returns the BFS route from start to goal, or nil.
func shortestPath(adj adjacency, start, goal string) []string {
	if start == goal {
		return []string{start}
	}
	prev := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj.out[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == goal {
				var route []string
				for at := goal; at != ""; at = prev[at] {
					route = append(route, at)
				}
				for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
					route[i], route[j] = route[j], route[i]
				}
				return route
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// hasBackEdge approximates cycle membership: true when any edge has both
// endpoints on the route and its target appears earlier than its source in
// the route ordering. This is not a rigorous back-edge test.
func hasBackEdge(g *graph, route []string) bool {
	pos := make(map[string]int, len(route))
	for i, id := range route {
		pos[id] = i
	}
	for _, e := range g.edges {
		from, okFrom := pos[e.From]
		to, okTo := pos[e.To]
		if okFrom && okTo && to < from {
			return true
		}
	}
	return false
}

// cyclomaticComplexity derives complexity from the generated path set:
// max(1, pathEdges − blocks + 2), where pathEdges sums each path's edge
// count. Path-derived rather than raw-edge-derived, so the figure tracks
// the representative routes the engine actually reports.
func cyclomaticComplexity(paths []models.ExecutionPath, totalBlocks int) int {
	pathEdges := 0
	for _, p := range paths {
		if n := len(p.Blocks); n > 1 {
			pathEdges += n - 1
		}
	}
	cc := pathEdges - totalBlocks + 2
	if cc < 1 {
		cc = 1
	}
	return cc
}

// maxNestingDepth walks the parentBlockId forest. Parents are only recorded
// for constructs nested under branches and loop bodies, so the figure
// undercounts some shapes; a known limitation of the relation itself.
func maxNestingDepth(g *graph) int {
	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	for _, b := range g.blocks {
		if b.ParentBlockID != "" {
			children[b.ParentBlockID] = append(children[b.ParentBlockID], b.ID)
			hasParent[b.ID] = true
		}
	}

	var depth func(id string, seen map[string]bool) int
	depth = func(id string, seen map[string]bool) int {
		if seen[id] {
			return 0
		}
		seen[id] = true
		max := 0
		for _, c := range children[id] {
			if d := depth(c, seen); d > max {
				max = d
			}
		}
		return max + 1
	}

	deepest := 0
	for _, b := range g.blocks {
		if hasParent[b.ID] {
			continue
		}
		if d := depth(b.ID, make(map[string]bool)); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// computeStatistics aggregates structural counts and the path-complexity
// distribution for one analysis.
func computeStatistics(g *graph, paths []models.ExecutionPath) models.FlowStatistics {
	s := models.FlowStatistics{
		TotalBlocks:    len(g.blocks),
		CallComplexity: len(g.calls),
	}
	for _, b := range g.blocks {
		switch b.Type {
		case models.BlockConditional, models.BlockSwitch:
			s.ConditionalBlocks++
		case models.BlockLoop:
			s.LoopBlocks++
		case models.BlockTry, models.BlockCatch, models.BlockFinally, models.BlockThrow:
			s.ExceptionBlocks++
		}
	}
	s.MaxNestingDepth = maxNestingDepth(g)
	s.CyclomaticComplexity = cyclomaticComplexity(paths, len(g.blocks))

	if len(paths) > 0 {
		weights := make([]float64, len(paths))
		for i, p := range paths {
			weights[i] = float64(p.Complexity)
		}
		s.PathComplexityMean = stat.Mean(weights, nil)
		if len(weights) > 1 {
			s.PathComplexityStdDev = stat.StdDev(weights, nil)
		}
	}
	return s
}
