package flow

import (
	"context"
	"fmt"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// defaultTimeout bounds one analysis when the caller sets no budget.
const defaultTimeout = 5000 * time.Millisecond

// SymbolProvider resolves a symbol id to its metadata.
type SymbolProvider interface {
	GetSymbol(ctx context.Context, symbolID string) (*models.SymbolInfo, error)
}

// AnalyzerNode is the generic shape external analyzers consume.
type AnalyzerNode struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Line     uint32             `json:"line"`
	EndLine  uint32             `json:"end_line"`
	Code     string             `json:"code,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Children []string           `json:"children,omitempty"`
}

// AnalyzerEdge is the generic edge shape external analyzers consume.
type AnalyzerEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// AnalyzerInput packages one analysis for an external analyzer.
type AnalyzerInput struct {
	Nodes  []AnalyzerNode    `json:"nodes"`
	Edges  []AnalyzerEdge    `json:"edges"`
	Blocks []models.Block    `json:"blocks"`
	Symbol models.SymbolInfo `json:"symbol"`
}

// MetricsAnalyzer computes complexity and related figures for one analysis.
type MetricsAnalyzer interface {
	AnalyzeMetrics(ctx context.Context, input AnalyzerInput) (*models.FlowMetrics, error)
}

// HotspotAnalyzer scores blocks by combined churn and complexity.
type HotspotAnalyzer interface {
	AnalyzeHotspots(ctx context.Context, input AnalyzerInput) ([]models.BlockHotspot, error)
}

// DataFlowAnalyzer traces variable def-use movement between blocks.
type DataFlowAnalyzer interface {
	AnalyzeDataFlow(ctx context.Context, input AnalyzerInput) ([]models.DataFlow, error)
}

// BlockStore persists the blocks of one symbol, replacing any prior set.
type BlockStore interface {
	ReplaceBlocks(ctx context.Context, symbolID string, blocks []models.Block) error
}

// Options configures one analysis invocation.
type Options struct {
	Language           parser.Language
	IncludeDataFlow    bool
	DetectHotspots     bool
	PerformanceMetrics bool
	MaxDepth           int
	CallGraphDepth     int
	StoreInDatabase    bool
	// TimeoutMs overrides the 5000ms default. An explicit zero makes the
	// budget check fail immediately, yielding the minimal two-block result.
	TimeoutMs *int64
}

// DefaultOptions returns the options used when the caller passes nothing.
func DefaultOptions() Options {
	return Options{PerformanceMetrics: true}
}

func (o Options) budget() time.Duration {
	if o.TimeoutMs == nil {
		return defaultTimeout
	}
	return time.Duration(*o.TimeoutMs) * time.Millisecond
}

// Engine builds and analyzes control flow graphs. It holds no per-analysis
// state: every Analyze* call gets a fresh id generator, so one Engine may
// serve concurrent callers.
type Engine struct {
	symbols  SymbolProvider
	metrics  MetricsAnalyzer
	hotspots HotspotAnalyzer
	dataflow DataFlowAnalyzer
	store    BlockStore
	patterns map[parser.Language]patternSet
	now      func() time.Time
}

// EngineOption customizes a new Engine.
type EngineOption func(*Engine)

// WithSymbolProvider sets the metadata source for AnalyzeSymbol.
func WithSymbolProvider(p SymbolProvider) EngineOption {
	return func(e *Engine) { e.symbols = p }
}

// WithMetricsAnalyzer sets the complexity enrichment collaborator.
func WithMetricsAnalyzer(m MetricsAnalyzer) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithHotspotAnalyzer sets the optional hotspot collaborator.
func WithHotspotAnalyzer(h HotspotAnalyzer) EngineOption {
	return func(e *Engine) { e.hotspots = h }
}

// WithDataFlowAnalyzer sets the optional data-flow collaborator.
func WithDataFlowAnalyzer(d DataFlowAnalyzer) EngineOption {
	return func(e *Engine) { e.dataflow = d }
}

// WithBlockStore sets the persistence collaborator.
func WithBlockStore(s BlockStore) EngineOption {
	return func(e *Engine) { e.store = s }
}

// WithPatternSets registers extra fallback pattern sets, such as ones
// loaded from language definition files.
func WithPatternSets(sets map[parser.Language]patternSet) EngineOption {
	return func(e *Engine) { e.patterns = sets }
}

// NewEngine creates an analysis engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// AnalyzeSymbol resolves a symbol id through the configured provider and
// analyzes it. An unknown id is an error; everything past resolution
// degrades rather than fails.
func (e *Engine) AnalyzeSymbol(ctx context.Context, symbolID string, tree *sitter.Node, content string, opts Options) (*models.FlowAnalysis, error) {
	if e.symbols == nil {
		return nil, fmt.Errorf("flow: no symbol provider configured")
	}
	sym, err := e.symbols.GetSymbol(ctx, symbolID)
	if err != nil {
		return nil, fmt.Errorf("flow: resolve symbol %q: %w", symbolID, err)
	}
	if sym == nil {
		return nil, fmt.Errorf("flow: symbol %q not found", symbolID)
	}
	analysis, err := e.AnalyzeSymbolData(ctx, *sym, tree, content, opts)
	if err != nil {
		return nil, err
	}
	if opts.StoreInDatabase && e.store != nil {
		if err := e.store.ReplaceBlocks(ctx, symbolID, analysis.Blocks); err != nil {
			return nil, fmt.Errorf("flow: store blocks for %q: %w", symbolID, err)
		}
	}
	return analysis, nil
}

// AnalyzeSymbolData analyzes an in-memory symbol, bypassing the metadata
// provider. tree may be nil; the pattern fallback is used then.
func (e *Engine) AnalyzeSymbolData(ctx context.Context, sym models.SymbolInfo, tree *sitter.Node, content string, opts Options) (*models.FlowAnalysis, error) {
	started := e.now()
	ids := newIDGen()
	lang := e.resolveLanguage(sym, opts)

	var g graph
	if tree != nil && tree.ChildCount() > 0 {
		g = buildFromAST(tree, sym, []byte(content), lang, ids)
	} else {
		g = buildFromPatterns(sym, content, lang, ids, e.patterns)
	}

	// Budget checkpoint between construction and derivation. Not
	// preemptive; a pathological walk only short-circuits here.
	if e.now().Sub(started) >= opts.budget() {
		return e.minimalResult(sym, started), nil
	}

	analysis := deriveAnalysis(sym, g, ids)
	analysis.Duration = e.now().Sub(started)

	// Second checkpoint before enrichment: a slow derivation returns the
	// graph unenriched rather than starting the analyzers over budget.
	if analysis.Duration >= opts.budget() {
		analysis.TimedOut = true
		return analysis, nil
	}

	if err := e.enrich(ctx, analysis, opts); err != nil {
		return nil, err
	}
	return analysis, nil
}

// AnalyzeVisualization analyzes pre-chunked dashboard blocks instead of a
// syntax tree. The same derivation and enrichment apply.
func (e *Engine) AnalyzeVisualization(ctx context.Context, data *VisualizationData, opts Options) (*models.FlowAnalysis, error) {
	started := e.now()
	ids := newIDGen()

	sym := models.SymbolInfo{Name: data.SymbolName, Language: data.Language}
	for _, b := range data.Blocks {
		if sym.Line == 0 || b.StartLine < sym.Line {
			sym.Line = b.StartLine
		}
		if b.EndLine > sym.EndLine {
			sym.EndLine = b.EndLine
		}
	}

	g := buildFromVisualization(data, ids)
	if e.now().Sub(started) >= opts.budget() {
		return e.minimalResult(sym, started), nil
	}

	analysis := deriveAnalysis(sym, g, ids)
	analysis.Duration = e.now().Sub(started)

	if analysis.Duration >= opts.budget() {
		analysis.TimedOut = true
		return analysis, nil
	}

	if err := e.enrich(ctx, analysis, opts); err != nil {
		return nil, err
	}
	return analysis, nil
}

// deriveAnalysis runs the graph algorithms over a built graph.
func deriveAnalysis(sym models.SymbolInfo, g graph, ids *idGen) *models.FlowAnalysis {
	adj := buildAdjacency(&g)
	paths := generatePaths(&g, adj, ids)
	return &models.FlowAnalysis{
		Symbol:     sym,
		Blocks:     g.blocks,
		Edges:      g.edges,
		Calls:      g.calls,
		Paths:      paths,
		DeadCode:   detectDeadCode(&g, adj),
		HotPaths:   findHotPaths(&g, adj),
		Statistics: computeStatistics(&g, paths),
	}
}

// enrich invokes the external analyzers. Their failures propagate; the
// orchestration layer above decides whether to contain them per symbol.
func (e *Engine) enrich(ctx context.Context, a *models.FlowAnalysis, opts Options) error {
	needsInput := (opts.PerformanceMetrics && e.metrics != nil) ||
		(opts.DetectHotspots && e.hotspots != nil) ||
		(opts.IncludeDataFlow && e.dataflow != nil)
	if !needsInput {
		return nil
	}
	input := toAnalyzerInput(a)

	if opts.PerformanceMetrics && e.metrics != nil {
		m, err := e.metrics.AnalyzeMetrics(ctx, input)
		if err != nil {
			return fmt.Errorf("flow: metrics analyzer: %w", err)
		}
		a.Metrics = m
	}
	if opts.DetectHotspots && e.hotspots != nil {
		h, err := e.hotspots.AnalyzeHotspots(ctx, input)
		if err != nil {
			return fmt.Errorf("flow: hotspot analyzer: %w", err)
		}
		a.Hotspots = h
	}
	if opts.IncludeDataFlow && e.dataflow != nil {
		d, err := e.dataflow.AnalyzeDataFlow(ctx, input)
		if err != nil {
			return fmt.Errorf("flow: data-flow analyzer: %w", err)
		}
		a.DataFlows = d
	}
	return nil
}

// toAnalyzerInput maps blocks and edges to the generic analyzer shape.
func toAnalyzerInput(a *models.FlowAnalysis) AnalyzerInput {
	input := AnalyzerInput{
		Nodes:  make([]AnalyzerNode, len(a.Blocks)),
		Edges:  make([]AnalyzerEdge, len(a.Edges)),
		Blocks: a.Blocks,
		Symbol: a.Symbol,
	}
	for i, b := range a.Blocks {
		input.Nodes[i] = AnalyzerNode{
			ID:       b.ID,
			Type:     string(b.Type),
			Line:     b.StartLine,
			EndLine:  b.EndLine,
			Code:     b.Code,
			Metrics:  b.Metrics,
			Children: b.Children,
		}
	}
	for i, e := range a.Edges {
		input.Edges[i] = AnalyzerEdge{From: e.From, To: e.To, Type: string(e.Type)}
	}
	return input
}

// minimalResult is the degraded two-block analysis returned when the
// budget is exhausted. A timeout is not an error.
func (e *Engine) minimalResult(sym models.SymbolInfo, started time.Time) *models.FlowAnalysis {
	ids := newIDGen()
	entry := models.Block{
		ID:         ids.nextBlock(),
		SymbolName: sym.Name,
		Type:       models.BlockEntry,
		StartLine:  sym.Line,
		EndLine:    sym.Line,
	}
	end := sym.EndLine
	if end == 0 {
		end = sym.Line
	}
	exit := models.Block{
		ID:         ids.nextBlock(),
		SymbolName: sym.Name,
		Type:       models.BlockExit,
		StartLine:  end,
		EndLine:    end,
	}
	return &models.FlowAnalysis{
		Symbol: sym,
		Blocks: []models.Block{entry, exit},
		Edges: []models.FlowEdge{
			{From: entry.ID, To: exit.ID, Type: models.FlowEdgeSequential},
		},
		Calls:    []models.FunctionCall{},
		Paths:    []models.ExecutionPath{},
		DeadCode: []uint32{},
		HotPaths: [][]string{},
		Statistics: models.FlowStatistics{
			TotalBlocks:          2,
			CyclomaticComplexity: 1,
		},
		TimedOut: true,
		Duration: e.now().Sub(started),
	}
}

func (e *Engine) resolveLanguage(sym models.SymbolInfo, opts Options) parser.Language {
	if opts.Language != "" {
		return opts.Language
	}
	return parser.Language(sym.Language)
}

// ToControlFlowGraph converts an analysis to the legacy numeric-id graph
// consumed by older rendering clients.
func ToControlFlowGraph(a *models.FlowAnalysis) *models.ControlFlowGraph {
	cfg := &models.ControlFlowGraph{
		FunctionName: a.Symbol.Name,
		EntryNode:    -1,
	}
	idx := make(map[string]int, len(a.Blocks))
	for i, b := range a.Blocks {
		idx[b.ID] = i
		label := b.Code
		if label == "" {
			label = string(b.Type)
		}
		cfg.Nodes = append(cfg.Nodes, models.CFGNode{
			ID:        i,
			Label:     label,
			Type:      string(b.Type),
			StartLine: b.StartLine,
			EndLine:   b.EndLine,
		})
		switch b.Type {
		case models.BlockEntry:
			if cfg.EntryNode < 0 {
				cfg.EntryNode = i
			}
		case models.BlockExit:
			cfg.ExitNodes = append(cfg.ExitNodes, i)
		case models.BlockLoop:
			cfg.Loops = append(cfg.Loops, i)
		case models.BlockConditional:
			cfg.Conditionals = append(cfg.Conditionals, i)
		}
	}
	for _, e := range a.Edges {
		from, okFrom := idx[e.From]
		to, okTo := idx[e.To]
		if !okFrom || !okTo {
			continue
		}
		cfg.Edges = append(cfg.Edges, models.CFGEdge{
			From:  from,
			To:    to,
			Label: string(e.Type),
		})
	}
	return cfg
}
