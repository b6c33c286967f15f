package models

import "time"

// BlockType classifies a node in a control flow graph.
type BlockType string

const (
	BlockEntry       BlockType = "entry"
	BlockExit        BlockType = "exit"
	BlockBasic       BlockType = "basic"
	BlockStatement   BlockType = "statement"
	BlockConditional BlockType = "conditional"
	BlockLoop        BlockType = "loop"
	BlockSwitch      BlockType = "switch"
	BlockTry         BlockType = "try"
	BlockCatch       BlockType = "catch"
	BlockFinally     BlockType = "finally"
	BlockReturn      BlockType = "return"
	BlockThrow       BlockType = "throw"
)

// LoopType identifies the concrete loop construct behind a loop block.
type LoopType string

const (
	LoopFor      LoopType = "for"
	LoopWhile    LoopType = "while"
	LoopDoWhile  LoopType = "do-while"
	LoopRangeFor LoopType = "range-for"
	LoopForIn    LoopType = "for-in"
	LoopForOf    LoopType = "for-of"
)

// Block is a node in a function's control flow graph.
// IDs are unique within one analysis run, not globally.
type Block struct {
	ID             string             `json:"id"`
	SymbolName     string             `json:"symbol_name"`
	Type           BlockType          `json:"type"`
	StartLine      uint32             `json:"start_line"`
	EndLine        uint32             `json:"end_line"`
	Code           string             `json:"code,omitempty"`
	Condition      string             `json:"condition,omitempty"`
	LoopType       LoopType           `json:"loop_type,omitempty"`
	ParentBlockID  string             `json:"parent_block_id,omitempty"`
	Complexity     int                `json:"complexity"`
	Calls          []string           `json:"calls,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	Variables      []string           `json:"variables,omitempty"`
	ExceptionTypes []string           `json:"exception_types,omitempty"`
	Children       []string           `json:"children,omitempty"`
}

// FlowEdgeType classifies a directed edge between blocks.
type FlowEdgeType string

const (
	FlowEdgeSequential  FlowEdgeType = "sequential"
	FlowEdgeNormal      FlowEdgeType = "normal"
	FlowEdgeBranchTrue  FlowEdgeType = "branch-true"
	FlowEdgeBranchFalse FlowEdgeType = "branch-false"
	FlowEdgeTrue        FlowEdgeType = "true"
	FlowEdgeFalse       FlowEdgeType = "false"
	FlowEdgeLoopBack    FlowEdgeType = "loop-back"
	FlowEdgeBreak       FlowEdgeType = "break"
	FlowEdgeContinue    FlowEdgeType = "continue"
	FlowEdgeReturn      FlowEdgeType = "return"
	FlowEdgeThrow       FlowEdgeType = "throw"
	FlowEdgeException   FlowEdgeType = "exception"
)

// FlowEdge is a directed link between two block IDs in the same analysis.
type FlowEdge struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Type        FlowEdgeType `json:"type"`
	Label       string       `json:"label,omitempty"`
	Probability float64      `json:"probability,omitempty"`
}

// CallType classifies how an invocation is made, judged syntactically.
type CallType string

const (
	CallDirect          CallType = "direct"
	CallVirtual         CallType = "virtual"
	CallTemplate        CallType = "template"
	CallFunctionPointer CallType = "function_pointer"
	CallLambda          CallType = "lambda"
	CallUnknown         CallType = "unknown"
)

// FunctionCall is a detected invocation inside a function body.
type FunctionCall struct {
	ID             string   `json:"id"`
	CallerName     string   `json:"caller_name"`
	TargetFunction string   `json:"target_function"`
	LineNumber     uint32   `json:"line_number"`
	ColumnNumber   uint32   `json:"column_number,omitempty"`
	CallType       CallType `json:"call_type"`
	IsConditional  bool     `json:"is_conditional"`
	IsInLoop       bool     `json:"is_in_loop"`
	IsInTryCatch   bool     `json:"is_in_try_catch"`
	ArgumentTypes  []string `json:"argument_types,omitempty"`
	TemplateArgs   []string `json:"template_args,omitempty"`
}

// ExecutionPath is one route through a control flow graph.
type ExecutionPath struct {
	ID         string   `json:"id"`
	StartBlock string   `json:"start_block"`
	EndBlock   string   `json:"end_block"`
	Blocks     []string `json:"blocks"`
	Conditions []string `json:"conditions,omitempty"`
	IsComplete bool     `json:"is_complete"`
	IsCyclic   bool     `json:"is_cyclic"`
	Complexity int      `json:"complexity"`
}

// FlowStatistics aggregates structural counts for one analyzed function.
type FlowStatistics struct {
	TotalBlocks          int     `json:"total_blocks"`
	ConditionalBlocks    int     `json:"conditional_blocks"`
	LoopBlocks           int     `json:"loop_blocks"`
	ExceptionBlocks      int     `json:"exception_blocks"`
	MaxNestingDepth      int     `json:"max_nesting_depth"`
	CyclomaticComplexity int     `json:"cyclomatic_complexity"`
	CallComplexity       int     `json:"call_complexity"`
	PathComplexityMean   float64 `json:"path_complexity_mean,omitempty"`
	PathComplexityStdDev float64 `json:"path_complexity_stddev,omitempty"`
}

// SymbolInfo is the metadata the engine needs about one function or method.
type SymbolInfo struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name,omitempty"`
	Line          uint32 `json:"line"`
	EndLine       uint32 `json:"end_line,omitempty"`
	Kind          string `json:"kind,omitempty"`
	Signature     string `json:"signature,omitempty"`
	ReturnType    string `json:"return_type,omitempty"`
	Content       string `json:"content,omitempty"`
	Language      string `json:"language,omitempty"`
	File          string `json:"file,omitempty"`
}

// FlowMetrics is the enrichment result returned by a metrics analyzer.
type FlowMetrics struct {
	CyclomaticComplexity int              `json:"cyclomatic_complexity"`
	CognitiveComplexity  int              `json:"cognitive_complexity"`
	NestingDepth         int              `json:"nesting_depth"`
	ParameterCount       int              `json:"parameter_count"`
	VariableCount        int              `json:"variable_count"`
	ReturnCount          int              `json:"return_count"`
	Halstead             *HalsteadMetrics `json:"halstead,omitempty"`
}

// DataFlow describes one variable's movement between two blocks.
type DataFlow struct {
	Variable  string `json:"variable"`
	FromBlock string `json:"from_block"`
	ToBlock   string `json:"to_block"`
	Kind      string `json:"kind"` // def-use, use-use
	Line      uint32 `json:"line,omitempty"`
}

// BlockHotspot scores one block by combined churn and complexity.
type BlockHotspot struct {
	BlockID         string  `json:"block_id"`
	StartLine       uint32  `json:"start_line"`
	EndLine         uint32  `json:"end_line"`
	HotspotScore    float64 `json:"hotspot_score"`
	ChurnScore      float64 `json:"churn_score"`
	ComplexityScore float64 `json:"complexity_score"`
	Commits         int     `json:"commits"`
}

// FlowAnalysis is the aggregate result of one engine invocation.
// It is transient: created fresh per call and discarded once consumed.
type FlowAnalysis struct {
	Symbol     SymbolInfo      `json:"symbol"`
	Blocks     []Block         `json:"blocks"`
	Edges      []FlowEdge      `json:"edges"`
	Calls      []FunctionCall  `json:"calls"`
	Paths      []ExecutionPath `json:"paths"`
	Metrics    *FlowMetrics    `json:"metrics,omitempty"`
	DataFlows  []DataFlow      `json:"data_flows,omitempty"`
	Hotspots   []BlockHotspot  `json:"hotspots,omitempty"`
	DeadCode   []uint32        `json:"dead_code"`
	HotPaths   [][]string      `json:"hot_paths"`
	Statistics FlowStatistics  `json:"statistics"`
	TimedOut   bool            `json:"timed_out,omitempty"`
	Duration   time.Duration   `json:"duration_ns,omitempty"`
}

// BlockByID returns the block with the given id, or nil.
func (a *FlowAnalysis) BlockByID(id string) *Block {
	for i := range a.Blocks {
		if a.Blocks[i].ID == id {
			return &a.Blocks[i]
		}
	}
	return nil
}

// EntryBlocks returns all entry-typed blocks in creation order.
func (a *FlowAnalysis) EntryBlocks() []Block {
	var entries []Block
	for _, b := range a.Blocks {
		if b.Type == BlockEntry {
			entries = append(entries, b)
		}
	}
	return entries
}

// CFGNode is a node in the legacy numeric-id graph shape.
type CFGNode struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	Type      string `json:"type"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line"`
}

// CFGEdge links two legacy numeric node ids.
type CFGEdge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label,omitempty"`
}

// ControlFlowGraph is the legacy numeric-id graph exposed for older
// rendering clients by Engine.ToControlFlowGraph.
type ControlFlowGraph struct {
	FunctionName string    `json:"function_name"`
	Nodes        []CFGNode `json:"nodes"`
	Edges        []CFGEdge `json:"edges"`
	EntryNode    int       `json:"entry_node"`
	ExitNodes    []int     `json:"exit_nodes"`
	Loops        []int     `json:"loops,omitempty"`
	Conditionals []int     `json:"conditionals,omitempty"`
}

// FileFlowReport aggregates per-function analyses for a single file.
type FileFlowReport struct {
	Path      string         `json:"path"`
	Language  string         `json:"language"`
	Functions []FlowAnalysis `json:"functions"`
	Errors    []string       `json:"errors,omitempty"`
}

// FlowProjectReport is the batch result over many files.
type FlowProjectReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Files       []FileFlowReport `json:"files"`
	Summary     FlowSummary      `json:"summary"`
}

// FlowSummary rolls up project-wide flow statistics.
type FlowSummary struct {
	TotalFiles        int     `json:"total_files"`
	TotalFunctions    int     `json:"total_functions"`
	TotalBlocks       int     `json:"total_blocks"`
	TotalDeadLines    int     `json:"total_dead_lines"`
	AvgCyclomatic     float64 `json:"avg_cyclomatic"`
	MaxCyclomatic     int     `json:"max_cyclomatic"`
	TimedOutFunctions int     `json:"timed_out_functions"`
}

// CalculateSummary recomputes the roll-up from the per-file reports.
func (r *FlowProjectReport) CalculateSummary() {
	s := FlowSummary{TotalFiles: len(r.Files)}
	var cycTotal int
	for _, f := range r.Files {
		s.TotalFunctions += len(f.Functions)
		for _, fn := range f.Functions {
			s.TotalBlocks += fn.Statistics.TotalBlocks
			s.TotalDeadLines += len(fn.DeadCode)
			cycTotal += fn.Statistics.CyclomaticComplexity
			if fn.Statistics.CyclomaticComplexity > s.MaxCyclomatic {
				s.MaxCyclomatic = fn.Statistics.CyclomaticComplexity
			}
			if fn.TimedOut {
				s.TimedOutFunctions++
			}
		}
	}
	if s.TotalFunctions > 0 {
		s.AvgCyclomatic = float64(cycTotal) / float64(s.TotalFunctions)
	}
	r.Summary = s
}
