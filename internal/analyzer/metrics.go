// Package analyzer provides the enrichment analyzers the flow engine
// invokes after graph construction: complexity metrics, block hotspots and
// variable data flow.
package analyzer

import (
	"context"
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/seerlab/seer/internal/flow"
	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// Metrics computes cyclomatic, cognitive, nesting and Halstead figures for
// one analyzed function. When the symbol carries parseable source content
// the figures come from its syntax tree; otherwise they are approximated
// from the block graph alone. Safe for concurrent use: the mutex serializes
// the underlying tree-sitter parser and Halstead counter, neither of which
// tolerates concurrent callers.
type Metrics struct {
	mu       sync.Mutex
	parser   *parser.Parser
	halstead *halsteadCounter
}

// NewMetrics creates a metrics analyzer.
func NewMetrics() *Metrics {
	return &Metrics{
		parser:   parser.New(),
		halstead: newHalsteadCounter(),
	}
}

// Close releases the underlying parser.
func (m *Metrics) Close() {
	m.parser.Close()
}

// AnalyzeMetrics implements flow.MetricsAnalyzer.
func (m *Metrics) AnalyzeMetrics(_ context.Context, input flow.AnalyzerInput) (*models.FlowMetrics, error) {
	out := &models.FlowMetrics{
		CyclomaticComplexity: graphCyclomatic(input.Blocks),
		NestingDepth:         graphNestingDepth(input.Nodes),
		ReturnCount:          countBlocks(input.Blocks, models.BlockReturn),
		VariableCount:        approximateVariableCount(input.Blocks),
	}

	lang := parser.Language(input.Symbol.Language)
	if input.Symbol.Content != "" && parser.HasGrammar(lang) {
		m.mu.Lock()
		err := m.refineFromSource(input.Symbol, lang, out)
		m.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// refineFromSource parses the symbol's content and replaces the graph
// approximations with tree-derived figures.
func (m *Metrics) refineFromSource(sym models.SymbolInfo, lang parser.Language, out *models.FlowMetrics) error {
	result, err := m.parser.Parse([]byte(sym.Content), lang, sym.File)
	if err != nil {
		return err
	}

	fns := parser.GetFunctions(result)
	var body *sitter.Node
	for _, fn := range fns {
		if fn.Name == sym.Name || len(fns) == 1 {
			body = fn.Body
			out.ParameterCount = fn.Parameters
			break
		}
	}
	if body == nil {
		// Content was a bare body or an expression; measure the whole tree.
		body = result.Tree.RootNode()
	}

	out.CyclomaticComplexity = 1 + countDecisions(body, result.Source, lang)
	out.CognitiveComplexity = cognitiveComplexity(body, result.Source, lang, 0)
	out.NestingDepth = treeNestingDepth(body, lang, 0)
	out.VariableCount = countDeclarations(body)
	out.Halstead = m.halstead.measure(body, result.Source)
	return nil
}

// graphCyclomatic approximates cyclomatic complexity as decision blocks
// plus one.
func graphCyclomatic(blocks []models.Block) int {
	decisions := 0
	for _, b := range blocks {
		switch b.Type {
		case models.BlockConditional, models.BlockLoop, models.BlockSwitch:
			decisions++
		}
	}
	return decisions + 1
}

// graphNestingDepth walks the node children relation.
func graphNestingDepth(nodes []flow.AnalyzerNode) int {
	children := make(map[string][]string, len(nodes))
	hasParent := make(map[string]bool)
	for _, n := range nodes {
		children[n.ID] = n.Children
		for _, c := range n.Children {
			hasParent[c] = true
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
	for _, n := range nodes {
		if hasParent[n.ID] {
			continue
		}
		if d := depth(n.ID, make(map[string]bool)); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func countBlocks(blocks []models.Block, bt models.BlockType) int {
	n := 0
	for _, b := range blocks {
		if b.Type == bt {
			n++
		}
	}
	return n
}

var assignRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*(?::=|=[^=])`)

// approximateVariableCount counts distinct assigned names across block text.
func approximateVariableCount(blocks []models.Block) int {
	seen := make(map[string]bool)
	for _, b := range blocks {
		for _, m := range assignRe.FindAllStringSubmatch(b.Code, -1) {
			seen[m[1]] = true
		}
	}
	return len(seen)
}

// countDecisions counts branching constructs under node using the
// normalized construct vocabulary, plus short-circuit operators.
func countDecisions(node *sitter.Node, source []byte, lang parser.Language) int {
	count := 0
	parser.Walk(node, source, func(n *sitter.Node, src []byte) bool {
		switch parser.NormalizeNodeType(lang, n.Type()) {
		case parser.ConstructIf, parser.ConstructWhile, parser.ConstructFor,
			parser.ConstructDoWhile, parser.ConstructSwitch:
			count++
		}
		if n.Type() == "binary_expression" || n.Type() == "boolean_operator" || n.Type() == "logical_expression" {
			op := binaryOperator(n, src)
			if op == "&&" || op == "||" || op == "and" || op == "or" {
				count++
			}
		}
		return true
	})
	return count
}

// cognitiveComplexity scores constructs with a nesting penalty: each branch
// or loop costs one plus its depth, and short-circuit operators cost one.
func cognitiveComplexity(node *sitter.Node, source []byte, lang parser.Language, depth int) int {
	score := 0
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch parser.NormalizeNodeType(lang, child.Type()) {
		case parser.ConstructIf, parser.ConstructWhile, parser.ConstructFor,
			parser.ConstructDoWhile, parser.ConstructSwitch, parser.ConstructTry:
			score += 1 + depth
			score += cognitiveComplexity(child, source, lang, depth+1)
		default:
			if child.Type() == "binary_expression" || child.Type() == "boolean_operator" || child.Type() == "logical_expression" {
				op := binaryOperator(child, source)
				if op == "&&" || op == "||" || op == "and" || op == "or" {
					score++
				}
			}
			score += cognitiveComplexity(child, source, lang, depth)
		}
	}
	return score
}

// treeNestingDepth is the deepest chain of control constructs.
func treeNestingDepth(node *sitter.Node, lang parser.Language, depth int) int {
	deepest := depth
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		next := depth
		switch parser.NormalizeNodeType(lang, child.Type()) {
		case parser.ConstructIf, parser.ConstructWhile, parser.ConstructFor,
			parser.ConstructDoWhile, parser.ConstructSwitch, parser.ConstructTry:
			next = depth + 1
		}
		if d := treeNestingDepth(child, lang, next); d > deepest {
			deepest = d
		}
	}
	return deepest
}

var declarationTypes = map[string]bool{
	"short_var_declaration": true,
	"var_declaration":       true,
	"const_declaration":     true,
	"let_declaration":       true,
	"lexical_declaration":   true,
	"variable_declaration":  true,
	"variable_declarator":   true,
	"assignment":            true,
	"assignment_expression": true,
}

func countDeclarations(node *sitter.Node) int {
	count := 0
	parser.Walk(node, nil, func(n *sitter.Node, _ []byte) bool {
		if declarationTypes[n.Type()] {
			count++
		}
		return true
	})
	return count
}

// binaryOperator returns the operator token of a binary expression.
func binaryOperator(node *sitter.Node, source []byte) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return strings.TrimSpace(parser.GetNodeText(op, source))
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if !child.IsNamed() {
			return strings.TrimSpace(parser.GetNodeText(child, source))
		}
	}
	return ""
}
