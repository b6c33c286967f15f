package analyzer

import (
	"context"
	"regexp"

	"github.com/seerlab/seer/internal/flow"
	"github.com/seerlab/seer/pkg/models"
)

// DataFlows traces variable movement between adjacent blocks. It is a
// text-level heuristic over the block code and guard expressions, not a
// real def-use chain analysis.
type DataFlows struct{}

// NewDataFlows creates a data-flow analyzer.
func NewDataFlows() *DataFlows {
	return &DataFlows{}
}

var identRe = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

// reservedIdents are words that must never be read as variables.
var reservedIdents = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "return": true, "throw": true,
	"try": true, "catch": true, "finally": true, "break": true,
	"continue": true, "var": true, "let": true, "const": true,
	"func": true, "def": true, "fn": true, "new": true,
	"true": true, "false": true, "nil": true, "null": true, "none": true,
}

// AnalyzeDataFlow implements flow.DataFlowAnalyzer.
func (d *DataFlows) AnalyzeDataFlow(_ context.Context, input flow.AnalyzerInput) ([]models.DataFlow, error) {
	defs := make(map[string]map[string]bool, len(input.Blocks))
	uses := make(map[string]map[string]bool, len(input.Blocks))
	lineOf := make(map[string]uint32, len(input.Blocks))

	for _, b := range input.Blocks {
		defs[b.ID] = definedVars(b)
		uses[b.ID] = usedVars(b)
		lineOf[b.ID] = b.StartLine
	}

	flows := []models.DataFlow{}
	for _, e := range input.Edges {
		for v := range defs[e.From] {
			if uses[e.To][v] {
				flows = append(flows, models.DataFlow{
					Variable:  v,
					FromBlock: e.From,
					ToBlock:   e.To,
					Kind:      "def-use",
					Line:      lineOf[e.To],
				})
			}
		}
		for v := range uses[e.From] {
			if uses[e.To][v] && !defs[e.From][v] {
				flows = append(flows, models.DataFlow{
					Variable:  v,
					FromBlock: e.From,
					ToBlock:   e.To,
					Kind:      "use-use",
					Line:      lineOf[e.To],
				})
			}
		}
	}
	return flows, nil
}

// definedVars extracts names assigned within a block.
func definedVars(b models.Block) map[string]bool {
	out := make(map[string]bool)
	for _, m := range assignRe.FindAllStringSubmatch(b.Code, -1) {
		if !reservedIdents[m[1]] {
			out[m[1]] = true
		}
	}
	for _, v := range b.Variables {
		out[v] = true
	}
	return out
}

// usedVars extracts identifiers referenced in a block's code or guard.
func usedVars(b models.Block) map[string]bool {
	out := make(map[string]bool)
	for _, text := range []string{b.Code, b.Condition} {
		for _, id := range identRe.FindAllString(text, -1) {
			if !reservedIdents[id] {
				out[id] = true
			}
		}
	}
	return out
}
