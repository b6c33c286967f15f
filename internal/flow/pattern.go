package flow

import (
	"strings"

	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// patternBuilder approximates a CFG from raw source lines when no syntax
// tree is available. Control blocks are chained sequentially; the branch
// precision of the AST builder is intentionally not attempted here.
type patternBuilder struct {
	g          graph
	ids        *idGen
	lang       parser.Language
	symbolName string
	set        patternSet
}

// buildFromPatterns scans the symbol's line range with per-language regular
// expressions and emits a connected entry-to-exit graph.
func buildFromPatterns(sym models.SymbolInfo, content string, lang parser.Language, ids *idGen, extra map[parser.Language]patternSet) graph {
	set, ok := extra[lang]
	if !ok {
		set, ok = builtinPatternSets[lang]
	}
	if !ok {
		// No pattern set registered: fall back to the C-style family,
		// which covers the brace-language majority.
		set = builtinPatternSets[parser.LangC]
	}

	b := &patternBuilder{ids: ids, lang: lang, symbolName: sym.Name, set: set}

	lines := strings.Split(content, "\n")
	start := int(sym.Line)
	end := int(sym.EndLine)
	if start < 1 {
		start = 1
	}
	if end == 0 || end > len(lines) {
		end = len(lines)
	}

	entry := b.newBlock(models.BlockEntry, uint32(start), uint32(start))
	current := entry
	pending := start + 1 // first line of the growing basic block

	for lineNo := start + 1; lineNo <= end; lineNo++ {
		line := lines[lineNo-1]
		b.scanCalls(line, uint32(lineNo), current)

		matched := b.matchLine(line)
		if matched == nil {
			continue
		}

		// Flush the pending basic block covering the plain lines before
		// this construct.
		if lineNo > pending {
			basic := b.newBlock(models.BlockBasic, uint32(pending), uint32(lineNo-1))
			b.addEdge(current, basic, models.FlowEdgeSequential)
			current = basic
		}

		bt := blockTypeForPattern(matched.name)
		blk := b.newBlock(bt, uint32(lineNo), uint32(lineNo))
		if cond := extractGuard(line); cond != "" && bt != models.BlockReturn && bt != models.BlockThrow {
			b.setCondition(blk, cond)
		}
		if bt == models.BlockLoop {
			b.setLoopType(blk, loopTypeForPattern(matched.name, b.lang))
		}
		if bt == models.BlockReturn || bt == models.BlockThrow {
			b.setCode(blk, strings.TrimSpace(line))
		}
		b.addEdge(current, blk, models.FlowEdgeSequential)
		current = blk
		pending = lineNo + 1
	}

	if end >= pending {
		basic := b.newBlock(models.BlockBasic, uint32(pending), uint32(end))
		b.addEdge(current, basic, models.FlowEdgeSequential)
		current = basic
	}

	exit := b.newBlock(models.BlockExit, uint32(end), uint32(end))
	b.addEdge(current, exit, models.FlowEdgeSequential)
	return b.g
}

// matchLine tests the ordered pattern set and returns the first match.
func (b *patternBuilder) matchLine(line string) *linePattern {
	for i := range b.set.patterns {
		if b.set.patterns[i].re.MatchString(line) {
			return &b.set.patterns[i]
		}
	}
	return nil
}

// scanCalls records call-like syntax on one line, excluding the language's
// reserved words.
func (b *patternBuilder) scanCalls(line string, lineNo uint32, blockID string) {
	for _, m := range callRe.FindAllStringSubmatchIndex(line, -1) {
		target := line[m[2]:m[3]]
		name := target
		if idx := strings.LastIndexAny(name, ".:>"); idx >= 0 && idx < len(name)-1 {
			name = name[idx+1:]
		}
		if b.set.keywords[name] || b.set.keywords[target] {
			continue
		}

		callType := models.CallDirect
		if strings.ContainsAny(target, ".:>") {
			callType = models.CallVirtual
		}

		b.g.calls = append(b.g.calls, models.FunctionCall{
			ID:             b.ids.nextCall(),
			CallerName:     b.symbolName,
			TargetFunction: name,
			LineNumber:     lineNo,
			ColumnNumber:   uint32(m[2]) + 1,
			CallType:       callType,
		})
		if blk := b.blockByID(blockID); blk != nil {
			blk.Calls = append(blk.Calls, name)
		}
	}
}

// extractGuard pulls the guard expression from parenthesized syntax
// ("if (x > 0) {") or colon-delimited syntax ("if x > 0:").
func extractGuard(line string) string {
	trimmed := strings.TrimSpace(line)

	// Colon syntax first, so "if check(x):" yields the whole expression
	// rather than the argument of its first call.
	if strings.HasSuffix(trimmed, ":") {
		if space := strings.Index(trimmed, " "); space > 0 {
			return strings.TrimSpace(trimmed[space+1 : len(trimmed)-1])
		}
		return ""
	}

	if open := strings.Index(line, "("); open >= 0 {
		depth := 0
		for i := open; i < len(line); i++ {
			switch line[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return strings.TrimSpace(line[open+1 : i])
				}
			}
		}
		return strings.TrimSpace(line[open+1:])
	}
	return ""
}

func (b *patternBuilder) newBlock(bt models.BlockType, start, end uint32) string {
	id := b.ids.nextBlock()
	b.g.blocks = append(b.g.blocks, models.Block{
		ID:         id,
		SymbolName: b.symbolName,
		Type:       bt,
		StartLine:  start,
		EndLine:    end,
		Complexity: blockComplexity(bt),
	})
	return id
}

func (b *patternBuilder) addEdge(from, to string, et models.FlowEdgeType) {
	b.g.edges = append(b.g.edges, models.FlowEdge{From: from, To: to, Type: et})
}

func (b *patternBuilder) blockByID(id string) *models.Block {
	for i := range b.g.blocks {
		if b.g.blocks[i].ID == id {
			return &b.g.blocks[i]
		}
	}
	return nil
}

func (b *patternBuilder) setCondition(id, condition string) {
	if blk := b.blockByID(id); blk != nil {
		blk.Condition = condition
	}
}

func (b *patternBuilder) setCode(id, code string) {
	if blk := b.blockByID(id); blk != nil {
		blk.Code = code
	}
}

func (b *patternBuilder) setLoopType(id string, lt models.LoopType) {
	if blk := b.blockByID(id); blk != nil {
		blk.LoopType = lt
	}
}
