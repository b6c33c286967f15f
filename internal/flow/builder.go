// Package flow builds control flow graphs from syntax trees or raw source
// text and derives reachability, path and complexity properties from them.
package flow

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// graph is the raw output shared by both builders.
type graph struct {
	blocks []models.Block
	edges  []models.FlowEdge
	calls  []models.FunctionCall
}

// astBuilder walks a function body subtree and emits blocks, edges and
// calls. The current block id is threaded through visit as a value; the
// builder itself only accumulates output and traversal context counters.
type astBuilder struct {
	g          graph
	ids        *idGen
	source     []byte
	lang       parser.Language
	symbolName string
	exitID     string

	condDepth int
	loopDepth int
	tryDepth  int
}

// buildFromAST constructs a CFG for one function body. A nil body still
// yields a valid degenerate graph of entry and exit connected by one edge.
func buildFromAST(body *sitter.Node, sym models.SymbolInfo, source []byte, lang parser.Language, ids *idGen) graph {
	b := &astBuilder{
		ids:        ids,
		source:     source,
		lang:       lang,
		symbolName: sym.Name,
	}

	entry := b.newBlock(models.BlockEntry, sym.Line, sym.Line, "")
	if body == nil {
		exit := b.exitBlock(sym.EndLine)
		b.addEdge(entry, exit, models.FlowEdgeSequential)
		return b.g
	}

	current := b.visit(body, entry, "")

	exit := b.exitBlock(body.EndPoint().Row + 1)
	if current != exit && !b.hasEdge(current, exit) {
		b.addEdge(current, exit, models.FlowEdgeSequential)
	}
	return b.g
}

// visit dispatches on the normalized construct kind and returns the block id
// where sequential control continues.
func (b *astBuilder) visit(node *sitter.Node, current, parent string) string {
	if node == nil {
		return current
	}

	switch parser.NormalizeNodeType(b.lang, node.Type()) {
	case parser.ConstructIf:
		return b.visitConditional(node, current, parent)
	case parser.ConstructWhile, parser.ConstructFor, parser.ConstructDoWhile:
		return b.visitLoop(node, current, parent)
	case parser.ConstructSwitch:
		return b.visitSwitch(node, current, parent)
	case parser.ConstructTry:
		return b.visitTry(node, current, parent)
	case parser.ConstructReturn:
		return b.visitTerminal(node, current, models.BlockReturn, models.FlowEdgeReturn)
	case parser.ConstructThrow:
		return b.visitTerminal(node, current, models.BlockThrow, models.FlowEdgeThrow)
	case parser.ConstructCall:
		b.recordCall(node, current)
		return b.visitChildren(node, current, parent)
	case parser.ConstructCompound:
		return b.visitChildren(node, current, parent)
	default:
		// Unrecognized constructs thread control through their children so
		// connectivity is never broken.
		return b.visitChildren(node, current, parent)
	}
}

func (b *astBuilder) visitChildren(node *sitter.Node, current, parent string) string {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if !child.IsNamed() {
			continue
		}
		current = b.visit(child, current, parent)
	}
	return current
}

// visitConditional emits the conditional/branch/merge diamond. A missing
// else branch still gets a branch-false edge straight to the merge block.
func (b *astBuilder) visitConditional(node *sitter.Node, current, parent string) string {
	cond := b.newBlock(models.BlockConditional, node.StartPoint().Row+1, node.EndPoint().Row+1, parent)
	b.setCondition(cond, b.conditionText(node))
	b.addEdge(current, cond, models.FlowEdgeSequential)

	b.condDepth++
	defer func() { b.condDepth-- }()

	thenNode := b.branchNode(node, "consequence", "body")
	var thenExit string
	if thenNode != nil {
		thenEntry := b.newBlock(models.BlockBasic, thenNode.StartPoint().Row+1, thenNode.EndPoint().Row+1, cond)
		b.addEdge(cond, thenEntry, models.FlowEdgeBranchTrue)
		thenExit = b.visit(thenNode, thenEntry, cond)
	} else {
		thenExit = cond
	}

	merge := b.newBlock(models.BlockBasic, node.EndPoint().Row+1, node.EndPoint().Row+1, parent)

	if elseNode := b.branchNode(node, "alternative", "else_clause"); elseNode != nil {
		elseEntry := b.newBlock(models.BlockBasic, elseNode.StartPoint().Row+1, elseNode.EndPoint().Row+1, cond)
		b.addEdge(cond, elseEntry, models.FlowEdgeBranchFalse)
		elseExit := b.visit(elseNode, elseEntry, cond)
		b.addEdge(elseExit, merge, models.FlowEdgeSequential)
	} else {
		b.addEdge(cond, merge, models.FlowEdgeBranchFalse)
	}

	b.addEdge(thenExit, merge, models.FlowEdgeSequential)
	return merge
}

// visitLoop emits the loop header, body entered by branch-true, a loop-back
// edge from the body exit, and a post-loop block reached by branch-false.
func (b *astBuilder) visitLoop(node *sitter.Node, current, parent string) string {
	header := b.newBlock(models.BlockLoop, node.StartPoint().Row+1, node.EndPoint().Row+1, parent)
	b.setCondition(header, b.conditionText(node))
	b.setLoopType(header, classifyLoop(b.lang, node.Type()))
	b.addEdge(current, header, models.FlowEdgeSequential)

	b.loopDepth++
	bodyNode := b.branchNode(node, "body", "consequence")
	if bodyNode != nil {
		bodyEntry := b.newBlock(models.BlockBasic, bodyNode.StartPoint().Row+1, bodyNode.EndPoint().Row+1, header)
		b.addEdge(header, bodyEntry, models.FlowEdgeBranchTrue)
		bodyExit := b.visit(bodyNode, bodyEntry, header)
		b.addEdge(bodyExit, header, models.FlowEdgeLoopBack)
	}
	b.loopDepth--

	after := b.newBlock(models.BlockBasic, node.EndPoint().Row+1, node.EndPoint().Row+1, parent)
	b.addEdge(header, after, models.FlowEdgeBranchFalse)
	return after
}

// visitSwitch emits a single switch block and analyzes the body as one
// undifferentiated unit. Per-case branching is a known simplification.
func (b *astBuilder) visitSwitch(node *sitter.Node, current, parent string) string {
	sw := b.newBlock(models.BlockSwitch, node.StartPoint().Row+1, node.EndPoint().Row+1, parent)
	b.setCondition(sw, b.conditionText(node))
	b.addEdge(current, sw, models.FlowEdgeSequential)

	b.condDepth++
	defer func() { b.condDepth-- }()

	if bodyNode := b.branchNode(node, "body", ""); bodyNode != nil {
		return b.visit(bodyNode, sw, sw)
	}
	return b.visitChildren(node, sw, sw)
}

// visitTry emits the try block, catch blocks reached by exception edges, and
// an optional finally block. Control continues from whichever clause body
// finished last.
func (b *astBuilder) visitTry(node *sitter.Node, current, parent string) string {
	try := b.newBlock(models.BlockTry, node.StartPoint().Row+1, node.EndPoint().Row+1, parent)
	b.addEdge(current, try, models.FlowEdgeSequential)

	b.tryDepth++
	exit := try
	if bodyNode := b.branchNode(node, "body", ""); bodyNode != nil {
		exit = b.visit(bodyNode, try, try)
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "catch_clause", "except_clause", "catch", "rescue":
			catch := b.newBlock(models.BlockCatch, child.StartPoint().Row+1, child.EndPoint().Row+1, try)
			b.setExceptionTypes(catch, b.catchTypes(child))
			b.addEdge(try, catch, models.FlowEdgeException)
			exit = b.visit(childBody(child), catch, catch)
		}
	}
	b.tryDepth--

	if fin := b.branchNode(node, "finalizer", "finally_clause"); fin != nil {
		finally := b.newBlock(models.BlockFinally, fin.StartPoint().Row+1, fin.EndPoint().Row+1, try)
		b.addEdge(exit, finally, models.FlowEdgeSequential)
		return b.visit(childBody(fin), finally, finally)
	}

	return exit
}

// visitTerminal emits a return or throw block and connects it to the shared
// exit block with the matching edge type.
func (b *astBuilder) visitTerminal(node *sitter.Node, current string, bt models.BlockType, et models.FlowEdgeType) string {
	blk := b.newBlock(bt, node.StartPoint().Row+1, node.EndPoint().Row+1, "")
	b.setCode(blk, strings.TrimSpace(parser.GetNodeText(node, b.source)))
	b.addEdge(current, blk, models.FlowEdgeSequential)

	// Nested call expressions inside the returned value still count.
	b.collectCalls(node, blk)

	exit := b.exitBlock(node.EndPoint().Row + 1)
	b.addEdge(blk, exit, et)
	return blk
}

// collectCalls records every call expression under node against blockID
// without emitting further blocks.
func (b *astBuilder) collectCalls(node *sitter.Node, blockID string) {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if !child.IsNamed() {
			continue
		}
		if parser.NormalizeNodeType(b.lang, child.Type()) == parser.ConstructCall {
			b.recordCall(child, blockID)
		}
		b.collectCalls(child, blockID)
	}
}

// --- block and edge emission ---

func (b *astBuilder) newBlock(bt models.BlockType, start, end uint32, parent string) string {
	id := b.ids.nextBlock()
	b.g.blocks = append(b.g.blocks, models.Block{
		ID:            id,
		SymbolName:    b.symbolName,
		Type:          bt,
		StartLine:     start,
		EndLine:       end,
		ParentBlockID: parent,
		Complexity:    blockComplexity(bt),
	})
	if parent != "" {
		if p := b.blockByID(parent); p != nil {
			p.Children = append(p.Children, id)
		}
	}
	return id
}

// exitBlock finds or creates the function's single shared exit block.
func (b *astBuilder) exitBlock(line uint32) string {
	if b.exitID == "" {
		b.exitID = b.newBlock(models.BlockExit, line, line, "")
	}
	return b.exitID
}

func (b *astBuilder) addEdge(from, to string, et models.FlowEdgeType) {
	b.g.edges = append(b.g.edges, models.FlowEdge{From: from, To: to, Type: et})
}

func (b *astBuilder) hasEdge(from, to string) bool {
	for _, e := range b.g.edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

func (b *astBuilder) blockByID(id string) *models.Block {
	for i := range b.g.blocks {
		if b.g.blocks[i].ID == id {
			return &b.g.blocks[i]
		}
	}
	return nil
}

func (b *astBuilder) setCondition(id, condition string) {
	if condition == "" {
		return
	}
	if blk := b.blockByID(id); blk != nil {
		blk.Condition = condition
	}
}

func (b *astBuilder) setCode(id, code string) {
	if blk := b.blockByID(id); blk != nil {
		blk.Code = code
	}
}

func (b *astBuilder) setLoopType(id string, lt models.LoopType) {
	if blk := b.blockByID(id); blk != nil {
		blk.LoopType = lt
	}
}

func (b *astBuilder) setExceptionTypes(id string, types []string) {
	if len(types) == 0 {
		return
	}
	if blk := b.blockByID(id); blk != nil {
		blk.ExceptionTypes = types
	}
}

// --- node shape helpers (all best-effort; missing fields are omitted) ---

// conditionText extracts the guard expression of a control node.
func (b *astBuilder) conditionText(node *sitter.Node) string {
	for _, field := range []string{"condition", "value"} {
		if c := node.ChildByFieldName(field); c != nil {
			return strings.TrimSpace(parser.GetNodeText(c, b.source))
		}
	}
	// Ruby and some grammars have no condition field; use the first named
	// child when it is an expression rather than a block.
	if c := node.NamedChild(0); c != nil {
		t := c.Type()
		if t != "block" && t != "compound_statement" && t != "body_statement" && t != "statement_block" {
			return strings.TrimSpace(parser.GetNodeText(c, b.source))
		}
	}
	return ""
}

// branchNode looks a branch child up by field name, then by node type.
func (b *astBuilder) branchNode(node *sitter.Node, field, typeName string) *sitter.Node {
	if field != "" {
		if c := node.ChildByFieldName(field); c != nil {
			return c
		}
	}
	if typeName == "" {
		return nil
	}
	for i := range int(node.ChildCount()) {
		if node.Child(i).Type() == typeName {
			return node.Child(i)
		}
	}
	return nil
}

// childBody returns the body of a clause node, or the node itself when the
// grammar inlines statements directly.
func childBody(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if c := node.ChildByFieldName("body"); c != nil {
		return c
	}
	for _, t := range []string{"block", "compound_statement", "statement_block", "body_statement"} {
		for i := range int(node.ChildCount()) {
			if node.Child(i).Type() == t {
				return node.Child(i)
			}
		}
	}
	return node
}

// catchTypes extracts exception type names from a catch/except clause.
func (b *astBuilder) catchTypes(node *sitter.Node) []string {
	var types []string
	for _, field := range []string{"parameters", "type", "value"} {
		if c := node.ChildByFieldName(field); c != nil {
			types = append(types, strings.TrimSpace(parser.GetNodeText(c, b.source)))
		}
	}
	return types
}

// blockComplexity is the flat per-block weight used by path ranking.
func blockComplexity(bt models.BlockType) int {
	switch bt {
	case models.BlockLoop:
		return 2
	case models.BlockConditional, models.BlockSwitch:
		return 1
	default:
		return 0
	}
}

// classifyLoop maps a grammar node type to the concrete loop kind.
func classifyLoop(lang parser.Language, nodeType string) models.LoopType {
	switch nodeType {
	case "do_statement":
		return models.LoopDoWhile
	case "while_statement", "while_expression", "while", "until", "loop_expression":
		return models.LoopWhile
	case "for_range_loop", "enhanced_for_statement", "foreach_statement":
		return models.LoopRangeFor
	case "for_in_statement":
		if lang == parser.LangJavaScript || lang == parser.LangTypeScript || lang == parser.LangTSX {
			return models.LoopForOf
		}
		return models.LoopForIn
	case "for_statement", "for_expression", "for":
		if lang == parser.LangPython || lang == parser.LangRuby {
			return models.LoopForIn
		}
		return models.LoopFor
	default:
		return models.LoopFor
	}
}
