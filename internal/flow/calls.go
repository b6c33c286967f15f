package flow

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// recordCall appends a FunctionCall for a call expression node and tags the
// containing block so conditional/loop/try context is queryable later.
func (b *astBuilder) recordCall(node *sitter.Node, blockID string) {
	callee := calleeNode(node)
	target := strings.TrimSpace(parser.GetNodeText(callee, b.source))
	if target == "" {
		target = strings.TrimSpace(parser.GetNodeText(node, b.source))
	}
	// Keep only the name portion for member chains.
	name := target
	if idx := strings.LastIndexAny(name, ".:>"); idx >= 0 && idx < len(name)-1 {
		name = name[idx+1:]
	}
	if name == "" {
		return
	}

	call := models.FunctionCall{
		ID:             b.ids.nextCall(),
		CallerName:     b.symbolName,
		TargetFunction: name,
		LineNumber:     node.StartPoint().Row + 1,
		ColumnNumber:   node.StartPoint().Column + 1,
		CallType:       classifyCall(callee, target, node, b.source),
		IsConditional:  b.condDepth > 0,
		IsInLoop:       b.loopDepth > 0,
		IsInTryCatch:   b.tryDepth > 0,
	}
	b.g.calls = append(b.g.calls, call)

	if blk := b.blockByID(blockID); blk != nil {
		blk.Calls = append(blk.Calls, name)
	}
}

// calleeNode returns the function part of a call expression, best-effort.
func calleeNode(node *sitter.Node) *sitter.Node {
	for _, field := range []string{"function", "name", "method"} {
		if c := node.ChildByFieldName(field); c != nil {
			return c
		}
	}
	return node.NamedChild(0)
}

// classifyCall judges the invocation mechanism from syntax alone: member or
// pointer access reads as virtual, a generic argument list as template, a
// lambda literal callee as lambda, pointer-to-member syntax as a function
// pointer, anything else as direct.
func classifyCall(callee *sitter.Node, calleeText string, node *sitter.Node, source []byte) models.CallType {
	if callee != nil {
		switch callee.Type() {
		case "lambda", "lambda_expression", "arrow_function", "func_literal", "closure_expression":
			return models.CallLambda
		}
	}
	if strings.Contains(calleeText, "::*") || strings.Contains(calleeText, "(*") {
		return models.CallFunctionPointer
	}
	if node.ChildByFieldName("type_arguments") != nil {
		return models.CallTemplate
	}
	if strings.Contains(calleeText, "<") && strings.Contains(calleeText, ">") {
		return models.CallTemplate
	}
	if strings.Contains(calleeText, "->") || strings.Contains(calleeText, ".") {
		return models.CallVirtual
	}
	return models.CallDirect
}
