package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// operatorNodeTypes are node kinds whose presence counts as an operator.
var operatorNodeTypes = map[string]bool{
	"binary_expression": true, "binary_operator": true,
	"comparison_operator": true, "boolean_operator": true,
	"assignment_expression": true, "assignment_operator": true,
	"augmented_assignment": true, "compound_assignment": true,
	"unary_expression": true, "unary_operator": true,
	"update_expression": true, "logical_expression": true,
	"conditional_expression": true, "ternary_expression": true,
	"if_statement": true, "if_expression": true,
	"for_statement": true, "for_expression": true,
	"while_statement": true, "while_expression": true,
	"switch_statement": true, "match_expression": true,
	"try_statement": true, "catch_clause": true, "except_clause": true,
	"return_statement": true, "break_statement": true,
	"call_expression": true, "call": true, "method_call": true,
	"member_expression": true, "field_expression": true,
	"selector_expression": true, "subscript_expression": true,
	"index_expression": true,
}

// operatorSymbols are literal tokens that count as operators.
var operatorSymbols = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"=": true, "==": true, "!=": true, "<": true, ">": true,
	"<=": true, ">=": true, "&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "~": true,
	"<<": true, ">>": true, ">>>": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"++": true, "--": true, "?": true, ":": true,
	"=>": true, "->": true, ".": true, "::": true,
	"[": true, "]": true, "(": true, ")": true,
}

// operandNodeTypes are node kinds counted as operands.
var operandNodeTypes = map[string]bool{
	"identifier": true, "type_identifier": true, "field_identifier": true,
	"number": true, "integer": true, "integer_literal": true,
	"float": true, "float_literal": true,
	"string": true, "string_literal": true, "interpreted_string_literal": true,
	"raw_string_literal": true, "template_string": true,
	"character": true, "char_literal": true,
	"boolean": true, "true": true, "false": true,
	"nil": true, "null": true, "none": true, "undefined": true,
	"regex": true, "regular_expression": true,
}

// structuralNodeTypes never count as operands; they are scaffolding.
var structuralNodeTypes = map[string]bool{
	"source_file": true, "program": true, "module": true,
	"package_clause": true, "import_declaration": true, "import_statement": true,
	"function_declaration": true, "function_definition": true,
	"method_declaration": true, "class_declaration": true, "class_definition": true,
	"block": true, "statement_block": true, "compound_statement": true,
	"expression_statement": true,
	"comment":              true, "line_comment": true, "block_comment": true,
	"parameter_list": true, "parameters": true, "formal_parameters": true,
	"argument_list": true, "arguments": true,
	"type_annotation": true, "type_declaration": true,
	"variable_declaration": true, "short_var_declaration": true,
	"const_declaration": true, "let_declaration": true,
	"var_declaration": true, "lexical_declaration": true,
	"parenthesized_expression": true,
}

// keywordOperators are reserved words counted as operators across the
// supported languages.
var keywordOperators = map[string]bool{
	"if": true, "else": true, "for": true, "while": true,
	"switch": true, "case": true, "default": true,
	"break": true, "continue": true, "return": true,
	"try": true, "catch": true, "finally": true, "throw": true,
	"new": true, "delete": true, "typeof": true, "instanceof": true,
	"in": true, "of": true,
	"go": true, "defer": true, "select": true, "range": true,
	"func": true, "chan": true, "make": true, "append": true,
	"match": true, "loop": true, "async": true, "await": true,
	"elif": true, "except": true, "with": true, "as": true,
	"yield": true, "lambda": true, "and": true, "or": true, "not": true,
	"is": true, "raise": true, "pass": true,
}

// halsteadCounter accumulates operator and operand frequencies for one
// measurement. Not safe for concurrent use; Metrics owns one per instance
// and serializes access with its mutex.
type halsteadCounter struct {
	operators map[string]int
	operands  map[string]int
}

func newHalsteadCounter() *halsteadCounter {
	return &halsteadCounter{
		operators: make(map[string]int),
		operands:  make(map[string]int),
	}
}

// measure counts tokens under node and returns the derived metrics.
func (h *halsteadCounter) measure(node *sitter.Node, source []byte) *models.HalsteadMetrics {
	h.operators = make(map[string]int)
	h.operands = make(map[string]int)
	h.walk(node, source)

	var operatorsTotal, operandsTotal uint32
	for _, n := range h.operators {
		operatorsTotal += uint32(n)
	}
	for _, n := range h.operands {
		operandsTotal += uint32(n)
	}
	return models.NewHalsteadMetrics(
		uint32(len(h.operators)), uint32(len(h.operands)),
		operatorsTotal, operandsTotal,
	)
}

func (h *halsteadCounter) walk(node *sitter.Node, source []byte) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	text := parser.GetNodeText(node, source)

	if isOperator(nodeType, text) {
		h.operators[text]++
	} else if isOperand(nodeType, text) {
		h.operands[text]++
	}

	for i := range int(node.ChildCount()) {
		h.walk(node.Child(i), source)
	}
}

func isOperator(nodeType, text string) bool {
	return operatorNodeTypes[nodeType] || operatorSymbols[text] || keywordOperators[text]
}

func isOperand(nodeType, text string) bool {
	if operandNodeTypes[nodeType] {
		return true
	}
	if isOperator(nodeType, text) || len(text) == 0 {
		return false
	}
	return !structuralNodeTypes[nodeType]
}
