package parser

// Construct is the closed vocabulary of control constructs the flow builder
// dispatches on. Grammar-specific node types are mapped into it before
// dispatch so the builder stays language-agnostic.
type Construct int

const (
	ConstructOther Construct = iota
	ConstructIf
	ConstructWhile
	ConstructFor
	ConstructDoWhile
	ConstructSwitch
	ConstructTry
	ConstructReturn
	ConstructThrow
	ConstructCall
	ConstructCompound
)

// String returns the normalized node-type name for a construct.
func (c Construct) String() string {
	switch c {
	case ConstructIf:
		return "if_statement"
	case ConstructWhile:
		return "while_statement"
	case ConstructFor:
		return "for_statement"
	case ConstructDoWhile:
		return "do_statement"
	case ConstructSwitch:
		return "switch_statement"
	case ConstructTry:
		return "try_statement"
	case ConstructReturn:
		return "return_statement"
	case ConstructThrow:
		return "throw_statement"
	case ConstructCall:
		return "call_expression"
	case ConstructCompound:
		return "compound_statement"
	default:
		return "other"
	}
}

// commonConstructs covers node-type names shared across most grammars.
var commonConstructs = map[string]Construct{
	"if_statement":        ConstructIf,
	"if_expression":       ConstructIf,
	"conditional_expression": ConstructOther, // ternaries stay inline
	"while_statement":     ConstructWhile,
	"while_expression":    ConstructWhile,
	"for_statement":       ConstructFor,
	"for_expression":      ConstructFor,
	"do_statement":        ConstructDoWhile,
	"switch_statement":    ConstructSwitch,
	"try_statement":       ConstructTry,
	"return_statement":    ConstructReturn,
	"throw_statement":     ConstructThrow,
	"call_expression":     ConstructCall,
	"compound_statement":  ConstructCompound,
	"block":               ConstructCompound,
	"statement_block":     ConstructCompound,
}

// langConstructs holds per-language overrides and additions on top of the
// common table.
var langConstructs = map[Language]map[string]Construct{
	LangGo: {
		"expression_switch_statement": ConstructSwitch,
		"type_switch_statement":       ConstructSwitch,
		"select_statement":            ConstructSwitch,
	},
	LangRust: {
		"loop_expression":   ConstructWhile,
		"match_expression":  ConstructSwitch,
		"if_let_expression": ConstructIf,
		"macro_invocation":  ConstructCall,
	},
	LangPython: {
		"elif_clause":      ConstructIf,
		"match_statement":  ConstructSwitch,
		"raise_statement":  ConstructThrow,
		"with_statement":   ConstructCompound,
		"call":             ConstructCall,
	},
	LangRuby: {
		"if":               ConstructIf,
		"unless":           ConstructIf,
		"elsif":            ConstructIf,
		"while":            ConstructWhile,
		"until":            ConstructWhile,
		"for":              ConstructFor,
		"case":             ConstructSwitch,
		"begin":            ConstructTry,
		"return":           ConstructReturn,
		"method_call":      ConstructCall,
		"call":             ConstructCall,
		"body_statement":   ConstructCompound,
		"do_block":         ConstructCompound,
	},
	LangJava: {
		"enhanced_for_statement":   ConstructFor,
		"try_with_resources_statement": ConstructTry,
		"method_invocation":        ConstructCall,
	},
	LangCSharp: {
		"foreach_statement": ConstructFor,
		"switch_expression": ConstructSwitch,
		"invocation_expression": ConstructCall,
	},
	LangCPP: {
		"for_range_loop": ConstructFor,
	},
	LangTypeScript: {
		"for_in_statement": ConstructFor,
	},
	LangTSX: {
		"for_in_statement": ConstructFor,
	},
	LangJavaScript: {
		"for_in_statement": ConstructFor,
	},
	LangPHP: {
		"foreach_statement":          ConstructFor,
		"function_call_expression":   ConstructCall,
		"member_call_expression":     ConstructCall,
	},
	LangBash: {
		"c_style_for_statement": ConstructFor,
		"case_statement":        ConstructSwitch,
		"command":               ConstructCall,
	},
}

// NormalizeNodeType maps a grammar-specific node-type string to the closed
// construct vocabulary. Unrecognized node types map to ConstructOther, which
// the builder treats as "descend into children".
func NormalizeNodeType(lang Language, nodeType string) Construct {
	if overrides, ok := langConstructs[lang]; ok {
		if c, ok := overrides[nodeType]; ok {
			return c
		}
	}
	if c, ok := commonConstructs[nodeType]; ok {
		return c
	}
	return ConstructOther
}
