package flow

import (
	"regexp"

	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// linePattern matches one control construct at the start of a line.
type linePattern struct {
	name string
	re   *regexp.Regexp
}

// patternSet is one language's ordered fallback patterns plus the reserved
// words that must never be misread as call targets.
type patternSet struct {
	patterns []linePattern
	keywords map[string]bool
}

// callRe matches call-like syntax: bare identifiers, member access with
// dots, C++ scope or arrow access, immediately followed by an open paren.
var callRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*(?:(?:\.|::|->)[A-Za-z_][A-Za-z0-9_]*)*)\s*\(`)

func keywordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// cStylePatterns covers C, C++, Java, C#, Go, Rust and the JS family, which
// share brace/paren conditional syntax.
func cStylePatterns(extra ...linePattern) []linePattern {
	base := []linePattern{
		{"if", regexp.MustCompile(`^\s*(?:\}\s*)?(?:else\s+)?if\b`)},
		{"while", regexp.MustCompile(`^\s*(?:\}\s*)?while\b`)},
		{"for", regexp.MustCompile(`^\s*(?:\}\s*)?for\b`)},
		{"switch", regexp.MustCompile(`^\s*(?:\}\s*)?switch\b`)},
		{"try", regexp.MustCompile(`^\s*(?:\}\s*)?try\b`)},
		{"catch", regexp.MustCompile(`^\s*(?:\}\s*)?catch\b`)},
		{"return", regexp.MustCompile(`^\s*return\b`)},
		{"throw", regexp.MustCompile(`^\s*throw\b`)},
	}
	return append(extra, base...)
}

var builtinPatternSets = map[parser.Language]patternSet{
	parser.LangC: {
		patterns: cStylePatterns(),
		keywords: keywordSet("if", "while", "for", "switch", "return", "sizeof"),
	},
	parser.LangCPP: {
		patterns: cStylePatterns(),
		keywords: keywordSet("if", "while", "for", "switch", "catch", "return", "throw", "sizeof", "static_cast", "dynamic_cast", "reinterpret_cast", "const_cast", "new", "delete"),
	},
	parser.LangJava: {
		patterns: cStylePatterns(),
		keywords: keywordSet("if", "while", "for", "switch", "catch", "return", "throw", "new", "synchronized"),
	},
	parser.LangCSharp: {
		patterns: cStylePatterns(
			linePattern{"for", regexp.MustCompile(`^\s*foreach\b`)},
		),
		keywords: keywordSet("if", "while", "for", "foreach", "switch", "catch", "return", "throw", "new", "lock", "using", "nameof", "typeof"),
	},
	parser.LangGo: {
		patterns: cStylePatterns(
			linePattern{"switch", regexp.MustCompile(`^\s*select\b`)},
		),
		keywords: keywordSet("if", "for", "switch", "select", "return", "go", "defer", "func", "make", "new", "len", "cap", "append", "panic"),
	},
	parser.LangRust: {
		patterns: []linePattern{
			{"if", regexp.MustCompile(`^\s*(?:\}\s*)?(?:else\s+)?if\b`)},
			{"while", regexp.MustCompile(`^\s*(?:\}\s*)?(?:while|loop)\b`)},
			{"for", regexp.MustCompile(`^\s*(?:\}\s*)?for\b`)},
			{"switch", regexp.MustCompile(`^\s*(?:\}\s*)?match\b`)},
			{"return", regexp.MustCompile(`^\s*return\b`)},
		},
		keywords: keywordSet("if", "while", "loop", "for", "match", "return", "fn", "let", "Some", "Ok", "Err", "None", "vec"),
	},
	parser.LangTypeScript: {
		patterns: cStylePatterns(),
		keywords: keywordSet("if", "while", "for", "switch", "catch", "return", "throw", "new", "typeof", "function", "await"),
	},
	parser.LangTSX: {
		patterns: cStylePatterns(),
		keywords: keywordSet("if", "while", "for", "switch", "catch", "return", "throw", "new", "typeof", "function", "await"),
	},
	parser.LangJavaScript: {
		patterns: cStylePatterns(),
		keywords: keywordSet("if", "while", "for", "switch", "catch", "return", "throw", "new", "typeof", "function", "await"),
	},
	parser.LangPython: {
		patterns: []linePattern{
			{"if", regexp.MustCompile(`^\s*(?:if|elif)\b`)},
			{"while", regexp.MustCompile(`^\s*while\b`)},
			{"for", regexp.MustCompile(`^\s*for\b`)},
			{"switch", regexp.MustCompile(`^\s*match\b`)},
			{"try", regexp.MustCompile(`^\s*try\b`)},
			{"catch", regexp.MustCompile(`^\s*except\b`)},
			{"return", regexp.MustCompile(`^\s*return\b`)},
			{"throw", regexp.MustCompile(`^\s*raise\b`)},
		},
		keywords: keywordSet("if", "elif", "while", "for", "match", "try", "except", "return", "raise", "print", "len", "range", "isinstance", "super", "str", "int", "float", "list", "dict", "set", "tuple", "type"),
	},
	parser.LangRuby: {
		patterns: []linePattern{
			{"if", regexp.MustCompile(`^\s*(?:if|elsif|unless)\b`)},
			{"while", regexp.MustCompile(`^\s*(?:while|until)\b`)},
			{"for", regexp.MustCompile(`^\s*for\b`)},
			{"switch", regexp.MustCompile(`^\s*case\b`)},
			{"try", regexp.MustCompile(`^\s*begin\b`)},
			{"catch", regexp.MustCompile(`^\s*rescue\b`)},
			{"return", regexp.MustCompile(`^\s*return\b`)},
			{"throw", regexp.MustCompile(`^\s*raise\b`)},
		},
		keywords: keywordSet("if", "elsif", "unless", "while", "until", "for", "case", "begin", "rescue", "return", "raise", "puts", "require", "lambda", "proc"),
	},
	parser.LangPHP: {
		patterns: cStylePatterns(
			linePattern{"for", regexp.MustCompile(`^\s*foreach\b`)},
			linePattern{"if", regexp.MustCompile(`^\s*elseif\b`)},
		),
		keywords: keywordSet("if", "elseif", "while", "for", "foreach", "switch", "catch", "return", "throw", "echo", "isset", "unset", "empty", "array", "new"),
	},
	parser.LangBash: {
		patterns: []linePattern{
			{"if", regexp.MustCompile(`^\s*(?:if|elif)\b`)},
			{"while", regexp.MustCompile(`^\s*(?:while|until)\b`)},
			{"for", regexp.MustCompile(`^\s*for\b`)},
			{"switch", regexp.MustCompile(`^\s*case\b`)},
			{"return", regexp.MustCompile(`^\s*return\b`)},
		},
		keywords: keywordSet("if", "elif", "while", "until", "for", "case", "return", "echo", "test"),
	},
}

// blockTypeForPattern maps a pattern name to the emitted block type.
func blockTypeForPattern(name string) models.BlockType {
	switch name {
	case "if":
		return models.BlockConditional
	case "while", "for":
		return models.BlockLoop
	case "switch":
		return models.BlockSwitch
	case "try":
		return models.BlockTry
	case "catch":
		return models.BlockCatch
	case "return":
		return models.BlockReturn
	case "throw":
		return models.BlockThrow
	default:
		return models.BlockBasic
	}
}

// loopTypeForPattern maps a loop pattern name to the concrete loop kind.
func loopTypeForPattern(name string, lang parser.Language) models.LoopType {
	if name == "while" {
		return models.LoopWhile
	}
	if lang == parser.LangPython || lang == parser.LangRuby || lang == parser.LangBash {
		return models.LoopForIn
	}
	return models.LoopFor
}
