// Package parser wraps tree-sitter for multi-language parsing and exposes
// the function-level views the flow engine consumes.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangTSX        Language = "tsx"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangBash       Language = "bash"
	LangUnknown    Language = "unknown"
)

// langSpec describes how to locate functions in one language's grammar.
type langSpec struct {
	grammar       func() *sitter.Language
	functionTypes []string
	bodyFields    []string
}

var langSpecs = map[Language]langSpec{
	LangGo: {
		grammar:       golang.GetLanguage,
		functionTypes: []string{"function_declaration", "method_declaration"},
		bodyFields:    []string{"body"},
	},
	LangRust: {
		grammar:       rust.GetLanguage,
		functionTypes: []string{"function_item"},
		bodyFields:    []string{"body"},
	},
	LangPython: {
		grammar:       python.GetLanguage,
		functionTypes: []string{"function_definition"},
		bodyFields:    []string{"body"},
	},
	LangTypeScript: {
		grammar:       typescript.GetLanguage,
		functionTypes: []string{"function_declaration", "function", "arrow_function", "method_definition"},
		bodyFields:    []string{"body"},
	},
	LangTSX: {
		grammar:       tsx.GetLanguage,
		functionTypes: []string{"function_declaration", "function", "arrow_function", "method_definition"},
		bodyFields:    []string{"body"},
	},
	LangJavaScript: {
		grammar:       javascript.GetLanguage,
		functionTypes: []string{"function_declaration", "function", "arrow_function", "method_definition"},
		bodyFields:    []string{"body"},
	},
	LangJava: {
		grammar:       java.GetLanguage,
		functionTypes: []string{"method_declaration", "constructor_declaration"},
		bodyFields:    []string{"body", "block"},
	},
	LangC: {
		grammar:       c.GetLanguage,
		functionTypes: []string{"function_definition"},
		bodyFields:    []string{"body"},
	},
	LangCPP: {
		grammar:       cpp.GetLanguage,
		functionTypes: []string{"function_definition"},
		bodyFields:    []string{"body"},
	},
	LangCSharp: {
		grammar:       csharp.GetLanguage,
		functionTypes: []string{"method_declaration", "constructor_declaration"},
		bodyFields:    []string{"body", "block"},
	},
	LangRuby: {
		grammar:       ruby.GetLanguage,
		functionTypes: []string{"method", "singleton_method"},
		bodyFields:    []string{"body", "body_statement"},
	},
	LangPHP: {
		grammar:       php.GetLanguage,
		functionTypes: []string{"function_definition", "method_declaration"},
		bodyFields:    []string{"body"},
	},
	LangBash: {
		grammar:       bash.GetLanguage,
		functionTypes: []string{"function_definition"},
		bodyFields:    []string{"body"},
	},
}

// Parser wraps a tree-sitter parser for multi-language parsing.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains a parsed tree and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// ParseFile parses a source file, detecting its language from the path.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, fmt.Errorf("unsupported language for file: %s", path)
	}

	return p.Parse(source, lang, path)
}

// Parse parses source code with an explicit language.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	tsLang, err := GrammarFor(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// GrammarFor returns the tree-sitter grammar for a language, or an error
// when no grammar is registered (callers fall back to pattern analysis).
func GrammarFor(lang Language) (*sitter.Language, error) {
	spec, ok := langSpecs[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return spec.grammar(), nil
}

// HasGrammar reports whether a tree-sitter grammar is registered for lang.
func HasGrammar(lang Language) bool {
	_, ok := langSpecs[lang]
	return ok
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	base := strings.ToLower(filepath.Base(path))
	if base == "dockerfile" {
		return LangBash
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LangGo
	case ".rs":
		return LangRust
	case ".py", ".pyw", ".pyi":
		return LangPython
	case ".ts":
		return LangTypeScript
	case ".tsx", ".jsx":
		return LangTSX
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".java":
		return LangJava
	case ".c", ".h":
		return LangC
	case ".cpp", ".cc", ".cxx", ".hpp", ".hxx":
		return LangCPP
	case ".cs":
		return LangCSharp
	case ".rb":
		return LangRuby
	case ".php":
		return LangPHP
	case ".sh", ".bash":
		return LangBash
	default:
		return LangUnknown
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor visits AST nodes; returning false stops descent.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the tree depth-first, calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}
	if !visitor(node, source) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node. Returns empty string if
// node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FunctionNode is one extracted function or method definition.
type FunctionNode struct {
	Name       string
	StartLine  uint32
	EndLine    uint32
	Parameters int
	Node       *sitter.Node
	Body       *sitter.Node
}

// GetFunctions extracts all function definitions from parsed code.
func GetFunctions(result *ParseResult) []FunctionNode {
	spec, ok := langSpecs[result.Language]
	if !ok {
		return nil
	}

	funcTypes := make(map[string]bool, len(spec.functionTypes))
	for _, t := range spec.functionTypes {
		funcTypes[t] = true
	}

	var functions []FunctionNode
	Walk(result.Tree.RootNode(), result.Source, func(node *sitter.Node, source []byte) bool {
		if funcTypes[node.Type()] {
			functions = append(functions, extractFunction(node, source, spec, result.Language))
		}
		return true
	})
	return functions
}

// extractFunction pulls name, lines, body and parameter count from one
// function definition node.
func extractFunction(node *sitter.Node, source []byte, spec langSpec, lang Language) FunctionNode {
	fn := FunctionNode{
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
		Node:      node,
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		fn.Name = GetNodeText(nameNode, source)
	} else if lang == LangC || lang == LangCPP {
		// C/C++ bury the name inside the declarator chain.
		if declNode := node.ChildByFieldName("declarator"); declNode != nil {
			if nameNode := declNode.ChildByFieldName("declarator"); nameNode != nil {
				fn.Name = GetNodeText(nameNode, source)
			}
		}
	}

	for _, field := range spec.bodyFields {
		if fn.Body = node.ChildByFieldName(field); fn.Body != nil {
			break
		}
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.ChildCount()) {
			if params.Child(i).IsNamed() {
				fn.Parameters++
			}
		}
	}

	return fn
}
