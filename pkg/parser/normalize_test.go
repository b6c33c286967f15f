package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNodeType(t *testing.T) {
	tests := []struct {
		lang     Language
		nodeType string
		want     Construct
	}{
		{LangGo, "if_statement", ConstructIf},
		{LangGo, "expression_switch_statement", ConstructSwitch},
		{LangGo, "type_switch_statement", ConstructSwitch},
		{LangGo, "select_statement", ConstructSwitch},
		{LangRust, "match_expression", ConstructSwitch},
		{LangRust, "loop_expression", ConstructWhile},
		{LangRust, "if_let_expression", ConstructIf},
		{LangPython, "elif_clause", ConstructIf},
		{LangPython, "raise_statement", ConstructThrow},
		{LangRuby, "unless", ConstructIf},
		{LangRuby, "until", ConstructWhile},
		{LangJava, "enhanced_for_statement", ConstructFor},
		{LangCSharp, "foreach_statement", ConstructFor},
		{LangCPP, "for_range_loop", ConstructFor},
		{LangJavaScript, "for_in_statement", ConstructFor},
		{LangBash, "case_statement", ConstructSwitch},

		// Common table applies when no language override matches.
		{LangJava, "while_statement", ConstructWhile},
		{LangC, "compound_statement", ConstructCompound},

		// Unknown node types descend unchanged.
		{LangGo, "binary_expression", ConstructOther},
		{LangUnknown, "if_statement", ConstructIf},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang)+"/"+tt.nodeType, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNodeType(tt.lang, tt.nodeType))
		})
	}
}

func TestConstructString(t *testing.T) {
	assert.Equal(t, "if_statement", ConstructIf.String())
	assert.Equal(t, "switch_statement", ConstructSwitch.String())
	assert.Equal(t, "other", ConstructOther.String())
}
