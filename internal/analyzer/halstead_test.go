package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

func measureGoFunction(t *testing.T, src string) *haltest {
	t.Helper()
	p := parser.New()
	t.Cleanup(p.Close)

	result, err := p.Parse([]byte(src), parser.LangGo, "main.go")
	require.NoError(t, err)
	fns := parser.GetFunctions(result)
	require.NotEmpty(t, fns)

	counter := newHalsteadCounter()
	return &haltest{
		metrics: counter.measure(fns[0].Body, result.Source),
		counter: counter,
	}
}

type haltest struct {
	metrics *models.HalsteadMetrics
	counter *halsteadCounter
}

func TestHalsteadMeasureSimpleFunction(t *testing.T) {
	got := measureGoFunction(t, `package p

func add(a int, b int) int {
	return a + b
}
`)
	m := got.metrics

	require.NotNil(t, m)
	assert.Greater(t, m.OperatorsUnique, uint32(0))
	assert.Greater(t, m.OperandsUnique, uint32(0))
	assert.Equal(t, m.OperatorsUnique+m.OperandsUnique, m.Vocabulary)
	assert.Equal(t, m.OperatorsTotal+m.OperandsTotal, m.Length)
	assert.Greater(t, m.Volume, 0.0)

	// "a" and "b" read as operands, "+" and "return" as operators.
	assert.Contains(t, got.counter.operands, "a")
	assert.Contains(t, got.counter.operands, "b")
	assert.Contains(t, got.counter.operators, "+")
	assert.Contains(t, got.counter.operators, "return")
}

func TestHalsteadRepeatedOperandGrowsTotalNotUnique(t *testing.T) {
	once := measureGoFunction(t, `package p

func f(x int) int {
	return x
}
`)
	thrice := measureGoFunction(t, `package p

func f(x int) int {
	return x + x + x
}
`)

	assert.Equal(t, 1, once.counter.operands["x"])
	assert.Equal(t, 3, thrice.counter.operands["x"])
	assert.Greater(t, thrice.metrics.OperandsTotal, once.metrics.OperandsTotal)
}

func TestHalsteadMeasureResetsBetweenCalls(t *testing.T) {
	p := parser.New()
	defer p.Close()

	result, err := p.Parse([]byte(`package p

func f(x int) int {
	return x * 2
}
`), parser.LangGo, "main.go")
	require.NoError(t, err)
	fns := parser.GetFunctions(result)
	require.NotEmpty(t, fns)

	counter := newHalsteadCounter()
	first := counter.measure(fns[0].Body, result.Source)
	second := counter.measure(fns[0].Body, result.Source)

	assert.Equal(t, first.Length, second.Length)
	assert.Equal(t, first.Vocabulary, second.Vocabulary)
}

func TestHalsteadTokenClassification(t *testing.T) {
	assert.True(t, isOperator("binary_expression", "a + b"))
	assert.True(t, isOperator("identifier", "defer"))
	assert.True(t, isOperator("+", "+"))
	assert.False(t, isOperator("identifier", "total"))

	assert.True(t, isOperand("identifier", "total"))
	assert.True(t, isOperand("integer_literal", "42"))
	assert.False(t, isOperand("block", "{}"))
	assert.False(t, isOperand("identifier", "if"))
	assert.False(t, isOperand("comment", "// note"))
}
