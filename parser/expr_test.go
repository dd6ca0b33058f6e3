package parser_test

import (
	"testing"

	"github.com/r5by/rv32i-toolchain/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, expr string, symtab *parser.SymbolTable) int64 {
	t.Helper()
	v, err := parser.EvaluateExpr(expr, "t.s", 1, symtab)
	require.NoError(t, err)
	return v
}

func TestEvaluateExpr_Arithmetic(t *testing.T) {
	assert.Equal(t, int64(7), eval(t, "3 + 4", nil))
	assert.Equal(t, int64(10), eval(t, "2 * 5", nil))
	assert.Equal(t, int64(2), eval(t, "7 / 3", nil))
	assert.Equal(t, int64(1), eval(t, "(3 - 4) + 2", nil))
}

func TestEvaluateExpr_Precedence(t *testing.T) {
	// multiplicative binds tighter than additive.
	assert.Equal(t, int64(14), eval(t, "2 + 3 * 4", nil))
}

func TestEvaluateExpr_BitwiseAndShift(t *testing.T) {
	assert.Equal(t, int64(0xf0), eval(t, "0xff & 0xf0", nil))
	assert.Equal(t, int64(0xff), eval(t, "0x0f | 0xf0", nil))
	assert.Equal(t, int64(0xf0), eval(t, "0xff ^ 0x0f", nil))
	assert.Equal(t, int64(16), eval(t, "1 << 4", nil))
	assert.Equal(t, int64(1), eval(t, "16 >> 4", nil))
}

func TestEvaluateExpr_UnaryOperators(t *testing.T) {
	assert.Equal(t, int64(-5), eval(t, "-5", nil))
	assert.Equal(t, int64(^int64(0)), eval(t, "~0", nil))
	assert.Equal(t, int64(1), eval(t, "!0", nil))
	assert.Equal(t, int64(0), eval(t, "!1", nil))
}

func TestEvaluateExpr_DivisionByZero(t *testing.T) {
	_, err := parser.EvaluateExpr("1 / 0", "t.s", 1, nil)
	require.Error(t, err)
}

func TestEvaluateExpr_TrailingTokens(t *testing.T) {
	_, err := parser.EvaluateExpr("1 2", "t.s", 1, nil)
	require.Error(t, err)
}

func TestEvaluateExpr_SymbolReference(t *testing.T) {
	symtab := parser.NewSymbolTable()
	require.NoError(t, symtab.Define("base", parser.SymbolConstant, 0x1000, parser.Position{}))
	assert.Equal(t, int64(0x1004), eval(t, "base + 4", symtab))
}

func TestEvaluateExpr_UndefinedSymbol(t *testing.T) {
	symtab := parser.NewSymbolTable()
	_, err := parser.EvaluateExpr("missing", "t.s", 1, symtab)
	require.Error(t, err)
}

// TestEvaluateExpr_RelocationPrefixes covers %hi/%lo/%pcrel_hi/%pcrel_lo:
// the pcrel_ prefixes apply the identical bit operation as the plain ones,
// and no caller restricts where in an instruction they appear.
func TestEvaluateExpr_RelocationPrefixes(t *testing.T) {
	assert.Equal(t, int64(0x12345), eval(t, "%hi(0x12345678)", nil))
	assert.Equal(t, int64(0x678), eval(t, "%lo(0x12345678)", nil))
	assert.Equal(t, int64(0x12345), eval(t, "%pcrel_hi(0x12345678)", nil))
	assert.Equal(t, int64(0x678), eval(t, "%pcrel_lo(0x12345678)", nil))
}

func TestEvaluateExpr_UnknownRelocationPrefix(t *testing.T) {
	_, err := parser.EvaluateExpr("%bogus(1)", "t.s", 1, nil)
	require.Error(t, err)
}

func TestEvaluateExpr_Parentheses(t *testing.T) {
	assert.Equal(t, int64(20), eval(t, "(2 + 3) * 4", nil))
}

func TestEvaluateExpr_NumericBases(t *testing.T) {
	assert.Equal(t, int64(255), eval(t, "0xff", nil))
	assert.Equal(t, int64(5), eval(t, "0b101", nil))
	assert.Equal(t, int64(8), eval(t, "0o10", nil))
	assert.Equal(t, int64(42), eval(t, "42", nil))
}
