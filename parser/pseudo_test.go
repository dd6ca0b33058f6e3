package parser_test

import (
	"testing"

	"github.com/r5by/rv32i-toolchain/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processOne(t *testing.T, source string) []parser.TranslatableLine {
	t.Helper()
	pp := parser.NewPreprocessor(0x80100)
	lines, err := pp.Process(source, "t.s")
	require.NoError(t, err)
	return lines
}

func TestExpandPseudo_Nop(t *testing.T) {
	lines := processOne(t, "nop")
	require.Len(t, lines, 1)
	assert.Equal(t, "addi", lines[0].Mnemonic)
	assert.Equal(t, "x0, x0, 0", lines[0].OperandsRaw)
}

func TestExpandPseudo_Ret(t *testing.T) {
	lines := processOne(t, "ret")
	require.Len(t, lines, 1)
	assert.Equal(t, "jalr", lines[0].Mnemonic)
	assert.Equal(t, "x0, ra, 0", lines[0].OperandsRaw)
}

func TestExpandPseudo_Mv(t *testing.T) {
	lines := processOne(t, "mv a0, a1")
	require.Len(t, lines, 1)
	assert.Equal(t, "addi", lines[0].Mnemonic)
	assert.Equal(t, "a0, a1, 0", lines[0].OperandsRaw)
}

func TestExpandPseudo_J(t *testing.T) {
	lines := processOne(t, "j target\ntarget:")
	require.Len(t, lines, 1)
	assert.Equal(t, "jal", lines[0].Mnemonic)
	assert.Equal(t, "x0, target", lines[0].OperandsRaw)
}

// TestExpandPseudo_LiFitsAddi covers the single-instruction path: any value
// in [-2048, 2047] needs no lui, just an addi against x0.
func TestExpandPseudo_LiFitsAddi(t *testing.T) {
	lines := processOne(t, "li a0, 2047")
	require.Len(t, lines, 1)
	assert.Equal(t, "addi", lines[0].Mnemonic)
	assert.Equal(t, "a0, x0, 2047", lines[0].OperandsRaw)
}

func TestExpandPseudo_LiBoundaryJustOverflows(t *testing.T) {
	lines := processOne(t, "li a0, 2048")
	require.Len(t, lines, 2)
	assert.Equal(t, "lui", lines[0].Mnemonic)
	assert.Equal(t, "addi", lines[1].Mnemonic)
}

// TestExpandPseudo_LiLargeValue exercises the lui+addi split with the
// +0x800 rounding correction: 0x12345ABC's low 12 bits (0xABC) have their
// sign bit set, so hi20 is rounded up by one to 0x12346 and the addi's
// sign-extended -0x544 recombines with it to the original value.
func TestExpandPseudo_LiLargeValue(t *testing.T) {
	lines := processOne(t, "li a0, 0x12345ABC")
	require.Len(t, lines, 2)
	assert.Equal(t, "lui", lines[0].Mnemonic)
	assert.Equal(t, "a0, 0x12346", lines[0].OperandsRaw)
	assert.Equal(t, "addi", lines[1].Mnemonic)
	assert.Equal(t, "a0, a0, -1348", lines[1].OperandsRaw)
}

// TestExpandPseudo_LiSmallLowBits confirms the non-rounded case: when the
// low 12 bits don't carry the sign bit, hi20 is exactly value>>12.
func TestExpandPseudo_LiSmallLowBits(t *testing.T) {
	lines := processOne(t, "li a0, 0x12345000")
	require.Len(t, lines, 2)
	assert.Equal(t, "a0, 0x12345", lines[0].OperandsRaw)
	assert.Equal(t, "a0, a0, 0", lines[1].OperandsRaw)
}

func TestExpandPseudo_La(t *testing.T) {
	lines := processOne(t, ".equ buf, 0x20000\nla a0, buf")
	require.Len(t, lines, 2)
	assert.Equal(t, "lui", lines[0].Mnemonic)
	assert.Equal(t, "addi", lines[1].Mnemonic)
}

func TestExpandPseudo_MvWrongOperandCount(t *testing.T) {
	pp := parser.NewPreprocessor(0x80100)
	_, err := pp.Process("mv a0", "t.s")
	require.Error(t, err)
}

func TestExpandPseudo_UnknownMnemonicPassesThrough(t *testing.T) {
	lines := processOne(t, "add a0, a1, a2")
	require.Len(t, lines, 1)
	assert.Equal(t, "add", lines[0].Mnemonic)
}
