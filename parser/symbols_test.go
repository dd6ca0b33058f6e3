package parser_test

import (
	"testing"

	"github.com/r5by/rv32i-toolchain/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTable_DefineAndGet(t *testing.T) {
	st := parser.NewSymbolTable()
	require.NoError(t, st.Define("loop", parser.SymbolLabel, 0x80100, parser.Position{Filename: "t.s", Line: 1}))

	v, err := st.Get("loop")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80100), v)
}

func TestSymbolTable_DuplicateDefineFails(t *testing.T) {
	st := parser.NewSymbolTable()
	pos := parser.Position{Filename: "t.s", Line: 1}
	require.NoError(t, st.Define("loop", parser.SymbolLabel, 0x80100, pos))

	err := st.Define("loop", parser.SymbolLabel, 0x80104, pos)
	require.Error(t, err)
}

func TestSymbolTable_ForwardReferenceThenDefine(t *testing.T) {
	st := parser.NewSymbolTable()
	refPos := parser.Position{Filename: "t.s", Line: 1}
	st.Reference("target", refPos)

	sym, ok := st.Lookup("target")
	require.True(t, ok)
	assert.False(t, sym.Defined)
	assert.Equal(t, []parser.Position{refPos}, sym.References)

	require.NoError(t, st.Define("target", parser.SymbolLabel, 0x80200, parser.Position{Filename: "t.s", Line: 5}))

	v, err := st.Get("target")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80200), v)
}

func TestSymbolTable_GetUnknownSymbolFails(t *testing.T) {
	st := parser.NewSymbolTable()
	_, err := st.Get("nowhere")
	require.Error(t, err)
}

func TestSymbolTable_GetUndefinedSymbolFails(t *testing.T) {
	st := parser.NewSymbolTable()
	st.Reference("later", parser.Position{Filename: "t.s", Line: 1})
	_, err := st.Get("later")
	require.Error(t, err)
}

func TestSymbolTable_GetUndefinedSymbols(t *testing.T) {
	st := parser.NewSymbolTable()
	st.Reference("undef_one", parser.Position{Filename: "t.s", Line: 1})
	require.NoError(t, st.Define("defined", parser.SymbolLabel, 0x80100, parser.Position{Filename: "t.s", Line: 2}))

	undefined := st.GetUndefinedSymbols()
	require.Len(t, undefined, 1)
	assert.Equal(t, "undef_one", undefined[0].Name)
}

func TestSymbolTable_GetUnusedSymbols(t *testing.T) {
	st := parser.NewSymbolTable()
	require.NoError(t, st.Define("used", parser.SymbolLabel, 0x80100, parser.Position{Filename: "t.s", Line: 1}))
	require.NoError(t, st.Define("unused", parser.SymbolLabel, 0x80104, parser.Position{Filename: "t.s", Line: 2}))
	st.Reference("used", parser.Position{Filename: "t.s", Line: 3})

	unused := st.GetUnusedSymbols()
	require.Len(t, unused, 1)
	assert.Equal(t, "unused", unused[0].Name)
}

func TestSymbolTable_ResolveForwardReferences_AllDefined(t *testing.T) {
	st := parser.NewSymbolTable()
	st.Reference("target", parser.Position{Filename: "t.s", Line: 1})
	require.NoError(t, st.Define("target", parser.SymbolLabel, 0x80100, parser.Position{Filename: "t.s", Line: 2}))

	assert.NoError(t, st.ResolveForwardReferences())
}

func TestSymbolTable_ResolveForwardReferences_UndefinedFails(t *testing.T) {
	st := parser.NewSymbolTable()
	st.Reference("ghost", parser.Position{Filename: "t.s", Line: 3})

	err := st.ResolveForwardReferences()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestSymbolTable_ClearEmptiesTable(t *testing.T) {
	st := parser.NewSymbolTable()
	require.NoError(t, st.Define("loop", parser.SymbolLabel, 0x80100, parser.Position{Filename: "t.s", Line: 1}))
	st.Clear()

	_, ok := st.Lookup("loop")
	assert.False(t, ok)
}

// TestPreprocessor_UndefinedSymbolFailsProcess exercises forward-reference
// resolution through the public Process pipeline: a symbol referenced by
// a pseudo-instruction operand but never defined anywhere in the file
// surfaces as a Process error, not a silently wrong immediate.
func TestPreprocessor_UndefinedSymbolFailsProcess(t *testing.T) {
	pp := parser.NewPreprocessor(0x80100)
	_, err := pp.Process("li a0, ghost", "t.s")
	require.Error(t, err)
}

func TestPreprocessor_UnknownDirectiveWarns(t *testing.T) {
	pp := parser.NewPreprocessor(0x80100)
	_, err := pp.Process(".section .text\nnop", "t.s")
	require.NoError(t, err)

	warnings := pp.Errors().Warnings
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, ".section")
}
