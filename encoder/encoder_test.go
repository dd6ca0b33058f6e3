package encoder_test

import (
	"testing"

	"github.com/r5by/rv32i-toolchain/encoder"
	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEncoder(symtab *parser.SymbolTable) *encoder.Encoder {
	if symtab == nil {
		symtab = parser.NewSymbolTable()
	}
	return encoder.NewEncoder(symtab, isa.DefaultDescriptor())
}

func line(mnemonic, operands string, address uint32) parser.TranslatableLine {
	return parser.TranslatableLine{
		Mnemonic:    mnemonic,
		OperandsRaw: operands,
		Address:     address,
		Pos:         parser.Position{Filename: "t.s", Line: 1},
	}
}

func TestEncodeLine_RType_Add(t *testing.T) {
	enc := newEncoder(nil)
	word, ins, err := enc.EncodeLine(line("add", "a0, a1, a2", 0x80100))
	require.NoError(t, err)
	assert.Equal(t, "add", ins.Mnemonic)
	assert.Equal(t, 10, ins.Rd)
	assert.Equal(t, 11, ins.Rs1)
	assert.Equal(t, 12, ins.Rs2)
	// add: funct7=0, rs2=12<<20, rs1=11<<15, funct3=0, rd=10<<7, opcode=0x33
	assert.Equal(t, uint32(12)<<20|uint32(11)<<15|uint32(10)<<7|0x33, word)
}

func TestEncodeLine_IType_Addi(t *testing.T) {
	enc := newEncoder(nil)
	word, ins, err := enc.EncodeLine(line("addi", "a0, zero, -1", 0x80100))
	require.NoError(t, err)
	assert.Equal(t, int32(-1), ins.Imm.Abs)
	// imm field is the low 12 bits of -1, i.e. all ones.
	assert.Equal(t, uint32(0xfff)<<20|uint32(10)<<7|0x13, word)
}

func TestEncodeLine_IType_Load(t *testing.T) {
	enc := newEncoder(nil)
	_, ins, err := enc.EncodeLine(line("lw", "a0, 4(sp)", 0x80100))
	require.NoError(t, err)
	assert.Equal(t, 10, ins.Rd)
	sp, _ := isa.LookupRegister("sp")
	assert.Equal(t, sp, ins.Rs1)
	assert.Equal(t, int32(4), ins.Imm.Abs)
}

func TestEncodeLine_SType_Store(t *testing.T) {
	enc := newEncoder(nil)
	_, ins, err := enc.EncodeLine(line("sw", "a0, 8(sp)", 0x80100))
	require.NoError(t, err)
	assert.Equal(t, 10, ins.Rd, "S-type reuses Rd as the source register")
	assert.Equal(t, int32(8), ins.Imm.Abs)
}

func TestEncodeLine_BType_UsesSymbolTable(t *testing.T) {
	symtab := parser.NewSymbolTable()
	require.NoError(t, symtab.Define("loop", parser.SymbolLabel, 0x80100, parser.Position{}))

	enc := newEncoder(symtab)
	_, ins, err := enc.EncodeLine(line("beq", "a0, a1, loop", 0x8010c))
	require.NoError(t, err)
	assert.Equal(t, int32(0x80100)-int32(0x8010c), ins.Imm.PCRel)
}

func TestEncodeLine_UType_Lui(t *testing.T) {
	enc := newEncoder(nil)
	_, ins, err := enc.EncodeLine(line("lui", "a0, 0x12345", 0x80100))
	require.NoError(t, err)
	assert.Equal(t, int32(0x12345), ins.Imm.Abs)
}

func TestEncodeLine_JType_OneOperandDefaultsToRA(t *testing.T) {
	symtab := parser.NewSymbolTable()
	require.NoError(t, symtab.Define("target", parser.SymbolLabel, 0x80200, parser.Position{}))

	enc := newEncoder(symtab)
	_, ins, err := enc.EncodeLine(line("jal", "target", 0x80100))
	require.NoError(t, err)
	ra, _ := isa.LookupRegister("ra")
	assert.Equal(t, ra, ins.Rd)
	assert.Equal(t, int32(0x80200)-int32(0x80100), ins.Imm.PCRel)
}

func TestEncodeLine_UnknownMnemonic(t *testing.T) {
	enc := newEncoder(nil)
	_, _, err := enc.EncodeLine(line("frobnicate", "a0, a1, a2", 0x80100))
	require.Error(t, err)
}

func TestEncodeLine_WrongOperandCount(t *testing.T) {
	enc := newEncoder(nil)
	_, _, err := enc.EncodeLine(line("add", "a0, a1", 0x80100))
	require.Error(t, err)
}

func TestEncodeLine_ImmediateOutOfRange(t *testing.T) {
	enc := newEncoder(nil)
	_, _, err := enc.EncodeLine(line("addi", "a0, a1, 4096", 0x80100))
	require.Error(t, err)
}

func TestEncodeProgram_StopsAtFirstError(t *testing.T) {
	enc := newEncoder(nil)
	lines := []parser.TranslatableLine{
		line("addi", "a0, zero, 1", 0x80100),
		line("bogus", "a0, a1, a2", 0x80104),
		line("addi", "a1, zero, 2", 0x80108),
	}
	_, _, err := enc.EncodeProgram(lines)
	require.Error(t, err)
}
