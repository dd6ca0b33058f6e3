package encoder

import (
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
)

// parseBType handles "mnemonic rs1, rs2, label-or-offset". The branch
// target is always evaluated to a PC-relative offset from this
// instruction's own address.
func parseBType(mnemonic string, operands []string, address uint32, filename string, line int, symtab *parser.SymbolTable) (isa.Instruction, error) {
	if len(operands) != 3 {
		return isa.Instruction{}, isa.NewError(isa.ParseError, "%s requires 3 operands, got %d", mnemonic, len(operands))
	}
	rs1, err := parseRegister(operands[0])
	if err != nil {
		return isa.Instruction{}, err
	}
	rs2, err := parseRegister(operands[1])
	if err != nil {
		return isa.Instruction{}, err
	}
	val, err := evalImmediate(operands[2], filename, line, symtab)
	if err != nil {
		return isa.Instruction{}, err
	}
	offset := val - int64(address)
	if err := checkSigned(offset, 13, mnemonic); err != nil {
		return isa.Instruction{}, err
	}
	if offset&1 != 0 {
		return isa.Instruction{}, isa.NewError(isa.ImmediateOutOfRange, "%s: branch offset %d is not 2-byte aligned", mnemonic, offset)
	}
	return isa.Instruction{Mnemonic: mnemonic, Address: address, Rs1: rs1, Rs2: rs2, HasImm: true,
		Imm: isa.Immediate{Abs: int32(val), PCRel: int32(offset)}}, nil
}

// encodeBType scatters the 13-bit signed offset: imm[12]->31, imm[10:5]->30:25,
// imm[4:1]->11:8, imm[11]->7. Bit 0 of the offset is always zero.
func encodeBType(mnemonic string, ins isa.Instruction) (uint32, error) {
	entry, ok := bTable[strings.ToLower(mnemonic)]
	if !ok {
		return 0, isa.NewError(isa.UnsupportedInstruction, "unsupported B-type instruction: %s", mnemonic)
	}
	off := uint32(ins.Imm.PCRel)
	bit12 := (off >> 12) & 0x1
	bits10_5 := (off >> 5) & 0x3f
	bits4_1 := (off >> 1) & 0xf
	bit11 := (off >> 11) & 0x1

	word := bit12<<31 |
		bits10_5<<25 |
		uint32(ins.Rs2)<<20 |
		uint32(ins.Rs1)<<15 |
		entry.funct3<<12 |
		bits4_1<<8 |
		bit11<<7 |
		entry.opcode
	return word, nil
}
