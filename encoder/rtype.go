package encoder

import (
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
)

// parseRType handles "mnemonic rd, rs1, rs2".
func parseRType(mnemonic string, operands []string, address uint32) (isa.Instruction, error) {
	if len(operands) != 3 {
		return isa.Instruction{}, isa.NewError(isa.ParseError, "%s requires 3 operands, got %d", mnemonic, len(operands))
	}
	rd, err := parseRegister(operands[0])
	if err != nil {
		return isa.Instruction{}, err
	}
	rs1, err := parseRegister(operands[1])
	if err != nil {
		return isa.Instruction{}, err
	}
	rs2, err := parseRegister(operands[2])
	if err != nil {
		return isa.Instruction{}, err
	}
	return isa.Instruction{Mnemonic: mnemonic, Address: address, Rd: rd, Rs1: rs1, Rs2: rs2}, nil
}

// encodeRType packs: funct7[31:25] | rs2[24:20] | rs1[19:15] | funct3[14:12] | rd[11:7] | opcode[6:0].
func encodeRType(mnemonic string, ins isa.Instruction) (uint32, error) {
	entry, ok := rTable[strings.ToLower(mnemonic)]
	if !ok {
		return 0, isa.NewError(isa.UnsupportedInstruction, "unsupported R-type instruction: %s", mnemonic)
	}
	word := entry.funct7<<25 |
		uint32(ins.Rs2)<<20 |
		uint32(ins.Rs1)<<15 |
		entry.funct3<<12 |
		uint32(ins.Rd)<<7 |
		entry.opcode
	return word, nil
}
