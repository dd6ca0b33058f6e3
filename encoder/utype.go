package encoder

import (
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
)

// parseUType handles "mnemonic rd, imm20". The immediate is the value
// already shifted into the upper-20-bits range, per the canonical rule
// that %hi(e) (or an already-shifted literal) supplies the operand.
func parseUType(mnemonic string, operands []string, address uint32, filename string, line int, symtab *parser.SymbolTable) (isa.Instruction, error) {
	if len(operands) != 2 {
		return isa.Instruction{}, isa.NewError(isa.ParseError, "%s requires 2 operands, got %d", mnemonic, len(operands))
	}
	rd, err := parseRegister(operands[0])
	if err != nil {
		return isa.Instruction{}, err
	}
	val, err := evalImmediate(operands[1], filename, line, symtab)
	if err != nil {
		return isa.Instruction{}, err
	}
	if err := checkUnsigned(val, 20, mnemonic); err != nil {
		return isa.Instruction{}, err
	}
	return isa.Instruction{Mnemonic: mnemonic, Address: address, Rd: rd, HasImm: true,
		Imm: isa.Immediate{Abs: int32(val), PCRel: int32(val) - int32(address)}}, nil
}

// encodeUType packs: imm[31:12] << 12 | rd << 7 | opcode.
func encodeUType(mnemonic string, ins isa.Instruction) (uint32, error) {
	opcode, ok := uTable[strings.ToLower(mnemonic)]
	if !ok {
		return 0, isa.NewError(isa.UnsupportedInstruction, "unsupported U-type instruction: %s", mnemonic)
	}
	word := (uint32(ins.Imm.Abs)&0xfffff)<<12 | uint32(ins.Rd)<<7 | opcode
	return word, nil
}
