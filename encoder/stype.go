package encoder

import (
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
)

// parseSType handles "mnemonic rs2, imm(rs1)". Per §4.6, the decoded record
// reuses its single first register slot (Rd) to carry the store's source
// register, matching the original source's "rd is the source operand"
// convention rather than adding a fourth slot to the shared Instruction
// record.
func parseSType(mnemonic string, operands []string, address uint32, filename string, line int, symtab *parser.SymbolTable) (isa.Instruction, error) {
	if len(operands) != 2 {
		return isa.Instruction{}, isa.NewError(isa.ParseError, "%s requires 2 operands, got %d", mnemonic, len(operands))
	}
	src, err := parseRegister(operands[0])
	if err != nil {
		return isa.Instruction{}, err
	}
	immExpr, regTok, ok := splitMemOperand(operands[1])
	if !ok {
		return isa.Instruction{}, isa.NewError(isa.ParseError, "%s: expected imm(reg) operand, got %q", mnemonic, operands[1])
	}
	rs1, err := parseRegister(regTok)
	if err != nil {
		return isa.Instruction{}, err
	}
	val, err := evalImmediate(immExpr, filename, line, symtab)
	if err != nil {
		return isa.Instruction{}, err
	}
	if err := checkSigned(val, 12, mnemonic); err != nil {
		return isa.Instruction{}, err
	}
	return isa.Instruction{Mnemonic: mnemonic, Address: address, Rd: src, Rs1: rs1, HasImm: true,
		Imm: isa.Immediate{Abs: int32(val), PCRel: int32(val) - int32(address)}}, nil
}

// encodeSType packs: imm[11:5] << 25 | rs2 << 20 | rs1 << 15 | funct3 << 12 | imm[4:0] << 7 | opcode.
func encodeSType(mnemonic string, ins isa.Instruction) (uint32, error) {
	entry, ok := sTable[strings.ToLower(mnemonic)]
	if !ok {
		return 0, isa.NewError(isa.UnsupportedInstruction, "unsupported S-type instruction: %s", mnemonic)
	}
	imm := uint32(ins.Imm.Abs) & 0xfff
	hi := (imm >> 5) & 0x7f
	lo := imm & 0x1f
	word := hi<<25 |
		uint32(ins.Rd)<<20 | // Rd carries the source register for stores.
		uint32(ins.Rs1)<<15 |
		entry.funct3<<12 |
		lo<<7 |
		entry.opcode
	return word, nil
}
