package encoder

import (
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
)

// parseJType handles "mnemonic rd, label" and the one-operand form
// "mnemonic label", which defaults rd to ra (x1).
func parseJType(mnemonic string, operands []string, address uint32, filename string, line int, symtab *parser.SymbolTable) (isa.Instruction, error) {
	var rd int
	var targetOperand string
	switch len(operands) {
	case 1:
		idx, ok := isa.LookupRegister("ra")
		if !ok {
			return isa.Instruction{}, isa.NewError(isa.ParseError, "%s: internal error resolving ra", mnemonic)
		}
		rd = idx
		targetOperand = operands[0]
	case 2:
		r, err := parseRegister(operands[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		rd = r
		targetOperand = operands[1]
	default:
		return isa.Instruction{}, isa.NewError(isa.ParseError, "%s requires 1 or 2 operands, got %d", mnemonic, len(operands))
	}

	val, err := evalImmediate(targetOperand, filename, line, symtab)
	if err != nil {
		return isa.Instruction{}, err
	}
	offset := val - int64(address)
	if err := checkSigned(offset, 21, mnemonic); err != nil {
		return isa.Instruction{}, err
	}
	if offset&1 != 0 {
		return isa.Instruction{}, isa.NewError(isa.ImmediateOutOfRange, "%s: jump offset %d is not 2-byte aligned", mnemonic, offset)
	}
	return isa.Instruction{Mnemonic: mnemonic, Address: address, Rd: rd, HasImm: true,
		Imm: isa.Immediate{Abs: int32(val), PCRel: int32(offset)}}, nil
}

// encodeJType scatters the 21-bit signed offset: imm[20]->31, imm[10:1]->30:21,
// imm[11]->20, imm[19:12]->19:12. Bit 0 of the offset is always zero.
func encodeJType(mnemonic string, ins isa.Instruction) (uint32, error) {
	opcode, ok := jTable[strings.ToLower(mnemonic)]
	if !ok {
		return 0, isa.NewError(isa.UnsupportedInstruction, "unsupported J-type instruction: %s", mnemonic)
	}
	off := uint32(ins.Imm.PCRel)
	bit20 := (off >> 20) & 0x1
	bits10_1 := (off >> 1) & 0x3ff
	bit11 := (off >> 11) & 0x1
	bits19_12 := (off >> 12) & 0xff

	word := bit20<<31 |
		bits10_1<<21 |
		bit11<<20 |
		bits19_12<<12 |
		uint32(ins.Rd)<<7 |
		opcode
	return word, nil
}
