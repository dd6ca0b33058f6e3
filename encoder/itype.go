package encoder

import (
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
)

var shiftImmMnemonics = map[string]bool{"slli": true, "srli": true, "srai": true}
var loadMnemonics = map[string]bool{"lb": true, "lh": true, "lw": true, "lbu": true, "lhu": true}

// parseIType handles the five I-type operand shapes: arithmetic
// ("rd, rs1, imm"), shift-immediate ("rd, rs1, shamt"), loads
// ("rd, imm(rs1)"), jalr ("rd, rs1, imm"), and the zero-operand system
// instructions ecall/ebreak.
func parseIType(mnemonic string, operands []string, address uint32, filename string, line int, symtab *parser.SymbolTable) (isa.Instruction, error) {
	if fixed, isFixed := iFixedImm[mnemonic]; isFixed {
		if len(operands) != 0 {
			return isa.Instruction{}, isa.NewError(isa.ParseError, "%s takes no operands", mnemonic)
		}
		return isa.Instruction{Mnemonic: mnemonic, Address: address, HasImm: true, Imm: isa.Immediate{Abs: fixed}}, nil
	}

	if loadMnemonics[mnemonic] {
		if len(operands) != 2 {
			return isa.Instruction{}, isa.NewError(isa.ParseError, "%s requires 2 operands, got %d", mnemonic, len(operands))
		}
		rd, err := parseRegister(operands[0])
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
		return isa.Instruction{Mnemonic: mnemonic, Address: address, Rd: rd, Rs1: rs1, HasImm: true,
			Imm: isa.Immediate{Abs: int32(val), PCRel: int32(val) - int32(address)}}, nil
	}

	// Remaining shapes all take "rd, rs1, imm".
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
	val, err := evalImmediate(operands[2], filename, line, symtab)
	if err != nil {
		return isa.Instruction{}, err
	}

	if shiftImmMnemonics[mnemonic] {
		// Per §8 boundary behavior ("slli x1,x1,32 uses shamt 0"), the
		// shift amount always masks to the low 5 bits rather than
		// raising ImmediateOutOfRange.
		val &= 0x1f
	} else {
		if err := checkSigned(val, 12, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
	}

	return isa.Instruction{Mnemonic: mnemonic, Address: address, Rd: rd, Rs1: rs1, HasImm: true,
		Imm: isa.Immediate{Abs: int32(val), PCRel: int32(val) - int32(address)}}, nil
}

// encodeIType packs: imm[11:0] << 20 | rs1 << 15 | funct3 << 12 | rd << 7 | opcode.
// Shift-immediate forms place funct7 into [31:25] instead of the high 7 bits
// of a general immediate.
func encodeIType(mnemonic string, ins isa.Instruction) (uint32, error) {
	entry, ok := iTable[strings.ToLower(mnemonic)]
	if !ok {
		return 0, isa.NewError(isa.UnsupportedInstruction, "unsupported I-type instruction: %s", mnemonic)
	}

	var immField uint32
	if entry.shiftFunct7 >= 0 {
		shamt := uint32(ins.Imm.Abs) & 0x1f
		immField = uint32(entry.shiftFunct7)<<5 | shamt
	} else {
		immField = uint32(ins.Imm.Abs) & 0xfff
	}

	word := immField<<20 |
		uint32(ins.Rs1)<<15 |
		entry.funct3<<12 |
		uint32(ins.Rd)<<7 |
		entry.opcode
	return word, nil
}
