package parser

import (
	"fmt"

	"github.com/r5by/rv32i-toolchain/isa"
)

// expandPseudo rewrites a pseudo-instruction mnemonic into one or two real
// RV32I instruction lines of text, which are then fed back through
// processLine like a macro expansion. `li` is the one pseudo whose
// expansion width (one instruction or a lui+addi pair) depends on the
// resolved value of its immediate, so it is decided here rather than at a
// fixed arity like the others.
func (p *Preprocessor) expandPseudo(mnemonic string, operands []string, pos Position, filename string) ([]string, bool, error) {
	switch mnemonic {
	case "nop":
		return []string{"addi x0, x0, 0"}, true, nil

	case "ret":
		return []string{"jalr x0, ra, 0"}, true, nil

	case "sbreak":
		return []string{"ebreak"}, true, nil

	case "mv":
		if len(operands) != 2 {
			return nil, true, isa.NewError(isa.ParseError, "mv requires 2 operands, got %d", len(operands))
		}
		return []string{fmt.Sprintf("addi %s, %s, 0", operands[0], operands[1])}, true, nil

	case "j":
		if len(operands) != 1 {
			return nil, true, isa.NewError(isa.ParseError, "j requires 1 operand, got %d", len(operands))
		}
		return []string{fmt.Sprintf("jal x0, %s", operands[0])}, true, nil

	case "la":
		if len(operands) != 2 {
			return nil, true, isa.NewError(isa.ParseError, "la requires 2 operands, got %d", len(operands))
		}
		return p.expandLoadImmediate(operands[0], operands[1], pos, filename)

	case "li":
		if len(operands) != 2 {
			return nil, true, isa.NewError(isa.ParseError, "li requires 2 operands, got %d", len(operands))
		}
		return p.expandLoadImmediate(operands[0], operands[1], pos, filename)

	default:
		return nil, false, nil
	}
}

// expandLoadImmediate implements §4.6's li contract: a single addi when the
// value fits signed-12, otherwise the lui+addi pair with the standard
// round-to-nearest-page split so the addi's sign-extended low 12 bits add
// back correctly.
func (p *Preprocessor) expandLoadImmediate(rd, immExpr string, pos Position, filename string) ([]string, bool, error) {
	val, err := EvaluateExpr(immExpr, filename, pos.Line, p.symtab)
	if err == nil && val >= -2048 && val <= 2047 {
		return []string{fmt.Sprintf("addi %s, x0, %d", rd, val)}, true, nil
	}

	v32 := uint32(val) //nolint:gosec // intentional truncation to the 32-bit target width
	hi20 := (v32 + 0x800) >> 12 & 0xFFFFF
	lo12 := isa.AsSigned(v32 - (hi20 << 12))

	return []string{
		fmt.Sprintf("lui %s, 0x%x", rd, hi20),
		fmt.Sprintf("addi %s, %s, %d", rd, rd, lo12),
	}, true, nil
}
