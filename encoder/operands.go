package encoder

import (
	"regexp"
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
)

// memOperandRe matches the "imm(reg)" load/store addressing syntax, e.g.
// "0(a0)" or "-4(sp)".
var memOperandRe = regexp.MustCompile(`^(.*)\(([A-Za-z0-9_]+)\)$`)

// parseRegister resolves a lowercase register token to its canonical
// index, raising InvalidRegister on anything else.
func parseRegister(tok string) (int, error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	idx, ok := isa.LookupRegister(tok)
	if !ok {
		return 0, isa.NewError(isa.InvalidRegister, "invalid register: %q", tok)
	}
	return idx, nil
}

// evalImmediate evaluates an immediate expression against the program's
// symbol table, returning the literal value as an int64 so callers can
// range-check before truncating to the field width.
func evalImmediate(expr string, filename string, line int, symtab *parser.SymbolTable) (int64, error) {
	v, err := parser.EvaluateExpr(expr, filename, line, symtab)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// splitMemOperand splits "imm(reg)" into its immediate expression and
// register token. ok is false if s is not in that shape.
func splitMemOperand(s string) (immExpr, regTok string, ok bool) {
	m := memOperandRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// checkSigned verifies value fits in a signed field of the given bit width,
// returning ImmediateOutOfRange if not.
func checkSigned(value int64, bits uint, mnemonic string) error {
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	if value < lo || value > hi {
		return isa.NewError(isa.ImmediateOutOfRange, "%s: immediate %d out of signed %d-bit range", mnemonic, value, bits)
	}
	return nil
}

// checkUnsigned verifies value fits in an unsigned field of the given bit
// width.
func checkUnsigned(value int64, bits uint, mnemonic string) error {
	if value < 0 || value >= int64(1)<<bits {
		return isa.NewError(isa.ImmediateOutOfRange, "%s: immediate %d out of unsigned %d-bit range", mnemonic, value, bits)
	}
	return nil
}
