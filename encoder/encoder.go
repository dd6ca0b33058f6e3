package encoder

import (
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
)

// Encoder turns preprocessed translatable lines into RV32I machine words,
// dispatching by format family per the active ISA descriptor.
type Encoder struct {
	symtab      *parser.SymbolTable
	formatTable map[string]isa.Format
}

// NewEncoder creates an encoder bound to symtab and descriptor. Pass
// isa.DefaultDescriptor() to use the built-in RV32I mnemonic set.
func NewEncoder(symtab *parser.SymbolTable, descriptor *isa.Descriptor) *Encoder {
	return &Encoder{symtab: symtab, formatTable: descriptor.FormatTable()}
}

// splitOperands splits a line's raw operand text on commas, trimming
// whitespace. A memory operand like "0(a0)" contains no comma and survives
// intact as a single element.
func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// EncodeLine assembles one translatable line into its 32-bit word and
// decoded record.
func (e *Encoder) EncodeLine(line parser.TranslatableLine) (uint32, isa.Instruction, error) {
	mnemonic := strings.ToLower(line.Mnemonic)
	format, ok := e.formatTable[mnemonic]
	if !ok {
		return 0, isa.Instruction{}, WrapEncodingError(line, isa.NewError(isa.UnsupportedInstruction, "unknown mnemonic: %s", line.Mnemonic))
	}
	operands := splitOperands(line.OperandsRaw)

	var ins isa.Instruction
	var err error
	switch format {
	case isa.FormatR:
		ins, err = parseRType(mnemonic, operands, line.Address)
	case isa.FormatI:
		ins, err = parseIType(mnemonic, operands, line.Address, line.Pos.Filename, line.Pos.Line, e.symtab)
	case isa.FormatS:
		ins, err = parseSType(mnemonic, operands, line.Address, line.Pos.Filename, line.Pos.Line, e.symtab)
	case isa.FormatB:
		ins, err = parseBType(mnemonic, operands, line.Address, line.Pos.Filename, line.Pos.Line, e.symtab)
	case isa.FormatU:
		ins, err = parseUType(mnemonic, operands, line.Address, line.Pos.Filename, line.Pos.Line, e.symtab)
	case isa.FormatJ:
		ins, err = parseJType(mnemonic, operands, line.Address, line.Pos.Filename, line.Pos.Line, e.symtab)
	default:
		return 0, isa.Instruction{}, WrapEncodingError(line, isa.NewError(isa.UnsupportedInstruction, "unhandled format for mnemonic: %s", line.Mnemonic))
	}
	if err != nil {
		return 0, isa.Instruction{}, WrapEncodingError(line, err)
	}

	var word uint32
	switch format {
	case isa.FormatR:
		word, err = encodeRType(mnemonic, ins)
	case isa.FormatI:
		word, err = encodeIType(mnemonic, ins)
	case isa.FormatS:
		word, err = encodeSType(mnemonic, ins)
	case isa.FormatB:
		word, err = encodeBType(mnemonic, ins)
	case isa.FormatU:
		word, err = encodeUType(mnemonic, ins)
	case isa.FormatJ:
		word, err = encodeJType(mnemonic, ins)
	}
	if err != nil {
		return 0, isa.Instruction{}, WrapEncodingError(line, err)
	}
	return word, ins, nil
}

// EncodeProgram assembles every translatable line in order, returning the
// machine words and their decoded records in lockstep. It stops at the
// first encoding failure.
func (e *Encoder) EncodeProgram(lines []parser.TranslatableLine) ([]uint32, []isa.Instruction, error) {
	words := make([]uint32, 0, len(lines))
	decoded := make([]isa.Instruction, 0, len(lines))
	for _, line := range lines {
		word, ins, err := e.EncodeLine(line)
		if err != nil {
			return nil, nil, err
		}
		words = append(words, word)
		decoded = append(decoded, ins)
	}
	return words, decoded, nil
}
