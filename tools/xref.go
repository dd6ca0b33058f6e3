package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/r5by/rv32i-toolchain/parser"
)

// CrossReference lists, per label/constant, where it was defined and
// every site it was referenced from. Adapted from the teacher's
// instruction-category cross-referencer down to what spec.md's
// SymbolTable already tracks: definition position plus a reference list.
type CrossReference struct {
	Name       string
	Type       parser.SymbolType
	Value      uint32
	Defined    bool
	DefinedAt  parser.Position
	References []parser.Position
}

// BuildCrossReference flattens a SymbolTable into a sorted report.
func BuildCrossReference(symtab *parser.SymbolTable) []CrossReference {
	all := symtab.GetAllSymbols()
	out := make([]CrossReference, 0, len(all))
	for name, sym := range all {
		out = append(out, CrossReference{
			Name: name, Type: sym.Type, Value: sym.Value,
			Defined: sym.Defined, DefinedAt: sym.Pos, References: sym.References,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FormatCrossReference renders a report as plain text, one symbol per
// block, definition line first followed by indented reference sites.
func FormatCrossReference(entries []CrossReference) string {
	var sb strings.Builder
	for _, e := range entries {
		kind := "label"
		if e.Type == parser.SymbolConstant {
			kind = "constant"
		}
		if e.Defined {
			fmt.Fprintf(&sb, "%s (%s) = 0x%x, defined at %s\n", e.Name, kind, e.Value, e.DefinedAt)
		} else {
			fmt.Fprintf(&sb, "%s (%s) UNDEFINED\n", e.Name, kind)
		}
		for _, ref := range e.References {
			fmt.Fprintf(&sb, "    referenced at %s\n", ref)
		}
	}
	return sb.String()
}
