package tools

import (
	"fmt"
	"strings"

	"github.com/r5by/rv32i-toolchain/parser"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintError LintLevel = iota
	LintWarning
	LintInfo
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is a single finding against a source position.
type LintIssue struct {
	Level   LintLevel
	Pos     parser.Position
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", i.Pos, i.Level, i.Message, i.Code)
}

// LintOptions controls which checks run.
type LintOptions struct {
	Strict      bool // treat warnings as errors
	CheckUnused bool // flag defined-but-unreferenced labels/constants
	CheckReach  bool // flag code immediately after an unconditional jump
}

// DefaultLintOptions enables every check, non-strict.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{Strict: false, CheckUnused: true, CheckReach: true}
}

// Linter analyzes a preprocessed Program for common mistakes that pass
// assembly but likely indicate an error: unused labels, undefined
// symbols, and code immediately following an unconditional jump.
type Linter struct {
	options *LintOptions
}

// NewLinter creates a Linter with opts, or DefaultLintOptions if nil.
func NewLinter(opts *LintOptions) *Linter {
	if opts == nil {
		opts = DefaultLintOptions()
	}
	return &Linter{options: opts}
}

// unconditionalJumps are mnemonics after which straight-line fall-through
// is almost always dead code (jal to ra is a call and does fall through,
// so only the zero-rd idiom and jalr qualify; the zero-rd jal case is
// recognized from its operands in Lint).
var unconditionalJumps = map[string]bool{"jalr": true}

// Lint runs every enabled check against program and returns the findings.
func (l *Linter) Lint(program *parser.Program) []*LintIssue {
	var issues []*LintIssue

	// Operands other than li/la/.equ expressions are only evaluated at
	// encode time, so their symbol uses are recorded here first.
	for _, line := range program.Lines {
		lx := parser.NewLexer(line.OperandsRaw, "")
		prev := parser.TokenEOF
		for tok := lx.NextToken(); tok.Type != parser.TokenEOF; tok = lx.NextToken() {
			if tok.Type == parser.TokenIdentifier && prev != parser.TokenPercent {
				program.Symbols.Reference(tok.Literal, line.Pos)
			}
			prev = tok.Type
		}
	}

	for _, sym := range program.Symbols.GetUndefinedSymbols() {
		pos := sym.Pos
		if len(sym.References) > 0 {
			pos = sym.References[0]
		}
		issues = append(issues, &LintIssue{
			Level: LintError, Pos: pos, Code: "UNDEF_SYMBOL",
			Message: fmt.Sprintf("symbol %q is referenced but never defined", sym.Name),
		})
	}

	if l.options.CheckUnused {
		for _, sym := range program.Symbols.GetUnusedSymbols() {
			issues = append(issues, &LintIssue{
				Level: LintWarning, Pos: sym.Pos, Code: "UNUSED_SYMBOL",
				Message: fmt.Sprintf("%q is defined but never referenced", sym.Name),
			})
		}
	}

	if l.options.CheckReach {
		labelAt := make(map[uint32]bool)
		for _, sym := range program.Symbols.GetAllSymbols() {
			if sym.Defined && sym.Type == parser.SymbolLabel {
				labelAt[sym.Value] = true
			}
		}
		for i := 0; i < len(program.Lines)-1; i++ {
			mnemonic := strings.ToLower(program.Lines[i].Mnemonic)
			ops := program.Lines[i].OperandsRaw
			rd := strings.ToLower(strings.TrimSpace(strings.SplitN(ops, ",", 2)[0]))
			zeroRdJal := mnemonic == "jal" && strings.Contains(ops, ",") && (rd == "x0" || rd == "zero")
			next := program.Lines[i+1]
			if (unconditionalJumps[mnemonic] || zeroRdJal) && !labelAt[next.Address] {
				issues = append(issues, &LintIssue{
					Level: LintWarning, Pos: next.Pos, Code: "UNREACHABLE",
					Message: fmt.Sprintf("instruction follows unconditional %s with no intervening label", mnemonic),
				})
			}
		}
	}

	return issues
}

// HasErrors reports whether issues contains any LintError, or any finding
// at all when Strict is set.
func (l *Linter) HasErrors(issues []*LintIssue) bool {
	for _, issue := range issues {
		if issue.Level == LintError || l.options.Strict {
			return true
		}
	}
	return false
}
