package parser

// Program is the full output of preprocessing: the translatable line
// sequence in source order, plus the symbol table and macro dictionary
// accumulated while producing it. The encoder package consumes a Program
// read-only.
type Program struct {
	Lines   []TranslatableLine
	Symbols *SymbolTable
	Macros  *MacroTable
}

// Parser drives preprocessing of one assembly source file.
type Parser struct {
	source   string
	filename string
	baseAddr uint32
	pp       *Preprocessor
}

// NewParser creates a parser for source, reporting positions against
// filename, with the first translatable instruction placed at baseAddr.
func NewParser(source, filename string, baseAddr uint32) *Parser {
	return &Parser{source: source, filename: filename, baseAddr: baseAddr, pp: NewPreprocessor(baseAddr)}
}

// Parse runs preprocessing to completion and returns the resulting Program.
func (p *Parser) Parse() (*Program, error) {
	lines, err := p.pp.Process(p.source, p.filename)
	if err != nil {
		return nil, err
	}
	return &Program{Lines: lines, Symbols: p.pp.SymbolTable(), Macros: p.pp.Macros()}, nil
}

// Errors returns warnings (and, on success, no errors) accumulated while
// parsing.
func (p *Parser) Errors() *ErrorList {
	return p.pp.Errors()
}
