package parser

import (
	"os"
	"path/filepath"
)

// ParseFile reads and preprocesses an assembly source file, returning the
// resulting Program. Check the returned *Parser's Errors() for warnings
// (e.g. unknown directives) even on success.
func ParseFile(filePath string, baseAddr uint32) (*Program, *Parser, error) {
	content, err := os.ReadFile(filePath) // #nosec G304 -- operator-provided assembly source path
	if err != nil {
		return nil, nil, err
	}
	filename := filepath.Base(filePath)
	p := NewParser(string(content), filename, baseAddr)
	program, err := p.Parse()
	if err != nil {
		return nil, p, err
	}
	return program, p, nil
}
