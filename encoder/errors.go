package encoder

import (
	"fmt"

	"github.com/r5by/rv32i-toolchain/parser"
)

// EncodingError provides source-location context for a failure to encode
// one translatable line.
type EncodingError struct {
	Pos     parser.Position
	Line    string
	Message string
	Wrapped error
}

func (e *EncodingError) Error() string {
	location := ""
	if e.Pos.Filename != "" {
		location = fmt.Sprintf("%s: ", e.Pos)
	}

	var msg string
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s%s: %v", location, e.Message, e.Wrapped)
	} else {
		msg = fmt.Sprintf("%s%s", location, e.Message)
	}

	if e.Line != "" {
		msg = fmt.Sprintf("%s\n  source: %s", msg, e.Line)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EncodingError) Unwrap() error {
	return e.Wrapped
}

// NewEncodingError creates an EncodingError for a translatable line.
func NewEncodingError(line parser.TranslatableLine, message string) *EncodingError {
	return &EncodingError{Pos: line.Pos, Message: message}
}

// WrapEncodingError attaches line context to err. A nil err returns nil; an
// already-wrapped EncodingError is returned unchanged.
func WrapEncodingError(line parser.TranslatableLine, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*EncodingError); ok {
		return err
	}
	return &EncodingError{
		Pos:     line.Pos,
		Message: fmt.Sprintf("failed to encode %q", line.Mnemonic),
		Wrapped: err,
	}
}
