package parser

import (
	"fmt"

	"github.com/CommonsSwarm/evmscripter/pkg/token"
)

// SyntaxError reports malformed script input. Span covers the offending text.
type SyntaxError struct {
	Span    token.Span
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// Position returns the start of the offending span.
func (e *SyntaxError) Position() Position {
	return e.Span.Start
}

// Common error messages
const (
	ErrUnexpectedToken    = "unexpected %s, expected %s"
	ErrUnterminatedString = "unterminated string literal"
	ErrUnbalancedWord     = "unbalanced parenthesis in word"
	ErrNulByte            = "unexpected NUL byte"
	ErrMissingHelperName  = "missing helper name after '@'"
	ErrMissingOptionName  = "missing option name after '--'"
	ErrInvalidNumber      = "invalid number literal %q"
	ErrFractionalNumber   = "number %q is not an integer"
	ErrInvalidCommandName = "invalid command name %q"
	ErrDuplicateOption    = "duplicate option --%s"
)
