package lexer

import (
	"fmt"

	"snakefmt/internal/diag"
	"snakefmt/internal/source"
)

// Error is the fatal lexing failure (unterminated string or bracket, bad
// indentation, stray character). Pos points at the start of the offending
// construct, e.g. the opening quote of an unterminated string.
type Error struct {
	Code   diag.Code
	Span   source.Span
	Pos    source.LineCol
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Reason)
}

// Diagnostic converts the error for rendering by diagfmt.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Reason)
}
