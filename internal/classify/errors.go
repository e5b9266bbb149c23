package classify

import (
	"fmt"

	"snakefmt/internal/diag"
	"snakefmt/internal/source"
)

// Error is a fatal structural error of the workflow source: a keyword block
// with a malformed header, sections at inconsistent indentation, a bad value
// list. Block names the enclosing block ("rule a", "input").
type Error struct {
	Code   diag.Code
	Span   source.Span
	Pos    source.LineCol
	Block  string
	Reason string
}

func (e *Error) Error() string {
	if e.Block == "" {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Reason)
	}
	return fmt.Sprintf("%d:%d: in %s: %s", e.Pos.Line, e.Pos.Col, e.Block, e.Reason)
}

// Diagnostic converts the error for rendering by diagfmt.
func (e *Error) Diagnostic() diag.Diagnostic {
	msg := e.Reason
	if e.Block != "" {
		msg = e.Block + ": " + e.Reason
	}
	return diag.NewError(e.Code, e.Span, msg)
}

func (c *classifier) errorf(code diag.Code, sp source.Span, blk, format string, args ...any) *Error {
	return &Error{
		Code:   code,
		Span:   sp,
		Pos:    c.file.Position(sp.Start),
		Block:  blk,
		Reason: fmt.Sprintf(format, args...),
	}
}
