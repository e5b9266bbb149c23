// Package engine wraps the external host-language formatter that receives
// every pure-code segment of a snakefile.
//
// An Engine must be deterministic for identical input and must fail with an
// *Error, never with silently corrupted output, when the code does not parse.
// Implementations are safe for concurrent use with distinct inputs.
package engine

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"snakefmt/internal/diag"
	"snakefmt/internal/source"
)

// Engine formats a fragment of host-language code to the given line length.
type Engine interface {
	FormatCode(ctx context.Context, text string, lineLength int) (string, error)
}

// Fingerprinter is implemented by engines whose output depends on options
// beyond the line length. Cached mixes the fingerprint into its keys.
type Fingerprinter interface {
	Fingerprint() string
}

// Options selects engine style behaviour.
type Options struct {
	Executable              string   // путь к black; пусто = искать в PATH
	SkipStringNormalization bool     // не менять кавычки строк
	TargetVersions          []string // py38, py311, ...
}

// Func adapts a plain function to Engine.
type Func func(ctx context.Context, text string, lineLength int) (string, error)

func (f Func) FormatCode(ctx context.Context, text string, lineLength int) (string, error) {
	return f(ctx, text, lineLength)
}

// Error reports a failed engine call. Pos is relative to the fragment as
// returned by the engine; Locate translates it into file coordinates.
type Error struct {
	Code   diag.Code
	Span   source.Span
	Pos    source.LineCol // нулевая строка = позиция неизвестна
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Diagnostic converts the error for rendering by diagfmt.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code, e.Span, e.Reason)
	if e.Err != nil && e.Code == diag.FmtEngineUnavailable {
		d = d.WithNote(e.Span, e.Err.Error())
	}
	return d
}

// Locate returns a copy of e positioned inside sf. The fragment began at
// 1-based line first and was dedented by indent bytes; whole is used as the
// span when the engine gave no position.
func (e *Error) Locate(sf *source.File, whole source.Span, first uint32, indent int) *Error {
	out := *e
	out.Span = whole
	if e.Pos.Line == 0 {
		out.Pos = sf.Position(whole.Start)
		return &out
	}
	line := first + e.Pos.Line - 1
	if line > sf.LineCount() {
		line = sf.LineCount()
	}
	col := e.Pos.Col
	if col == 0 {
		col = 1
	}
	shift, err := safecast.Conv[uint32](indent)
	if err != nil {
		shift = 0
	}
	lineLen, err := safecast.Conv[uint32](len(sf.GetLine(line)))
	if err != nil {
		panic(fmt.Errorf("line length overflow: %w", err))
	}
	start := sf.LineStart(line)
	off := min(start+shift+col-1, start+lineLen)
	out.Pos = sf.Position(off)
	out.Span = source.Span{File: sf.ID, Start: off, End: off}
	if off < whole.End {
		out.Span.End = off + 1
	}
	return &out
}
