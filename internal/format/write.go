package format

import (
	"strings"
)

// Writer accumulates formatted lines and provides helpers for emitting
// canonical indentation, trailing comments and verbatim string interiors.
type Writer struct {
	buf         []byte
	indentLevel int
	indentWidth int
	atLineStart bool
}

// NewWriter creates a new formatting writer.
func NewWriter(indentWidth int) *Writer {
	if indentWidth <= 0 {
		indentWidth = IndentWidth
	}
	return &Writer{
		buf:         make([]byte, 0, 256),
		indentWidth: indentWidth,
		atLineStart: true,
	}
}

// Bytes returns the accumulated formatted output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// String returns the output without its final newline.
func (w *Writer) String() string {
	return strings.TrimSuffix(string(w.buf), "\n")
}

// Level returns the current indentation level.
func (w *Writer) Level() int { return w.indentLevel }

// Prefix returns the indentation written at the start of a line.
func (w *Writer) Prefix() string {
	return strings.Repeat(" ", w.indentLevel*w.indentWidth)
}

func (w *Writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	for range w.indentLevel * w.indentWidth {
		w.buf = append(w.buf, ' ')
	}
	w.atLineStart = false
}

// WriteString writes a string to the output, handling indentation.
// Newlines inside s are copied as is; the next line is not indented.
func (w *Writer) WriteString(s string) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf = append(w.buf, s...)
	w.atLineStart = false
}

// Comment writes a trailing comment two spaces after the code on the
// current line, or as a line of its own at line start.
func (w *Writer) Comment(text string) {
	if text == "" {
		return
	}
	if w.atLineStart {
		w.writeIndent()
	} else {
		w.buf = append(w.buf, ' ', ' ')
	}
	w.buf = append(w.buf, text...)
}

// Newline terminates the current line.
func (w *Writer) Newline() {
	w.buf = append(w.buf, '\n')
	w.atLineStart = true
}

// Line writes s as a complete indented line; an empty s writes a blank line.
func (w *Writer) Line(s string) {
	if s != "" {
		w.WriteString(s)
	}
	w.Newline()
}

// WriteVerbatim writes s without indentation, e.g. a line that begins
// inside a multi-line string literal.
func (w *Writer) WriteVerbatim(s string) {
	w.buf = append(w.buf, s...)
	w.atLineStart = s == "" && w.atLineStart
}

// BlankLines writes n empty lines.
func (w *Writer) BlankLines(n int) {
	for range n {
		w.Newline()
	}
}

// IndentPush increases the indentation level.
func (w *Writer) IndentPush() {
	w.indentLevel++
}

// IndentPop decreases the indentation level.
func (w *Writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}
