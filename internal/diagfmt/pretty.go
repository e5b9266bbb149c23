package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"snakefmt/internal/diag"
	"snakefmt/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, caret     *color.Color
	gutter, note    *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		caret:  mk(color.FgGreen, color.Bold),
		gutter: mk(color.FgBlue),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sev := p.severity(d.Severity).Sprint(d.Severity.String())
	code := p.code.Sprint(d.Code.ID())
	if fs == nil || !fs.Has(d.Primary.File) {
		fmt.Fprintf(w, "%s %s: %s\n", sev, code, d.Message)
		return
	}

	f := fs.Get(d.Primary.File)
	start := f.Position(d.Primary.Start)
	path := formatPath(f.Path, opts.PathMode, opts.BaseDir)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, code, d.Message)
	writeSnippet(w, f, d.Primary, int(max(opts.Context, 0)), p)

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if !fs.Has(n.Span.File) {
			fmt.Fprintf(w, "  %s: %s\n", p.note.Sprint("note"), n.Msg)
			continue
		}
		nf := fs.Get(n.Span.File)
		pos := nf.Position(n.Span.Start)
		fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n", p.note.Sprint("note"),
			formatPath(nf.Path, opts.PathMode, opts.BaseDir), pos.Line, pos.Col, n.Msg)
	}
}

// writeSnippet prints the line holding sp.Start, context lines above it and
// an underline of the part of sp on that line.
func writeSnippet(w io.Writer, f *source.File, sp source.Span, context int, p palette) {
	start := f.Position(sp.Start)
	line := start.Line
	if line == 0 || line > f.LineCount() {
		return
	}
	from := line
	for i := 0; i < context && from > 1; i++ {
		from--
	}
	width := len(fmt.Sprint(line))

	for l := from; l <= line; l++ {
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, l), f.GetLine(l))
	}

	text := f.GetLine(line)
	col := min(int(start.Col)-1, len(text))
	var pad strings.Builder
	for _, r := range text[:col] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}

	n := 1
	if end := int(sp.End-sp.Start) + col; sp.End > sp.Start {
		n = max(runewidth.StringWidth(text[col:min(end, len(text))]), 1)
	}
	marker := "^" + strings.Repeat("~", n-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad.String(), p.caret.Sprint(marker))
}
