package format

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"snakefmt/internal/block"
	"snakefmt/internal/diag"
	"snakefmt/internal/engine"
	"snakefmt/internal/grammar"
	"snakefmt/internal/source"
	"snakefmt/internal/trace"
)

const (
	// DefaultLineLength matches black's default.
	DefaultLineLength = 88
	// IndentWidth is the width of one nesting level.
	IndentWidth = 4
)

// Context is the formatting configuration of a run. It is read once and
// passed by value; nothing in the pipeline modifies it.
type Context struct {
	LineLength int
	Engine     engine.Options
}

func (c Context) withDefaults() Context {
	if c.LineLength <= 0 {
		c.LineLength = DefaultLineLength
	}
	return c
}

// Fragment is the formatted text of one top-level block.
type Fragment struct {
	Text        string // без завершающего перевода строки
	BlankBefore int
	Span        source.Span
}

type printer struct {
	ctx    context.Context
	sf     *source.File
	fc     Context
	eng    engine.Engine
	tracer trace.Tracer
	parent uint64
	w      *Writer
}

// Format prints every top-level block of root. Code is handed to eng; an
// engine failure is returned as an *engine.Error positioned in sf.
func Format(ctx context.Context, sf *source.File, root *block.Root, fc Context, eng engine.Engine) ([]Fragment, error) {
	if sf == nil {
		return nil, errors.New("format: nil source file")
	}
	if root == nil {
		return nil, errors.New("format: nil block tree")
	}
	if eng == nil {
		return nil, errors.New("format: nil engine")
	}

	p := &printer{
		ctx:    ctx,
		sf:     sf,
		fc:     fc.withDefaults(),
		eng:    eng,
		tracer: trace.FromContext(ctx),
		parent: trace.CurrentSpan(ctx).SpanID,
	}
	frags := make([]Fragment, 0, len(root.Blocks))
	for _, b := range root.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.w = NewWriter(IndentWidth)
		if err := p.block(b); err != nil {
			return nil, err
		}
		text := strings.TrimRight(p.w.String(), "\n")
		if text == "" {
			continue
		}
		blank := min(b.Blank(), 1)
		if len(frags) == 0 {
			blank = 0
		}
		frags = append(frags, Fragment{Text: text, BlankBefore: blank, Span: b.Span()})
	}
	return frags, nil
}

func (p *printer) block(b block.Block) error {
	switch b := b.(type) {
	case *block.Code:
		return p.code(b)
	case *block.Keyword:
		return p.keyword(b)
	case *block.Conditional:
		return p.conditional(b)
	}
	return fmt.Errorf("format: unexpected block %T", b)
}

// body prints nested blocks; the first one never gets a blank line.
func (p *printer) body(blocks []block.Block) error {
	for i, b := range blocks {
		if i > 0 {
			p.w.BlankLines(min(b.Blank(), 1))
		}
		if err := p.block(b); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) lineLength() int {
	return max(p.fc.LineLength-IndentWidth*p.w.Level(), 1)
}

func (p *printer) code(c *block.Code) error {
	sp := trace.Begin(p.tracer, trace.ScopeNode, "engine", p.parent).
		WithExtra("lines", fmt.Sprintf("%d-%d", c.StartLine, c.EndLine))
	out, err := p.eng.FormatCode(p.ctx, dedent(c), p.lineLength())
	sp.End("")
	if err != nil {
		return p.engineError(err, c.Loc, c.StartLine, c.Indent)
	}
	lines, err := codeLines(out)
	if err != nil {
		return p.engineError(err, c.Loc, c.StartLine, c.Indent)
	}
	p.writeCode(lines, "")
	return nil
}

// writeCode writes engine output at the current level, appending comment to
// the last line.
func (p *printer) writeCode(lines []codeLine, comment string) {
	for i, l := range lines {
		switch {
		case l.verbatim:
			p.w.WriteVerbatim(l.text)
		case l.text == "":
		default:
			p.w.WriteString(l.text)
		}
		if i == len(lines)-1 {
			p.w.Comment(comment)
		}
		p.w.Newline()
	}
}

func (p *printer) engineError(err error, whole source.Span, first uint32, indent int) error {
	if p.ctx.Err() != nil {
		return err
	}
	var e *engine.Error
	if !errors.As(err, &e) {
		e = &engine.Error{Code: diag.FmtEngineFailed, Reason: err.Error(), Err: err}
	}
	return e.Locate(p.sf, whole, first, indent)
}

func (p *printer) keyword(k *block.Keyword) error {
	for _, c := range k.Comments {
		p.w.Line(c)
	}
	switch k.Kind {
	case grammar.KindSection:
		for _, sec := range k.Sections {
			if err := p.section(sec); err != nil {
				return err
			}
		}
		return nil

	case grammar.KindCode:
		p.header(k.Keyword+":", k.HeaderComment)
		p.w.IndentPush()
		defer p.w.IndentPop()
		return p.body(k.Body)

	case grammar.KindUse:
		hdr := "use " + k.Header
		if !k.With {
			p.header(hdr, k.HeaderComment)
			return nil
		}
		p.header(hdr+" with:", k.HeaderComment)
		return p.sections(k)
	}

	hdr := k.Keyword
	if k.Name != "" {
		hdr += " " + k.Name
	}
	p.header(hdr+":", k.HeaderComment)
	return p.sections(k)
}

func (p *printer) header(text, comment string) {
	p.w.WriteString(text)
	p.w.Comment(comment)
	p.w.Newline()
}

func (p *printer) sections(k *block.Keyword) error {
	p.w.IndentPush()
	defer p.w.IndentPop()
	for _, sec := range k.Sections {
		if err := p.section(sec); err != nil {
			return err
		}
	}
	for _, c := range k.Trailing {
		p.w.Line(c)
	}
	return nil
}

func (p *printer) section(sec *block.Section) error {
	for _, c := range sec.Comments {
		p.w.Line(c)
	}
	if len(sec.Body) > 0 {
		p.header(sec.Keyword+":", sec.HeaderComment)
		p.w.IndentPush()
		defer p.w.IndentPop()
		return p.body(sec.Body)
	}

	if line, ok := p.inline(sec); ok {
		p.w.WriteString(line)
		if n := len(sec.Values); n > 0 {
			p.w.Comment(strings.Join(sec.Values[n-1].Comments, "  "))
		}
		p.w.Newline()
		return nil
	}

	p.header(sec.Keyword+":", sec.HeaderComment)
	p.w.IndentPush()
	defer p.w.IndentPop()
	for _, v := range sec.Values {
		for _, c := range v.Leading {
			p.w.Line(c)
		}
		p.w.WriteString(valueText(v) + separator(sec))
		p.w.Comment(strings.Join(v.Comments, "  "))
		p.w.Newline()
	}
	for _, c := range sec.Trailing {
		p.w.Line(c)
	}
	return nil
}

// inline returns the one-line form "kw: v1, v2" when the section allows it:
// single-line values, no comment lines, a comment only on the last value and
// a display width, that comment included, within the line length.
func (p *printer) inline(sec *block.Section) (string, bool) {
	if sec.HeaderComment != "" || len(sec.Trailing) > 0 {
		return "", false
	}
	n := len(sec.Values)
	parts := make([]string, n)
	for i, v := range sec.Values {
		if v.Multiline() || len(v.Leading) > 0 || (i != n-1 && v.HasComments()) {
			return "", false
		}
		parts[i] = valueText(v)
	}
	line := sec.Keyword + ":"
	width := 0
	if n > 0 {
		line += " " + strings.Join(parts, ", ")
		if c := strings.Join(sec.Values[n-1].Comments, "  "); c != "" {
			width = 2 + runewidth.StringWidth(c)
		}
	}
	if width += runewidth.StringWidth(p.w.Prefix() + line); width > p.fc.LineLength {
		return "", false
	}
	return line, true
}

func valueText(v *block.Value) string {
	text := joinAtoms(v.Atoms)
	if v.Key != "" {
		return v.Key + "=" + text
	}
	return text
}

// separator is the text after a value in the one-per-line layout.
func separator(sec *block.Section) string {
	if len(sec.Values) > 1 {
		return ","
	}
	return ""
}

func (p *printer) conditional(c *block.Conditional) error {
	for _, cm := range c.Comments {
		p.w.Line(cm)
	}
	lines, err := p.conditionalHeader(c)
	if err != nil {
		return err
	}
	p.writeCode(lines, c.HeaderComment)
	p.w.IndentPush()
	defer p.w.IndentPop()
	return p.body(c.Body)
}

// conditionalHeader formats the header of a wrapper. Bare headers are
// printed as is; the others are given to the engine with a "pass" body
// (elif and except also need the opening clause) and cut back out.
func (p *printer) conditionalHeader(c *block.Conditional) ([]codeLine, error) {
	if grammar.IsBare(c.Keyword) {
		return []codeLine{{text: c.Keyword + ":"}}, nil
	}
	var opener string
	switch c.Keyword {
	case "elif":
		opener = "if True:\n    pass\n"
	case "except":
		opener = "try:\n    pass\n"
	}
	skip := strings.Count(opener, "\n")
	first := p.sf.Position(c.Loc.Start).Line + u32(len(c.Comments))
	indent := len(p.sf.GetLine(first)) - len(strings.TrimLeft(p.sf.GetLine(first), " \t"))

	src := opener + c.Header + "\n    pass\n"
	out, err := p.eng.FormatCode(p.ctx, src, p.lineLength())
	if err != nil {
		var e *engine.Error
		if errors.As(err, &e) {
			shifted := *e
			if shifted.Pos.Line > u32(skip) {
				shifted.Pos.Line -= u32(skip)
			} else {
				shifted.Pos = source.LineCol{}
			}
			err = &shifted
		}
		return nil, p.engineError(err, c.Loc, first, indent)
	}
	lines, err := codeLines(out)
	if err != nil {
		return nil, p.engineError(err, c.Loc, first, indent)
	}
	if len(lines) < skip+2 || strings.TrimSpace(lines[len(lines)-1].text) != "pass" {
		return nil, p.engineError(fmt.Errorf("code formatter changed the %q header beyond recognition", c.Keyword), c.Loc, first, indent)
	}
	return lines[skip : len(lines)-1], nil
}
