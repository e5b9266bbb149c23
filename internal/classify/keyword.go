package classify

import (
	"fmt"
	"strings"

	"snakefmt/internal/block"
	"snakefmt/internal/diag"
	"snakefmt/internal/grammar"
	"snakefmt/internal/source"
	"snakefmt/internal/token"
)

// keyword parses a keyword block whose header is the next line.
func (c *classifier) keyword(e grammar.Entry, depth int, col uint32, lead []*logicalLine, blanks int) (block.Block, error) {
	hdr, _ := c.r.peek(0)
	sig := hdr.sig()
	kb := &block.Keyword{
		Keyword:     e.Word,
		Kind:        e.Kind,
		Context:     e.Body,
		Comments:    commentTexts(lead),
		Depth:       depth,
		BlankBefore: blanks,
	}
	start := hdr.first
	if len(lead) > 0 {
		start = lead[0].first
	}

	switch e.Kind {
	case grammar.KindSection:
		// директива уровня файла: ровно одна секция
		sec, err := c.section(e, grammar.Global, col, depth)
		if err != nil {
			return nil, err
		}
		kb.Sections = []*block.Section{sec}

	case grammar.KindCode:
		c.r.pop()
		if err := c.expectHeaderEnd(sig, 1, describe(e.Word, "")); err != nil {
			return nil, err
		}
		kb.HeaderComment = hdr.comment()
		body, err := c.codeBody(col, depth+1, describe(e.Word, ""), sig[0].Span)
		if err != nil {
			return nil, err
		}
		kb.Body = body

	case grammar.KindNamed:
		c.r.pop()
		i := 1
		switch {
		case sig[1].Kind == token.Name:
			kb.Name = sig[1].Text
			i = 2
		case !sig[1].Is(":"):
			return nil, c.errorf(diag.SynInvalidName, sig[1].Span, describe(e.Word, ""),
				"invalid name %q", sig[1].Text)
		}
		label := describe(e.Word, kb.Name)
		if e.Name == grammar.NameRequired && kb.Name == "" {
			return nil, c.errorf(diag.SynInvalidName, sig[0].Span, label, "a name is required")
		}
		if err := c.expectHeaderEnd(sig, i, label); err != nil {
			return nil, err
		}
		kb.HeaderComment = hdr.comment()
		if err := c.sections(kb, col, label, sig[0].Span); err != nil {
			return nil, err
		}

	case grammar.KindUse:
		c.r.pop()
		n := len(sig)
		end := sig[n-1]
		if end.Is(":") {
			if n < 3 || sig[n-2].Text != "with" {
				return nil, c.errorf(diag.SynExpectNewline, end.Span, "'use'", "':' is only allowed after 'with'")
			}
			kb.With = true
			end = sig[n-3]
		}
		raw := c.file.Slice(source.Span{File: c.file.ID, Start: sig[1].Span.Start, End: end.Span.End})
		kb.Header = strings.Join(strings.Fields(string(raw)), " ")
		kb.HeaderComment = hdr.comment()
		if kb.With {
			if err := c.sections(kb, col, "'use "+kb.Header+"'", sig[0].Span); err != nil {
				return nil, err
			}
		}
	}

	kb.Loc = c.lineSpan(start, c.r.last)
	return kb, nil
}

// expectHeaderEnd checks that sig[i] is the colon closing a block header and
// that nothing follows it on the line.
func (c *classifier) expectHeaderEnd(sig []token.Token, i int, label string) error {
	if i >= len(sig) || !sig[i].Is(":") {
		at := sig[len(sig)-1].Span
		if i < len(sig) {
			at = sig[i].Span
		}
		return c.errorf(diag.SynExpectColon, at, label, "colon expected after %s", label)
	}
	if i+1 < len(sig) {
		return c.errorf(diag.SynExpectNewline, sig[i+1].Span, label,
			"newline expected after %s header, got %q", label, sig[i+1].Text)
	}
	return nil
}

// sections parses the indented section list of kb, whose header is at col.
func (c *classifier) sections(kb *block.Keyword, col uint32, label string, at source.Span) error {
	first, err := c.r.nextCode()
	if err != nil {
		return err
	}
	if first.kind != lineCode || first.col <= col {
		return c.errorf(diag.SynEmptyBlock, at, label, "%s has no sections", label)
	}
	bodyCol := first.col
	seen := make(map[string]bool)
	var pending []string

	for {
		next, err := c.r.nextCode()
		if err != nil {
			return err
		}
		ln, err := c.r.peek(0)
		if err != nil {
			return err
		}
		inside := next.kind == lineCode && next.col >= bodyCol

		switch ln.kind {
		case lineBlank:
			if !inside {
				kb.Trailing = pending
				return nil
			}
			c.r.pop()
			continue
		case lineComment:
			if ln.col < bodyCol && !inside {
				kb.Trailing = pending
				return nil
			}
			pending = append(pending, c.r.pop().comment())
			continue
		case lineEOF:
			kb.Trailing = pending
			return nil
		}

		if ln.col < bodyCol {
			kb.Trailing = pending
			return nil
		}
		sig := ln.sig()
		if ln.col > bodyCol {
			return c.errorf(diag.SynInconsistentIndent, sig[0].Span, label,
				"unexpected indentation (expected column %d, got %d)", bodyCol+1, ln.col+1)
		}
		e, ok := grammar.Lookup(kb.Context, sig[0].Text)
		if sig[0].Kind != token.Name || !ok || len(sig) < 2 || !sig[1].Is(":") {
			err := c.errorf(diag.SynUnrecognisedKeyword, sig[0].Span, label,
				"unrecognised keyword %q in %s definition", sig[0].Text, kb.Context)
			if w, ok := grammar.Suggest(kb.Context, sig[0].Text); ok && w != sig[0].Text {
				err.Reason += fmt.Sprintf(" (did you mean %q?)", w)
			}
			return err
		}
		if seen[e.Word] {
			return c.errorf(diag.SynDuplicateKeyword, sig[0].Span, label,
				"%q specified twice", e.Word)
		}
		seen[e.Word] = true

		sec, err := c.section(e, kb.Context, bodyCol, kb.Depth+1)
		if err != nil {
			return err
		}
		sec.Comments = pending
		pending = nil
		kb.Sections = append(kb.Sections, sec)
	}
}

// codeBody collects the host-language body of run:/onstart: as one Code block.
func (c *classifier) codeBody(col uint32, depth int, label string, at source.Span) ([]block.Block, error) {
	first, err := c.r.nextCode()
	if err != nil {
		return nil, err
	}
	if first.kind != lineCode || first.col <= col {
		return nil, c.errorf(diag.SynEmptyBlock, at, label, "%s has no body", label)
	}
	bodyCol := first.col
	var start uint32
	for {
		next, err := c.r.nextCode()
		if err != nil {
			return nil, err
		}
		ln, err := c.r.peek(0)
		if err != nil {
			return nil, err
		}
		inside := next.kind == lineCode && next.col > col
		switch ln.kind {
		case lineBlank:
			if !inside {
				return c.bodyBlock(start, bodyCol, depth), nil
			}
		case lineComment:
			if ln.col <= col && !inside {
				return c.bodyBlock(start, bodyCol, depth), nil
			}
		case lineEOF:
			return c.bodyBlock(start, bodyCol, depth), nil
		default:
			if ln.col <= col {
				return c.bodyBlock(start, bodyCol, depth), nil
			}
		}
		c.r.pop()
		if start == 0 && ln.kind != lineBlank {
			start = ln.first
		}
	}
}

func (c *classifier) bodyBlock(start, bodyCol uint32, depth int) []block.Block {
	return []block.Block{c.codeBlock(start, c.r.last, bodyCol, depth, 0)}
}
