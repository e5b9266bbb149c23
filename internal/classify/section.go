package classify

import (
	"snakefmt/internal/block"
	"snakefmt/internal/diag"
	"snakefmt/internal/grammar"
	"snakefmt/internal/token"
)

// piece is one element of a section's value region: a token of a value
// line, or a comment standing on its own line.
type piece struct {
	tok  token.Token
	own  bool // комментарий на отдельной строке
	tail bool // ... после которого в секции больше нет значений
}

// section parses "kw: values" whose keyword is at col. Values continue on
// the lines indented deeper than col. depth is the nesting level the
// section is printed at.
func (c *classifier) section(e grammar.Entry, ctx grammar.Context, col uint32, depth int) (*block.Section, error) {
	hdr := c.r.pop()
	sig := hdr.sig()
	label := describe(e.Word, "")
	sec := &block.Section{Keyword: e.Word, Arity: e.Arity}

	if e.Kind == grammar.KindCode {
		if err := c.expectHeaderEnd(sig, 1, label); err != nil {
			return nil, err
		}
		sec.HeaderComment = hdr.comment()
		body, err := c.codeBody(col, depth+1, label, sig[0].Span)
		if err != nil {
			return nil, err
		}
		sec.Body = body
		sec.Loc = c.lineSpan(hdr.first, c.r.last)
		return sec, nil
	}

	colon := sig[1]
	var pieces []piece
	for _, t := range hdr.toks {
		if t.Span.Start >= colon.Span.End {
			pieces = append(pieces, piece{tok: t})
		}
	}

loop:
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
				break loop
			}
			c.r.pop()
			continue
		case lineComment:
			if ln.col <= col {
				break loop
			}
			c.r.pop()
			pieces = append(pieces, piece{tok: ln.toks[0], own: true, tail: !inside})
			continue
		case lineEOF:
			break loop
		}
		if ln.col <= col {
			break loop
		}
		lsig := ln.sig()
		if kw, ok := grammar.Lookup(ctx, lsig[0].Text); ok && lsig[0].Kind == token.Name &&
			len(lsig) > 1 && lsig[1].Is(":") {
			return nil, c.errorf(diag.SynOverIndented, lsig[0].Span, label,
				"keyword %q is over-indented", kw.Word)
		}
		c.r.pop()
		for _, t := range ln.toks {
			pieces = append(pieces, piece{tok: t})
		}
	}

	if err := c.splitValues(sec, pieces, label); err != nil {
		return nil, err
	}
	if err := c.checkArity(sec, label); err != nil {
		return nil, err
	}
	sec.Loc = c.lineSpan(hdr.first, c.r.last)
	return sec, nil
}

// splitValues splits the value region on top-level commas and attaches
// comments: a comment after a value (or after the comma closing it, on the
// same line) belongs to that value, a comment line belongs to the value
// below it. Commas between the parameters of a top-level lambda do not
// split: the lambda's parameter list runs up to its own ':'.
func (c *classifier) splitValues(sec *block.Section, pieces []piece, label string) error {
	var (
		cur      []token.Token
		comments []string
		lead     []string
		prev     *block.Value
		prevLine uint32
		depth    int
		lambdas  int
	)
	for _, p := range pieces {
		t := p.tok
		if p.own {
			if p.tail {
				sec.Trailing = append(sec.Trailing, commentText(t))
			} else {
				lead = append(lead, commentText(t))
			}
			continue
		}
		if t.Kind == token.Comment {
			switch {
			case len(cur) > 0:
				comments = append(comments, commentText(t))
			case prev != nil && prevLine == t.Start.Line:
				prev.Comments = append(prev.Comments, commentText(t))
			case prev == nil && sec.HeaderComment == "":
				sec.HeaderComment = commentText(t)
			default:
				lead = append(lead, commentText(t))
			}
			continue
		}
		if t.Is(",") && depth == 0 && lambdas == 0 {
			v, err := c.makeValue(cur, t, label)
			if err != nil {
				return err
			}
			v.Leading, v.Comments = lead, comments
			sec.Values = append(sec.Values, v)
			prev, prevLine = v, t.Start.Line
			cur, comments, lead = nil, nil, nil
			continue
		}
		switch {
		case t.IsOpenBracket():
			depth++
		case t.IsCloseBracket():
			depth--
		case depth == 0 && t.IsKeyword("lambda"):
			lambdas++
		case depth == 0 && lambdas > 0 && t.Is(":"):
			lambdas--
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		v, err := c.makeValue(cur, cur[len(cur)-1], label)
		if err != nil {
			return err
		}
		v.Leading, v.Comments = lead, comments
		sec.Values = append(sec.Values, v)
		lead = nil
	}
	if len(lead) > 0 {
		sec.Trailing = append(lead, sec.Trailing...)
	}
	return nil
}

// makeValue builds a value from its tokens, splitting off "key=".
func (c *classifier) makeValue(toks []token.Token, at token.Token, label string) (*block.Value, error) {
	if len(toks) == 0 {
		return nil, c.errorf(diag.SynInvalidKeyValue, at.Span, label, "empty value before %q", at.Text)
	}
	v := &block.Value{Loc: toks[0].Span.Cover(toks[len(toks)-1].Span)}
	switch {
	case toks[0].Is("="):
		return nil, c.errorf(diag.SynInvalidKeyValue, toks[0].Span, label, "'=' without a key")
	case len(toks) > 1 && toks[1].Is("="):
		if toks[0].Kind != token.Name {
			return nil, c.errorf(diag.SynInvalidKeyValue, toks[0].Span, label, "invalid key %q", toks[0].Text)
		}
		if len(toks) == 2 {
			return nil, c.errorf(diag.SynInvalidKeyValue, toks[1].Span, label, "missing value for key %q", toks[0].Text)
		}
		v.Key = toks[0].Text
		toks = toks[2:]
	}
	v.Atoms = make([]block.Atom, len(toks))
	for i, t := range toks {
		v.Atoms[i] = block.Atom{Kind: t.Kind, Text: t.Text}
	}
	return v, nil
}

// checkArity enforces the structural shape of the value list. Types of the
// values are not checked.
func (c *classifier) checkArity(sec *block.Section, label string) error {
	keyed := false
	for _, v := range sec.Values {
		if v.Key != "" {
			if sec.Arity != grammar.ArityMixed {
				return c.errorf(diag.SynPositionalRequired, v.Loc, label,
					"%s takes positional values only, got %s=...", label, v.Key)
			}
			keyed = true
			continue
		}
		if keyed && !unpacks(v) {
			return c.errorf(diag.SynInvalidKeyValue, v.Loc, label, "positional value follows keyword value")
		}
	}
	if sec.Arity == grammar.AritySingle && len(sec.Values) > 1 {
		return c.errorf(diag.SynTooManyParams, sec.Values[1].Loc, label,
			"%s takes a single value, got %d", label, len(sec.Values))
	}
	return nil
}

func unpacks(v *block.Value) bool {
	return len(v.Atoms) > 0 && v.Atoms[0].Kind == token.Op && (v.Atoms[0].Text == "*" || v.Atoms[0].Text == "**")
}
