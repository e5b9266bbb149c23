// Package classify turns the token stream of a workflow file into a block
// tree: runs of host-language code, keyword blocks with their parameter
// sections, and conditional wrappers whose bodies host keyword blocks.
//
// A keyword is recognised only at the start of a statement and only in the
// shape of a header ("rule a:", "input:", "use rule ..."), so the same words
// used as ordinary identifiers stay code. Nesting is decided from the
// indentation column of each logical line.
package classify

import (
	"fmt"

	"snakefmt/internal/block"
	"snakefmt/internal/diag"
	"snakefmt/internal/grammar"
	"snakefmt/internal/source"
	"snakefmt/internal/token"
)

type classifier struct {
	file *source.File
	r    *reader
}

// Classify consumes ts exactly once and builds the block tree of file.
// Lexer errors surface unchanged; structural errors are *Error.
func Classify(file *source.File, ts Stream) (*block.Root, error) {
	c := &classifier{file: file, r: newReader(ts)}
	blocks, err := c.body(0, 0, grammar.Global)
	if err != nil {
		return nil, err
	}
	// за телом верхнего уровня могут остаться только пустые строки
	for {
		ln, err := c.r.peek(0)
		if err != nil {
			return nil, err
		}
		if ln.kind == lineEOF {
			break
		}
		if ln.kind != lineBlank {
			return nil, c.errorf(diag.SynUnexpectedIndent, ln.span(), "", "unexpected indent")
		}
		c.r.pop()
	}
	return &block.Root{
		Blocks: blocks,
		Loc:    source.Span{File: file.ID, Start: 0, End: c.lineSpan(1, file.LineCount()).End},
	}, nil
}

// codeRun accumulates consecutive code lines of one body.
type codeRun struct {
	start, end uint32
	blank      int
}

// clause is one classified clause of a compound statement chain
// (if/elif/else, try/except/else/finally, for/while ... else).
type clause struct {
	cond       *block.Conditional
	start, end uint32
	blank      int
}

// body classifies the statements at indentation col until a dedent below
// col or EOF. Trailing blank lines are left to the enclosing body.
//
// Clauses of one compound statement are decided together: if any of them
// hosts a keyword block, every clause becomes a Conditional; otherwise the
// whole chain stays one run of code, so the engine never sees a "try:"
// without its "except:".
func (c *classifier) body(depth int, col uint32, ctx grammar.Context) ([]block.Block, error) {
	var (
		out   []block.Block
		run   *codeRun
		chain []clause
	)
	flush := func() {
		if run != nil {
			out = append(out, c.codeBlock(run.start, run.end, col, depth, run.blank))
			run = nil
		}
	}
	extend := func(start, end uint32, blanks int) {
		if run == nil {
			run = &codeRun{start: start, end: end, blank: blanks}
			return
		}
		run.end = end
	}
	closeChain := func() {
		if len(chain) == 0 {
			return
		}
		hosts := false
		for _, cl := range chain {
			hosts = hosts || !allCode(cl.cond.Body)
		}
		if hosts {
			flush()
			for _, cl := range chain {
				out = append(out, cl.cond)
			}
		} else {
			for _, cl := range chain {
				extend(cl.start, cl.end, cl.blank)
			}
		}
		chain = nil
	}

	for {
		blanks, ok, err := c.skipBlanks(col)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		ln, err := c.r.peek(0)
		if err != nil {
			return nil, err
		}
		var lead []*logicalLine
		if ln.kind == lineComment {
			lead = c.takeComments()
			next, err := c.r.peek(0)
			if err != nil {
				return nil, err
			}
			if next.kind != lineCode || next.col != col || !c.opensBlock(next, ctx) {
				closeChain()
				extend(lead[0].first, lead[len(lead)-1].last, blanks)
				continue
			}
			ln = next
		}
		if ln.col > col {
			return nil, c.errorf(diag.SynUnexpectedIndent, ln.span(), "", "unexpected indent")
		}

		start := ln.first
		if len(lead) > 0 {
			start = lead[0].first
		}

		if sig := ln.sig(); isClauseHeader(sig) {
			kw := sig[0].Text
			if n := len(chain); n > 0 && !(grammar.IsContinuation(kw) && grammar.Continues(chain[n-1].cond.Keyword, kw)) {
				closeChain()
			}
			cond, err := c.wrapper(depth, col, lead, blanks)
			if err != nil {
				return nil, err
			}
			chain = append(chain, clause{cond: cond, start: start, end: c.r.last, blank: blanks})
			continue
		}
		closeChain()

		b, err := c.statement(ln, depth, col, ctx, lead, blanks)
		if err != nil {
			return nil, err
		}
		if b == nil {
			extend(start, c.r.last, blanks)
			continue
		}
		flush()
		out = append(out, b)
	}
	closeChain()
	flush()
	return out, nil
}

// skipBlanks consumes blank lines when the content after them still belongs
// to the body at col. ok is false when the body is over; the blank lines are
// then left to the enclosing body.
func (c *classifier) skipBlanks(col uint32) (n int, ok bool, err error) {
	next, err := c.r.nextCode()
	if err != nil {
		return 0, false, err
	}
	var ln *logicalLine
	for {
		if ln, err = c.r.peek(n); err != nil {
			return 0, false, err
		}
		if ln.kind != lineBlank {
			break
		}
		n++
	}
	switch ln.kind {
	case lineEOF:
		ok = false
	case lineComment:
		// комментарий левее тела остаётся в теле, если за ним код тела
		ok = ln.col >= col || (next.kind == lineCode && next.col >= col)
	default:
		ok = ln.col >= col
	}
	if !ok {
		return 0, false, nil
	}
	for range n {
		c.r.pop()
	}
	return n, true, nil
}

// takeComments pops consecutive comment lines (no blank line in between).
func (c *classifier) takeComments() []*logicalLine {
	var out []*logicalLine
	for {
		ln, err := c.r.peek(0)
		if err != nil || ln.kind != lineComment {
			return out
		}
		out = append(out, c.r.pop())
	}
}

// opensBlock reports whether ln starts a keyword block or a wrapper header,
// i.e. whether comment lines directly above it are its leading comments.
func (c *classifier) opensBlock(ln *logicalLine, ctx grammar.Context) bool {
	sig := ln.sig()
	if len(sig) == 0 {
		return false
	}
	if e, ok := grammar.Lookup(ctx, sig[0].Text); ok && sig[0].Kind == token.Name && isHeader(sig, e) {
		return true
	}
	return isClauseHeader(sig)
}

// isClauseHeader reports whether sig is the header of a compound statement
// clause that may host keyword blocks ("if x:", "else:", "with f() as g:").
func isClauseHeader(sig []token.Token) bool {
	return len(sig) > 0 && sig[0].Kind == token.Keyword && grammar.IsWrapper(sig[0].Text) && sig[len(sig)-1].Is(":")
}

// statement classifies a keyword block at ln. A nil block means the
// statement (and whatever nested lines it owns) is plain code up to c.r.last.
func (c *classifier) statement(ln *logicalLine, depth int, col uint32, ctx grammar.Context,
	lead []*logicalLine, blanks int,
) (block.Block, error) {
	sig := ln.sig()
	if head := sig[0]; head.Kind == token.Name {
		if e, ok := grammar.Lookup(ctx, head.Text); ok && isHeader(sig, e) {
			return c.keyword(e, depth, col, lead, blanks)
		}
	}
	c.consumeStatement(col)
	return nil, nil
}

// consumeStatement pops the current line and every following line indented
// deeper than col (the body of a compound statement).
func (c *classifier) consumeStatement(col uint32) {
	c.r.pop()
	for {
		next, err := c.r.nextCode()
		if err != nil || next.kind == lineEOF || next.col <= col {
			return
		}
		for {
			ln := c.r.pop()
			if ln == next {
				break
			}
		}
	}
}

// wrapper classifies one clause of a compound statement. Whether it stays
// a Conditional is decided by body once the whole chain is known.
func (c *classifier) wrapper(depth int, col uint32, lead []*logicalLine, blanks int) (*block.Conditional, error) {
	hdr := c.r.pop()
	sig := hdr.sig()

	next, err := c.r.nextCode()
	if err != nil {
		return nil, err
	}
	var body []block.Block
	if next.kind == lineCode && next.col > col {
		body, err = c.body(depth+1, next.col, grammar.Global)
		if err != nil {
			return nil, err
		}
	}

	colon := sig[len(sig)-1]
	header := string(c.file.Slice(source.Span{File: c.file.ID, Start: sig[0].Span.Start, End: colon.Span.End}))
	start := hdr.first
	if len(lead) > 0 {
		start = lead[0].first
	}
	return &block.Conditional{
		Keyword:       sig[0].Text,
		Header:        header,
		HeaderComment: hdr.comment(),
		Comments:      commentTexts(lead),
		Body:          body,
		Depth:         depth,
		BlankBefore:   blanks,
		Loc:           c.lineSpan(start, c.r.last),
	}, nil
}

func allCode(blocks []block.Block) bool {
	for _, b := range blocks {
		if _, ok := b.(*block.Code); !ok {
			return false
		}
	}
	return true
}

// isHeader checks the shape of a keyword header so that an identifier that
// merely shares a keyword's name ("input = 3", "rule.name") stays code.
func isHeader(sig []token.Token, e grammar.Entry) bool {
	if len(sig) < 2 {
		return false
	}
	switch e.Kind {
	case grammar.KindNamed:
		return sig[1].Is(":") || sig[1].Kind == token.Name || sig[1].IsLiteral()
	case grammar.KindUse:
		return sig[1].Kind == token.Name && sig[1].Text == "rule"
	default:
		return sig[1].Is(":")
	}
}

// codeBlock builds a Code block from the physical lines first..last.
func (c *classifier) codeBlock(first, last, col uint32, depth, blanks int) *block.Code {
	n := int(last - first + 1)
	lines := make([]string, 0, n)
	inString := make([]bool, 0, n)
	for l := first; l <= last; l++ {
		lines = append(lines, c.file.GetLine(l))
		inString = append(inString, c.r.inString[l])
	}
	return &block.Code{
		Lines:       lines,
		InString:    inString,
		Indent:      int(col),
		Depth:       depth,
		BlankBefore: blanks,
		StartLine:   first,
		EndLine:     last,
		Loc:         c.lineSpan(first, last),
	}
}

// lineSpan covers the physical lines first..last without the final newline.
func (c *classifier) lineSpan(first, last uint32) source.Span {
	start := c.file.LineStart(first)
	end := c.file.LineStart(last + 1)
	if end > start && c.file.Content[end-1] == '\n' {
		end--
	}
	return source.Span{File: c.file.ID, Start: start, End: end}
}

func commentTexts(lines []*logicalLine) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		out = append(out, ln.comment())
	}
	return out
}

func describe(kw, name string) string {
	if name == "" {
		return fmt.Sprintf("'%s'", kw)
	}
	return fmt.Sprintf("'%s %s'", kw, name)
}
