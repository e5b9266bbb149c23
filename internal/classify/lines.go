package classify

import (
	"errors"
	"strings"

	"snakefmt/internal/source"
	"snakefmt/internal/token"
)

type lineKind uint8

const (
	lineCode lineKind = iota
	lineComment
	lineBlank
	lineEOF
)

// logicalLine is one statement (possibly spanning physical lines through
// brackets or continuations), a comment-only line or a blank line.
type logicalLine struct {
	kind  lineKind
	toks  []token.Token // без Newline/NL/Indent/Dedent; комментарии включены
	col   uint32        // отступ первой строки, в байтах
	first uint32        // первая физическая строка
	last  uint32        // последняя физическая строка
}

// sig returns the tokens without comments.
func (l *logicalLine) sig() []token.Token {
	out := make([]token.Token, 0, len(l.toks))
	for _, t := range l.toks {
		if t.Kind != token.Comment {
			out = append(out, t)
		}
	}
	return out
}

// comment returns the comment closing the line, if any.
func (l *logicalLine) comment() string {
	if n := len(l.toks); n > 0 && l.toks[n-1].Kind == token.Comment {
		return commentText(l.toks[n-1])
	}
	return ""
}

func (l *logicalLine) span() source.Span {
	if len(l.toks) == 0 {
		return source.Span{}
	}
	return l.toks[0].Span.Cover(l.toks[len(l.toks)-1].Span)
}

func commentText(t token.Token) string {
	return strings.TrimRight(t.Text, " \t")
}

// Stream is the token sequence consumed by the classifier; *lexer.Lexer
// implements it.
type Stream interface {
	Next() token.Token
	Err() error
}

// reader groups tokens into logical lines with unbounded lookahead.
type reader struct {
	ts       Stream
	buf      []*logicalLine
	eof      *logicalLine
	err      error // первая ошибка лексера; повторяется при каждом peek
	inString map[uint32]bool // физические строки, начинающиеся внутри строкового литерала
	last     uint32          // последняя физическая строка последней выданной pop строки
}

func newReader(ts Stream) *reader {
	return &reader{ts: ts, inString: make(map[uint32]bool)}
}

func (r *reader) peek(i int) (*logicalLine, error) {
	for len(r.buf) <= i {
		if r.err != nil {
			return nil, r.err
		}
		if r.eof != nil {
			return r.eof, nil
		}
		ln, err := r.read()
		if err != nil {
			r.err = err
			return nil, err
		}
		if ln.kind == lineEOF {
			r.eof = ln
			return ln, nil
		}
		r.buf = append(r.buf, ln)
	}
	return r.buf[i], nil
}

// pop removes the first buffered line; callers peek before they pop.
func (r *reader) pop() *logicalLine {
	if len(r.buf) == 0 {
		return r.eof
	}
	ln := r.buf[0]
	r.buf = r.buf[1:]
	if ln.kind != lineEOF && ln.last > r.last {
		r.last = ln.last
	}
	return ln
}

// nextCode returns the first code line (or EOF) of the lookahead, skipping
// blank and comment lines without consuming them.
func (r *reader) nextCode() (*logicalLine, error) {
	for i := 0; ; i++ {
		ln, err := r.peek(i)
		if err != nil {
			return nil, err
		}
		if ln.kind == lineCode || ln.kind == lineEOF {
			return ln, nil
		}
	}
}

var errTruncated = errors.New("token stream ended without EOF")

func (r *reader) read() (*logicalLine, error) {
	ln := &logicalLine{}
	for {
		tok := r.ts.Next()
		switch tok.Kind {
		case token.Invalid:
			if err := r.ts.Err(); err != nil {
				return nil, err
			}
			return nil, errTruncated
		case token.EOF:
			if len(ln.toks) > 0 {
				// комментарий в последней строке без перевода строки
				return ln.finish(lineComment), nil
			}
			return &logicalLine{kind: lineEOF, first: tok.Start.Line, last: tok.Start.Line}, nil
		case token.Indent, token.Dedent:
			continue
		case token.NL:
			switch {
			case len(ln.toks) == 0:
				return &logicalLine{kind: lineBlank, first: tok.Start.Line, last: tok.Start.Line}, nil
			case len(ln.sig()) == 0:
				return ln.finish(lineComment), nil
			}
			// перевод строки внутри скобок
		case token.Newline:
			return ln.finish(lineCode), nil
		default:
			if (tok.Kind == token.String || tok.Kind == token.FString) && tok.Multiline() {
				for l := tok.Start.Line + 1; l <= tok.End.Line; l++ {
					r.inString[l] = true
				}
			}
			ln.toks = append(ln.toks, tok)
		}
	}
}

func (l *logicalLine) finish(kind lineKind) *logicalLine {
	l.kind = kind
	l.col = l.toks[0].Start.Col - 1
	l.first = l.toks[0].Start.Line
	l.last = l.toks[len(l.toks)-1].End.Line
	return l
}
