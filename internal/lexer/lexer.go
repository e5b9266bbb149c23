package lexer

import (
	"iter"
	"unicode/utf8"

	"snakefmt/internal/diag"
	"snakefmt/internal/source"
	"snakefmt/internal/token"
)

type bracket struct {
	ch   byte
	span source.Span
}

// Lexer is a forward-only token stream over one file. It is not restartable:
// once EOF (or an Invalid token after a fatal error) was returned, every
// further call yields EOF.
type Lexer struct {
	file     *source.File
	cursor   Cursor
	opts     Options
	look     *token.Token  // 1 элементный буфер для Peek
	pending  []token.Token // очередь: Indent/Dedent и хвост файла
	indents  []uint32      // стек ширин отступов, всегда начинается с 0
	brackets []bracket

	lineStart bool // курсор в начале физической строки вне скобок
	logical   bool // в текущей логической строке уже есть значимый токен
	finished  bool
	err       *Error
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:      file,
		cursor:    NewCursor(file),
		opts:      opts,
		indents:   []uint32{0},
		lineStart: true,
	}
}

// Next возвращает следующий токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	for len(lx.pending) == 0 && !lx.finished {
		lx.step()
	}
	if len(lx.pending) == 0 {
		sp := lx.emptySpan()
		pos := lx.file.Position(sp.Start)
		return token.Token{Kind: token.EOF, Span: sp, Start: pos, End: pos}
	}
	tok := lx.pending[0]
	lx.pending = lx.pending[1:]
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// All exposes the stream as a single-use sequence ending with EOF.
func (lx *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := lx.Next()
			if !yield(tok) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// Err returns the fatal error, if lexing stopped on one.
func (lx *Lexer) Err() error {
	if lx.err == nil {
		return nil
	}
	return lx.err
}

// Tokenize drains a fresh lexer over file.
func Tokenize(file *source.File, opts Options) ([]token.Token, error) {
	lx := New(file, opts)
	var toks []token.Token
	for tok := range lx.All() {
		toks = append(toks, tok)
	}
	return toks, lx.Err()
}

// step сканирует одну порцию входа и кладёт результат в pending.
func (lx *Lexer) step() {
	if lx.lineStart {
		lx.lineStart = false
		lx.scanIndentation()
		if lx.finished || len(lx.pending) > 0 {
			return
		}
	}
	lx.skipSpaces()
	if lx.cursor.EOF() {
		lx.finish()
		return
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '\n':
		lx.scanNewline()
	case ch == '#':
		lx.emit(lx.scanComment())
	case ch == '\\':
		lx.scanContinuation()
	case ch == '"' || ch == '\'':
		lx.emit(lx.scanString(lx.cursor.Mark(), ""))
	case ch >= utf8.RuneSelf || isIdentStart(rune(ch)):
		lx.emit(lx.scanIdentOrString())
	case isDec(ch), ch == '.' && lx.isNumberAfterDot():
		lx.emit(lx.scanNumber())
	default:
		lx.emit(lx.scanOperatorOrPunct())
	}
}

// scanIndentation меряет отступ строки с кодом и выдаёт Indent/Dedent.
// Пустые строки и строки из одного комментария отступ не меняют.
func (lx *Lexer) scanIndentation() {
	start := lx.cursor.Mark()
	var width uint32
loop:
	for {
		switch lx.cursor.Peek() {
		case ' ':
			width++
		case '\t':
			width = (width/tabWidth + 1) * tabWidth
		case '\f':
			width = 0
		default:
			break loop
		}
		lx.cursor.Bump()
	}
	if b := lx.cursor.Peek(); lx.cursor.EOF() || b == '\n' || b == '#' {
		return
	}

	sp := lx.cursor.SpanFrom(start)
	top := lx.indents[len(lx.indents)-1]
	switch {
	case width > top:
		lx.indents = append(lx.indents, width)
		lx.emit(lx.tokenAt(token.Indent, sp))
	case width < top:
		for width < lx.indents[len(lx.indents)-1] {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.emit(lx.tokenAt(token.Dedent, lx.emptySpan()))
		}
		if width != lx.indents[len(lx.indents)-1] {
			lx.emit(lx.fail(diag.LexBadDedent, sp, "unindent does not match any outer indentation level"))
		}
	}
}

func (lx *Lexer) skipSpaces() {
	for {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\f', '\r':
			lx.cursor.Bump()
		default:
			return
		}
	}
}

func (lx *Lexer) scanNewline() {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	switch {
	case len(lx.brackets) > 0:
		lx.emit(lx.tokenAt(token.NL, sp))
		return
	case lx.logical:
		lx.emit(lx.tokenAt(token.Newline, sp))
		lx.logical = false
	default:
		lx.emit(lx.tokenAt(token.NL, sp))
	}
	lx.lineStart = true
}

func (lx *Lexer) scanComment() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	return lx.tokenFrom(start, token.Comment)
}

// scanContinuation склеивает физические строки по '\' в конце строки.
func (lx *Lexer) scanContinuation() {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Eat('\r')
	if lx.cursor.Eat('\n') {
		return
	}
	sp := lx.cursor.SpanFrom(start)
	if lx.cursor.EOF() {
		lx.emit(lx.fail(diag.LexBadContinuation, sp, "unexpected end of file after line continuation"))
		return
	}
	lx.emit(lx.fail(diag.LexBadContinuation, sp, "unexpected character after line continuation character"))
}

// finish закрывает поток: синтетический Newline, Dedent на каждый открытый уровень, EOF.
func (lx *Lexer) finish() {
	if n := len(lx.brackets); n > 0 {
		b := lx.brackets[n-1]
		lx.emit(lx.fail(diag.LexUnterminatedBracket, b.span, "'"+string(b.ch)+"' was never closed"))
		return
	}
	sp := lx.emptySpan()
	if lx.logical {
		lx.emit(lx.tokenAt(token.Newline, sp))
		lx.logical = false
	}
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.emit(lx.tokenAt(token.Dedent, sp))
	}
	lx.emit(lx.tokenAt(token.EOF, sp))
	lx.finished = true
}

// fail фиксирует первую фатальную ошибку и останавливает поток.
func (lx *Lexer) fail(code diag.Code, sp source.Span, msg string) token.Token {
	if lx.err == nil {
		lx.err = &Error{Code: code, Span: sp, Pos: lx.file.Position(sp.Start), Reason: msg}
		lx.report(code, sp, msg)
	}
	lx.finished = true
	return lx.tokenAt(token.Invalid, sp)
}

func (lx *Lexer) emit(tok token.Token) {
	switch tok.Kind {
	case token.Comment, token.NL, token.Newline, token.Indent, token.Dedent, token.EOF, token.Invalid:
	default:
		lx.logical = true
	}
	lx.pending = append(lx.pending, tok)
}

func (lx *Lexer) tokenFrom(m Mark, kind token.Kind) token.Token {
	return lx.tokenAt(kind, lx.cursor.SpanFrom(m))
}

func (lx *Lexer) tokenAt(kind token.Kind, sp source.Span) token.Token {
	return token.Token{
		Kind:  kind,
		Span:  sp,
		Text:  string(lx.file.Slice(sp)),
		Start: lx.file.Position(sp.Start),
		End:   lx.file.Position(sp.End),
	}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
