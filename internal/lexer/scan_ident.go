package lexer

import (
	"snakefmt/internal/token"
)

// scanIdentOrString сканирует идентификатор; если сразу за ним кавычка и
// идентификатор является строковым префиксом (r, b, f, rb, ...), это строка.
// Token.Text — ровно исходный срез.
func (lx *Lexer) scanIdentOrString() token.Token {
	start := lx.cursor.Mark()

	if r, _ := lx.peekRune(); !isIdentStart(r) {
		return lx.scanOperatorOrPunct()
	}
	// хвост может смешивать ASCII и Unicode
	for r, n := lx.peekRune(); n > 0 && isIdentPart(r); r, n = lx.peekRune() {
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Slice(sp))

	if q := lx.cursor.Peek(); (q == '"' || q == '\'') && isStringPrefix(text) {
		return lx.scanString(start, text)
	}
	if token.IsKeyword(text) {
		return lx.tokenAt(token.Keyword, sp)
	}
	return lx.tokenAt(token.Name, sp)
}
