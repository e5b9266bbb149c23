package lexer

import (
	"fmt"

	"snakefmt/internal/diag"
	"snakefmt/internal/token"
)

// Жадность: сначала многосимвольные операторы, затем 1-символьные.
// Все операторы получают Kind Op; скобки дополнительно ведут стек вложенности.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	if lx.eatOp() {
		return lx.tokenFrom(start, token.Op)
	}

	ch := lx.cursor.Peek()
	switch ch {
	case '+', '-', '*', '/', '%', '@', '&', '|', '^', '~', '<', '>',
		',', ':', '.', ';', '=':
		lx.cursor.Bump()
		return lx.tokenFrom(start, token.Op)
	case '(', '[', '{':
		lx.cursor.Bump()
		tok := lx.tokenFrom(start, token.Op)
		lx.brackets = append(lx.brackets, bracket{ch: ch, span: tok.Span})
		return tok
	case ')', ']', '}':
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		n := len(lx.brackets)
		if n == 0 {
			return lx.fail(diag.LexUnmatchedBracket, sp, fmt.Sprintf("unmatched '%c'", ch))
		}
		if open := lx.brackets[n-1].ch; closerOf(open) != ch {
			return lx.fail(diag.LexUnmatchedBracket, sp,
				fmt.Sprintf("closing '%c' does not match opening '%c'", ch, open))
		}
		lx.brackets = lx.brackets[:n-1]
		return lx.tokenAt(token.Op, sp)
	}

	// неизвестный символ: съедаем руну целиком, чтобы не резать UTF-8
	lx.bumpRune()
	sp := lx.cursor.SpanFrom(start)
	return lx.fail(diag.LexUnknownChar, sp, fmt.Sprintf("invalid character %q", string(lx.file.Slice(sp))))
}

func closerOf(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}
