package lexer

import (
	"snakefmt/internal/diag"
	"snakefmt/internal/token"
)

// Поддержка: 0, 123, 1_000, 0b..., 0o..., 0x..., 1.0, .5, 1., 1e-3, 1.0e+10, 3j.
// Разделители '_' не валидируем: это делает внешний форматтер кода.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	// ведущая точка — значит формат ".digits"
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		lx.eatDigits(isDec)
		return lx.scanExponent(start)
	}

	if lx.cursor.Peek() == '0' {
		lx.cursor.Bump()
		switch lx.cursor.Peek() {
		case 'b', 'B':
			lx.cursor.Bump()
			lx.eatDigits(func(b byte) bool { return b == '0' || b == '1' })
			return lx.tokenFrom(start, token.Number)
		case 'o', 'O':
			lx.cursor.Bump()
			lx.eatDigits(func(b byte) bool { return b >= '0' && b <= '7' })
			return lx.tokenFrom(start, token.Number)
		case 'x', 'X':
			lx.cursor.Bump()
			lx.eatDigits(isHex)
			return lx.tokenFrom(start, token.Number)
		}
	}

	lx.eatDigits(isDec)
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		lx.eatDigits(isDec)
	}
	return lx.scanExponent(start)
}

func (lx *Lexer) scanExponent(start Mark) token.Token {
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			return lx.fail(diag.LexBadNumber, lx.cursor.SpanFrom(start), "expected digit after exponent")
		}
		lx.eatDigits(isDec)
	}
	// мнимая часть
	if b := lx.cursor.Peek(); b == 'j' || b == 'J' {
		lx.cursor.Bump()
	}
	return lx.tokenFrom(start, token.Number)
}

func (lx *Lexer) eatDigits(ok func(byte) bool) {
	for b := lx.cursor.Peek(); ok(b) || b == '_'; b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
}
