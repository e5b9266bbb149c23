package lexer

import (
	"strings"

	"snakefmt/internal/diag"
	"snakefmt/internal/token"
)

// scanString сканирует строковый литерал; курсор стоит на открывающей кавычке,
// start указывает на начало префикса (если он есть).
// Ошибка о незакрытой строке указывает на её начало.
func (lx *Lexer) scanString(start Mark, prefix string) token.Token {
	q := lx.cursor.Bump()
	triple := false
	if lx.cursor.Peek() == q && lx.cursor.PeekAt(1) == q {
		lx.cursor.Bump()
		lx.cursor.Bump()
		triple = true
	}
	fstr := strings.ContainsAny(prefix, "fF")

	if !lx.scanStringBody(q, triple, fstr) {
		return lx.fail(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "unterminated string literal")
	}
	if fstr {
		return lx.tokenFrom(start, token.FString)
	}
	return lx.tokenFrom(start, token.String)
}

// scanStringBody съедает тело литерала вместе с закрывающими кавычками.
// В f-строках поля {...} могут содержать вложенные литералы с той же кавычкой.
func (lx *Lexer) scanStringBody(q byte, triple, fstr bool) bool {
	depth := 0
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '\\' && depth == 0:
			// escape (в том числе в raw-строках) не может закрыть литерал
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		case b == '\n' && !triple && depth == 0:
			return false
		case fstr && b == '{':
			if depth == 0 && lx.cursor.PeekAt(1) == '{' {
				lx.cursor.Bump()
			} else {
				depth++
			}
		case fstr && b == '}' && depth > 0:
			depth--
		case depth > 0 && (b == '"' || b == '\''):
			nq := lx.cursor.Bump()
			ntriple := false
			if lx.cursor.Peek() == nq && lx.cursor.PeekAt(1) == nq {
				lx.cursor.Bump()
				lx.cursor.Bump()
				ntriple = true
			}
			if !lx.scanStringBody(nq, ntriple, false) {
				return false
			}
			continue
		case depth == 0 && b == q:
			if !triple {
				lx.cursor.Bump()
				return true
			}
			if lx.cursor.PeekAt(1) == q && lx.cursor.PeekAt(2) == q {
				lx.cursor.Bump()
				lx.cursor.Bump()
				lx.cursor.Bump()
				return true
			}
		}
		lx.cursor.Bump()
	}
	return false
}

// isStringPrefix: r, u, b, f и допустимые пары в любом регистре.
func isStringPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}
