package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tabWidth: табуляция продвигает отступ до следующего кратного 8 столбца.
const tabWidth = 8

// Многосимвольные операторы, от длинных к коротким.
var multiCharOps = [...]string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

// eatOp consumes the longest multi-character operator at the cursor.
func (lx *Lexer) eatOp() bool {
	rest := lx.file.Content[lx.cursor.Off:]
	for _, op := range multiCharOps {
		if len(rest) >= len(op) && string(rest[:len(op)]) == op {
			lx.cursor.Advance(len(op))
			return true
		}
	}
	return false
}

// peekRune decodes the rune at the cursor; size is 0 at end of file.
func (lx *Lexer) peekRune() (r rune, size int) {
	rest := lx.file.Content[lx.cursor.Off:]
	if len(rest) == 0 {
		return utf8.RuneError, 0
	}
	if rest[0] < utf8.RuneSelf {
		return rune(rest[0]), 1
	}
	return utf8.DecodeRune(rest)
}

// bumpRune skips one whole rune.
func (lx *Lexer) bumpRune() {
	if _, n := lx.peekRune(); n > 0 {
		lx.cursor.Advance(n)
	}
}

func isIdentStart(r rune) bool {
	if r < utf8.RuneSelf {
		return r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
	}
	return unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	if r < utf8.RuneSelf {
		return isIdentStart(r) || isDec(byte(r))
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDec(b byte) bool { return '0' <= b && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || strings.IndexByte("abcdefABCDEF", b) >= 0
}

// ".5" — число, "." перед не-цифрой — оператор.
func (lx *Lexer) isNumberAfterDot() bool {
	return lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1))
}
