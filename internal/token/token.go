package token

import (
	"snakefmt/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind  Kind
	Span  source.Span
	Text  string
	Start source.LineCol
	End   source.LineCol
}

// Is reports whether the token is an operator with the given text.
func (t Token) Is(op string) bool {
	return t.Kind == Op && t.Text == op
}

// IsKeyword reports whether the token is the given reserved word.
func (t Token) IsKeyword(word string) bool {
	return t.Kind == Keyword && t.Text == word
}

// IsWord reports whether the token is a Name or a Keyword.
func (t Token) IsWord() bool {
	return t.Kind == Name || t.Kind == Keyword
}

// IsLiteral reports whether the token is a numeric or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Number, String, FString:
		return true
	default:
		return false
	}
}

// IsLayout reports whether the token only carries line structure.
func (t Token) IsLayout() bool {
	switch t.Kind {
	case Newline, NL, Indent, Dedent, EOF:
		return true
	default:
		return false
	}
}

// IsOpenBracket reports whether the token opens a bracket pair.
func (t Token) IsOpenBracket() bool {
	return t.Kind == Op && (t.Text == "(" || t.Text == "[" || t.Text == "{")
}

// IsCloseBracket reports whether the token closes a bracket pair.
func (t Token) IsCloseBracket() bool {
	return t.Kind == Op && (t.Text == ")" || t.Text == "]" || t.Text == "}")
}

// Multiline reports whether the token text spans more than one physical line.
func (t Token) Multiline() bool {
	return t.End.Line > t.Start.Line
}
