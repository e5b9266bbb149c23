package lexer

import (
	"snakefmt/internal/source"
	"snakefmt/internal/token"
)

// StringInteriorLines returns the 1-based numbers of the lines of text that
// begin inside a multi-line string literal. Changing the indentation of such
// a line changes the value of the literal.
func StringInteriorLines(text string) (map[int]bool, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("<fragment>", []byte(text))
	lx := New(fs.Get(id), Options{})

	lines := make(map[int]bool)
	for tok := range lx.All() {
		if tok.Kind != token.String && tok.Kind != token.FString {
			continue
		}
		for l := tok.Start.Line + 1; l <= tok.End.Line; l++ {
			lines[int(l)] = true
		}
	}
	return lines, lx.Err()
}
