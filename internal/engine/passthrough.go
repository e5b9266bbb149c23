package engine

import (
	"context"
	"errors"
	"strings"

	"snakefmt/internal/diag"
	"snakefmt/internal/lexer"
)

// Passthrough is the deterministic stand-in for a real code formatter. It
// keeps code as written apart from whitespace: trailing blanks are stripped,
// runs of blank lines are collapsed to two and the result starts and ends
// without blank lines. Lines inside multi-line strings are left alone.
//
// Code that does not tokenize is rejected with an *Error, the way a real
// formatter rejects code it cannot parse.
type Passthrough struct{}

func (Passthrough) Fingerprint() string { return "passthrough" }

// FormatCode implements Engine.
func (Passthrough) FormatCode(_ context.Context, text string, _ int) (string, error) {
	interior, err := lexer.StringInteriorLines(text)
	if err != nil {
		e := &Error{Code: diag.FmtEngineFailed, Reason: "cannot parse code", Err: err}
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			e.Pos = lexErr.Pos
			e.Reason = "cannot parse code: " + lexErr.Reason
		}
		return "", e
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for i, line := range lines {
		// строка, которая начинается или заканчивается внутри строкового литерала, не трогается
		inString := interior[i+1] || interior[i+2]
		if !inString {
			line = strings.TrimRight(line, " \t\f")
		}
		if line == "" && !inString {
			blanks++
			continue
		}
		if len(out) > 0 {
			for range min(blanks, 2) {
				out = append(out, "")
			}
		}
		blanks = 0
		out = append(out, line)
	}
	if len(out) == 0 {
		return "", nil
	}
	return strings.Join(out, "\n") + "\n", nil
}
