// Package reassemble stitches formatted fragments into the final document
// and compares it with the input for check and diff modes.
package reassemble

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"snakefmt/internal/format"
)

// Reassemble joins fragments in document order. Every fragment ends with
// one newline, BlankBefore empty lines separate it from the previous one and
// the document has no leading or trailing blank lines. An empty fragment
// list gives an empty document.
func Reassemble(frags []format.Fragment) string {
	var sb strings.Builder
	for _, f := range frags {
		text := strings.Trim(f.Text, "\n")
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			for range f.BlankBefore {
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Changed reports whether formatting changed the document.
func Changed(original, formatted string) bool {
	return original != formatted
}

// Diff returns a unified diff from original to formatted, labelled with
// path, or "" when they are equal. Compact diffs carry no context lines.
func Diff(path, original, formatted string, compact bool) (string, error) {
	if original == formatted {
		return "", nil
	}
	context := 3
	if compact {
		context = 0
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(formatted),
		FromFile: path + " (original)",
		ToFile:   path + " (formatted)",
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(ud)
}
