package format

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"snakefmt/internal/block"
	"snakefmt/internal/lexer"
)

// codeLine is one line of engine output. Lines that begin inside a
// multi-line string literal are verbatim and keep their indentation.
type codeLine struct {
	text     string
	verbatim bool
}

func codeLines(out string) ([]codeLine, error) {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil, nil
	}
	interior, err := lexer.StringInteriorLines(out)
	if err != nil {
		return nil, fmt.Errorf("code formatter output does not tokenize: %w", err)
	}
	raw := strings.Split(out, "\n")
	lines := make([]codeLine, len(raw))
	for i, l := range raw {
		lines[i] = codeLine{text: l, verbatim: interior[i+1]}
	}
	return lines, nil
}

// dedent strips the indentation of the run's first statement from every
// line, leaving lines that begin inside strings untouched.
func dedent(c *block.Code) string {
	lines := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		switch {
		case i < len(c.InString) && c.InString[i]:
			lines[i] = line
		case len(line) >= c.Indent && strings.TrimLeft(line[:c.Indent], " \t") == "":
			lines[i] = line[c.Indent:]
		default:
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func u32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("uint32 overflow: %w", err))
	}
	return v
}
