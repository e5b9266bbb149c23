package block

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakefmt/internal/grammar"
	"snakefmt/internal/token"
)

func sampleTree() *Root {
	run := &Code{Lines: []string{"        print(1)"}, InString: []bool{false}, Depth: 2, StartLine: 4, EndLine: 4}
	rule := &Keyword{
		Keyword: "rule",
		Kind:    grammar.KindNamed,
		Name:    "a",
		Sections: []*Section{
			{Keyword: "input", Values: []*Value{{Atoms: []Atom{{Kind: token.String, Text: `"x"`}}}}},
			{Keyword: "run", Body: []Block{run}},
		},
	}
	cond := &Conditional{Keyword: "if", Header: "if x:", Body: []Block{rule}}
	return &Root{Blocks: []Block{&Code{Lines: []string{"x = 1"}, InString: []bool{false}}, cond}}
}

func TestWalkDocumentOrder(t *testing.T) {
	var kinds []string
	Walk(sampleTree().Blocks, func(b Block) bool {
		switch b.(type) {
		case *Code:
			kinds = append(kinds, "code")
		case *Keyword:
			kinds = append(kinds, "keyword")
		case *Conditional:
			kinds = append(kinds, "cond")
		}
		return true
	})
	assert.Equal(t, []string{"code", "cond", "keyword", "code"}, kinds)
}

func TestWalkStops(t *testing.T) {
	n := 0
	Walk(sampleTree().Blocks, func(Block) bool {
		n++
		return n < 2
	})
	assert.Equal(t, 2, n)
}

func TestValueFlags(t *testing.T) {
	v := &Value{Atoms: []Atom{{Kind: token.String, Text: "\"\"\"a\nb\"\"\""}}}
	assert.True(t, v.Multiline())
	assert.False(t, v.HasComments())
	v.Comments = []string{"# c"}
	assert.True(t, v.HasComments())
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, sampleTree()))
	want := `Code lines=0-0 depth=0 blank=0
Conditional "if x:" depth=0 blank=0
  Keyword rule a depth=0 blank=0
    Section input (mixed) values=1
      Value "x"
    Section run (mixed) values=0
      Code lines=4-4 depth=2 blank=0
`
	assert.Equal(t, want, buf.String())
}
