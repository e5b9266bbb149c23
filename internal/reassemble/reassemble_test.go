package reassemble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakefmt/internal/format"
	"snakefmt/internal/reassemble"
)

func TestReassemble(t *testing.T) {
	tests := []struct {
		name  string
		frags []format.Fragment
		want  string
	}{
		{"empty", nil, ""},
		{"single", []format.Fragment{{Text: "x = 1"}}, "x = 1\n"},
		{
			"blank lines between fragments",
			[]format.Fragment{
				{Text: "x = 1"},
				{Text: "rule a:\n    threads: 1", BlankBefore: 1},
				{Text: "y = 2"},
			},
			"x = 1\n\nrule a:\n    threads: 1\ny = 2\n",
		},
		{
			"no blank lines at the start",
			[]format.Fragment{{Text: "x = 1", BlankBefore: 1}},
			"x = 1\n",
		},
		{
			"stray newlines are trimmed",
			[]format.Fragment{{Text: "\nx = 1\n\n"}, {Text: ""}, {Text: "y = 2\n", BlankBefore: 1}},
			"x = 1\n\ny = 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reassemble.Reassemble(tt.frags))
		})
	}
}

func TestChangedAndDiff(t *testing.T) {
	orig := "rule a:\n    input:\"x\"\n"
	formatted := "rule a:\n    input: \"x\"\n"

	assert.True(t, reassemble.Changed(orig, formatted))
	assert.False(t, reassemble.Changed(formatted, formatted))

	diff, err := reassemble.Diff("Snakefile", orig, formatted, false)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- Snakefile (original)")
	assert.Contains(t, diff, "+++ Snakefile (formatted)")
	assert.Contains(t, diff, "-    input:\"x\"\n")
	assert.Contains(t, diff, "+    input: \"x\"\n")
	assert.Contains(t, diff, " rule a:\n")

	compact, err := reassemble.Diff("Snakefile", orig, formatted, true)
	require.NoError(t, err)
	assert.NotContains(t, compact, " rule a:\n")

	none, err := reassemble.Diff("Snakefile", formatted, formatted, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}
