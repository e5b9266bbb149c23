package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByContext(t *testing.T) {
	e, ok := Lookup(Global, "rule")
	require.True(t, ok)
	assert.Equal(t, KindNamed, e.Kind)
	assert.Equal(t, Rule, e.Body)
	assert.Equal(t, NameOptional, e.Name)

	e, ok = Lookup(Rule, "input")
	require.True(t, ok)
	assert.Equal(t, KindSection, e.Kind)
	assert.Equal(t, ArityMixed, e.Arity)

	e, ok = Lookup(Rule, "run")
	require.True(t, ok)
	assert.Equal(t, KindCode, e.Kind)

	_, ok = Lookup(Global, "input")
	assert.False(t, ok, "input is only a section inside rules")
	_, ok = Lookup(Rule, "rule")
	assert.False(t, ok, "rules do not nest")
}

func TestArities(t *testing.T) {
	cases := []struct {
		ctx  Context
		word string
		want Arity
	}{
		{Rule, "threads", AritySingle},
		{Rule, "shell", AritySingle},
		{Rule, "envmodules", ArityPositional},
		{Rule, "params", ArityMixed},
		{Global, "localrules", ArityPositional},
		{Global, "configfile", AritySingle},
		{Module, "snakefile", AritySingle},
		{Subworkflow, "workdir", AritySingle},
	}
	for _, tc := range cases {
		e, ok := Lookup(tc.ctx, tc.word)
		require.True(t, ok, "%s/%s", tc.ctx, tc.word)
		assert.Equal(t, tc.want, e.Arity, "%s/%s", tc.ctx, tc.word)
	}
}

func TestNamedRequirements(t *testing.T) {
	for _, w := range []string{"subworkflow", "module"} {
		e, _ := Lookup(Global, w)
		assert.Equal(t, NameRequired, e.Name, w)
	}
	e, _ := Lookup(Global, "use")
	assert.Equal(t, KindUse, e.Kind)
}

func TestWrapperChains(t *testing.T) {
	assert.True(t, IsWrapper("if"))
	assert.True(t, IsWrapper("finally"))
	assert.False(t, IsWrapper("def"))

	assert.True(t, Continues("if", "elif"))
	assert.True(t, Continues("elif", "else"))
	assert.True(t, Continues("for", "else"))
	assert.True(t, Continues("try", "except"))
	assert.True(t, Continues("except", "finally"))
	assert.False(t, Continues("with", "else"))
	assert.False(t, Continues("if", "except"))

	assert.True(t, IsBare("else"))
	assert.False(t, IsBare("elif"))
}

func TestWordsSorted(t *testing.T) {
	words := Words(Subworkflow)
	assert.Equal(t, []string{"configfile", "snakefile", "workdir"}, words)
}

func TestSuggest(t *testing.T) {
	w, ok := Suggest(Rule, "outptu")
	require.True(t, ok)
	assert.Equal(t, "output", w)

	w, ok = Suggest(Subworkflow, "workdr")
	require.True(t, ok)
	assert.Equal(t, "workdir", w)

	_, ok = Suggest(Module, "completely_unrelated")
	assert.False(t, ok)
}
