package classify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakefmt/internal/block"
	"snakefmt/internal/classify"
	"snakefmt/internal/diag"
	"snakefmt/internal/grammar"
	"snakefmt/internal/lexer"
	"snakefmt/internal/source"
	"snakefmt/internal/testkit"
)

func parse(t *testing.T, src string) (*block.Root, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("Snakefile", []byte(src))
	file := fs.Get(id)
	root, err := classify.Classify(file, lexer.New(file, lexer.Options{}))
	if err == nil {
		require.NoError(t, testkit.CheckBlockInvariants(root, file))
	}
	return root, err
}

func mustParse(t *testing.T, src string) *block.Root {
	t.Helper()
	root, err := parse(t, src)
	require.NoError(t, err)
	return root
}

func valueTexts(s *block.Section) []string {
	out := make([]string, len(s.Values))
	for i, v := range s.Values {
		out[i] = block.JoinAtoms(v.Atoms)
		if v.Key != "" {
			out[i] = v.Key + "=" + out[i]
		}
	}
	return out
}

func TestRuleSections(t *testing.T) {
	root := mustParse(t, "rule a:\n    input: \"x.txt\"\n    output:\"y.txt\"\n")
	require.Len(t, root.Blocks, 1)
	kb, ok := root.Blocks[0].(*block.Keyword)
	require.True(t, ok)
	assert.Equal(t, "rule", kb.Keyword)
	assert.Equal(t, "a", kb.Name)
	assert.Equal(t, grammar.Rule, kb.Context)
	require.Len(t, kb.Sections, 2)
	assert.Equal(t, "input", kb.Sections[0].Keyword)
	assert.Equal(t, []string{`"x.txt"`}, valueTexts(kb.Sections[0]))
	assert.Equal(t, "output", kb.Sections[1].Keyword)
	assert.Equal(t, []string{`"y.txt"`}, valueTexts(kb.Sections[1]))
}

func TestPlainCodeIsOneBlock(t *testing.T) {
	src := "import os\n\n\ndef f(x):\n    return x\n\n# done\nprint(f(1))\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 1)
	code := root.Blocks[0].(*block.Code)
	assert.Equal(t, uint32(1), code.StartLine)
	assert.Equal(t, uint32(8), code.EndLine)
	assert.Equal(t, src[:len(src)-1], code.Text())
}

func TestKeywordWordsAsIdentifiers(t *testing.T) {
	root := mustParse(t, "input = 3\nrule = dict(a=1)\nx = rule.name\nprint(input, rule)\n")
	require.Len(t, root.Blocks, 1)
	_, ok := root.Blocks[0].(*block.Code)
	assert.True(t, ok)
}

func TestBlankLinesBeforeBlocks(t *testing.T) {
	root := mustParse(t, "x = 1\n\n\n\nrule a:\n    threads: 1\n\nrule b:\n    threads: 2\n")
	require.Len(t, root.Blocks, 3)
	assert.Equal(t, 0, root.Blocks[0].Blank())
	assert.Equal(t, 3, root.Blocks[1].Blank())
	assert.Equal(t, 1, root.Blocks[2].Blank())
}

func TestLeadingComments(t *testing.T) {
	root := mustParse(t, "# about a\nrule a:\n    threads: 1\n")
	require.Len(t, root.Blocks, 1)
	kb := root.Blocks[0].(*block.Keyword)
	assert.Equal(t, []string{"# about a"}, kb.Comments)

	root = mustParse(t, "# header\n\nrule a:\n    threads: 1\n")
	require.Len(t, root.Blocks, 2)
	assert.IsType(t, &block.Code{}, root.Blocks[0])
	assert.Equal(t, 1, root.Blocks[1].Blank())
}

func TestCommentPlacementInsideBlock(t *testing.T) {
	src := "rule a:  # note\n" +
		"    # inputs\n" +
		"    input: \"a\"  # the a\n" +
		"    output:  # files\n" +
		"        # first\n" +
		"        \"x\",  # x\n" +
		"        \"y\",\n" +
		"    # end\n" +
		"rule b:\n" +
		"    threads: 1\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 2)
	kb := root.Blocks[0].(*block.Keyword)
	assert.Equal(t, "# note", kb.HeaderComment)
	assert.Equal(t, []string{"# end"}, kb.Trailing)

	in := kb.Sections[0]
	assert.Equal(t, []string{"# inputs"}, in.Comments)
	assert.Equal(t, []string{"# the a"}, in.Values[0].Comments)

	out := kb.Sections[1]
	assert.Equal(t, "# files", out.HeaderComment)
	require.Len(t, out.Values, 2)
	assert.Equal(t, []string{"# first"}, out.Values[0].Leading)
	assert.Equal(t, []string{"# x"}, out.Values[0].Comments)
	assert.Empty(t, out.Values[1].Comments)
}

func TestValueSplitting(t *testing.T) {
	src := "rule a:\n" +
		"    input:\n" +
		"        \"a\",\n" +
		"        \"b\",  # second\n" +
		"        c=expand(\"{x}\", x=[1, 2]),\n"
	kb := mustParse(t, src).Blocks[0].(*block.Keyword)
	sec := kb.Sections[0]
	require.Len(t, sec.Values, 3)
	assert.Equal(t, []string{"# second"}, sec.Values[1].Comments)
	assert.Equal(t, "c", sec.Values[2].Key)
	assert.Equal(t, "expand", sec.Values[2].Atoms[0].Text)
	assert.Len(t, sec.Values[2].Atoms, 12)
}

func TestLambdaParametersDoNotSplit(t *testing.T) {
	src := "rule a:\n" +
		"    threads: lambda wildcards, attempt: attempt * 2\n" +
		"    resources:\n" +
		"        mem_mb=lambda wildcards, attempt: attempt * 1000,\n" +
		"        ref=lambda wildcards, n=1: n,\n" +
		"        disk=10\n"
	kb := mustParse(t, src).Blocks[0].(*block.Keyword)
	require.Len(t, kb.Sections, 2)

	threads := kb.Sections[0]
	require.Len(t, threads.Values, 1)
	assert.Equal(t, "lambda", threads.Values[0].Atoms[0].Text)

	res := kb.Sections[1]
	require.Len(t, res.Values, 3)
	assert.Equal(t, []string{"mem_mb", "ref", "disk"}, []string{res.Values[0].Key, res.Values[1].Key, res.Values[2].Key})
	assert.Len(t, res.Values[1].Atoms, 8)
}

func TestLambdaBodyCommaStillSplits(t *testing.T) {
	src := "rule a:\n    params: lambda w: w.x, \"y\"\n"
	kb := mustParse(t, src).Blocks[0].(*block.Keyword)
	assert.Len(t, kb.Sections[0].Values, 2)
}

func TestCommentInsideBracketsStaysWithValue(t *testing.T) {
	src := "rule a:\n    input: \"a\", expand(\n        \"{x}\",  # pattern\n        x=X,\n    )\n"
	kb := mustParse(t, src).Blocks[0].(*block.Keyword)
	sec := kb.Sections[0]
	require.Len(t, sec.Values, 2)
	assert.Empty(t, sec.Values[0].Comments)
	assert.Equal(t, []string{"# pattern"}, sec.Values[1].Comments)
}

func TestEmptySectionRetained(t *testing.T) {
	kb := mustParse(t, "rule a:\n    input:\n    output: \"x\"\n").Blocks[0].(*block.Keyword)
	require.Len(t, kb.Sections, 2)
	assert.Empty(t, kb.Sections[0].Values)
	assert.Len(t, kb.Sections[1].Values, 1)
}

func TestRunSectionIsCode(t *testing.T) {
	src := "rule a:\n    output: \"x\"\n    run:\n        with open(output[0], \"w\") as f:\n            f.write(\"x\")\n"
	kb := mustParse(t, src).Blocks[0].(*block.Keyword)
	require.Len(t, kb.Sections, 2)
	run := kb.Sections[1]
	assert.Equal(t, "run", run.Keyword)
	require.Len(t, run.Body, 1)
	code := run.Body[0].(*block.Code)
	assert.Equal(t, 2, code.Depth)
	assert.Equal(t, 8, code.Indent)
	assert.Len(t, code.Lines, 2)
}

func TestMultilineStringLinesMarked(t *testing.T) {
	src := "onstart:\n    shell(\"\"\"\nset -e\n    echo hi\n\"\"\")\n"
	kb := mustParse(t, src).Blocks[0].(*block.Keyword)
	code := kb.Body[0].(*block.Code)
	assert.Equal(t, []bool{false, true, true, true}, code.InString)
}

func TestUseRule(t *testing.T) {
	root := mustParse(t, "use rule a from m as b with:\n    threads: 2\n\nuse rule *  from m as m_*\n")
	require.Len(t, root.Blocks, 2)
	with := root.Blocks[0].(*block.Keyword)
	assert.Equal(t, grammar.KindUse, with.Kind)
	assert.Equal(t, "rule a from m as b", with.Header)
	assert.True(t, with.With)
	require.Len(t, with.Sections, 1)

	plain := root.Blocks[1].(*block.Keyword)
	assert.Equal(t, "rule * from m as m_*", plain.Header)
	assert.False(t, plain.With)
	assert.Empty(t, plain.Sections)
}

func TestDirectivesAndCodeBlocks(t *testing.T) {
	root := mustParse(t, "configfile: \"config.yaml\"\nlocalrules: a, b\nonstart:\n    print(\"hi\")\n")
	require.Len(t, root.Blocks, 3)
	cfg := root.Blocks[0].(*block.Keyword)
	assert.Equal(t, grammar.KindSection, cfg.Kind)
	assert.Equal(t, []string{`"config.yaml"`}, valueTexts(cfg.Sections[0]))
	lr := root.Blocks[1].(*block.Keyword)
	assert.Equal(t, []string{"a", "b"}, valueTexts(lr.Sections[0]))
	on := root.Blocks[2].(*block.Keyword)
	require.Len(t, on.Body, 1)
	assert.Equal(t, 1, on.Body[0].(*block.Code).Depth)
}

func TestSubworkflowAndModule(t *testing.T) {
	root := mustParse(t, "subworkflow other:\n    workdir: \"../o\"\n\nmodule m:\n    snakefile: \"x\"\n    config: config\n")
	require.Len(t, root.Blocks, 2)
	assert.Equal(t, grammar.Subworkflow, root.Blocks[0].(*block.Keyword).Context)
	assert.Equal(t, "m", root.Blocks[1].(*block.Keyword).Name)
}

func TestWrapperHostingRules(t *testing.T) {
	src := "if config[\"x\"]:\n    rule a:\n        threads: 1\nelse:\n    x = 1\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 2)
	ifb := root.Blocks[0].(*block.Conditional)
	assert.Equal(t, "if", ifb.Keyword)
	assert.Equal(t, `if config["x"]:`, ifb.Header)
	require.Len(t, ifb.Body, 1)
	assert.Equal(t, 1, ifb.Body[0].(*block.Keyword).Depth)

	elseb := root.Blocks[1].(*block.Conditional)
	assert.Equal(t, "else", elseb.Keyword)
	require.Len(t, elseb.Body, 1)
	assert.IsType(t, &block.Code{}, elseb.Body[0])
}

func TestPureCodeWrapperMerged(t *testing.T) {
	src := "if x:\n    y = 1\nelse:\n    y = 2\nrule a:\n    threads: 1\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 2)
	code := root.Blocks[0].(*block.Code)
	assert.Equal(t, uint32(1), code.StartLine)
	assert.Equal(t, uint32(4), code.EndLine)
}

func TestChainDecidedAsWhole(t *testing.T) {
	src := "try:\n    import x\nexcept ImportError:\n    include: \"a.smk\"\nfinally:\n    y = 2\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 3)
	kws := make([]string, 0, 3)
	for _, b := range root.Blocks {
		cond, ok := b.(*block.Conditional)
		require.True(t, ok, "every clause of the chain must be a Conditional, got %T", b)
		kws = append(kws, cond.Keyword)
	}
	assert.Equal(t, []string{"try", "except", "finally"}, kws)
	assert.IsType(t, &block.Code{}, root.Blocks[0].(*block.Conditional).Body[0])
	assert.IsType(t, &block.Keyword{}, root.Blocks[1].(*block.Conditional).Body[0])
}

func TestChainLaterClauseHostsKeyword(t *testing.T) {
	src := "x = 0\nif a:\n    y = 1\nelif b:\n    y = 2\nelse:\n    rule r:\n        threads: 1\nz = 3\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 5)
	assert.IsType(t, &block.Code{}, root.Blocks[0])
	assert.Equal(t, "if", root.Blocks[1].(*block.Conditional).Keyword)
	assert.Equal(t, "elif", root.Blocks[2].(*block.Conditional).Keyword)
	assert.Equal(t, "else", root.Blocks[3].(*block.Conditional).Keyword)
	assert.IsType(t, &block.Code{}, root.Blocks[4])
}

func TestAllCodeTryChainMerged(t *testing.T) {
	src := "try:\n    import x\nexcept ImportError:\n    x = None\nelse:\n    pass\nrule a:\n    threads: 1\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 2)
	code := root.Blocks[0].(*block.Code)
	assert.Equal(t, uint32(1), code.StartLine)
	assert.Equal(t, uint32(6), code.EndLine)
}

func TestNewChainAfterUnrelatedClause(t *testing.T) {
	// второй if открывает новую цепочку, а не продолжает первую
	src := "if a:\n    y = 1\nif b:\n    rule r:\n        threads: 1\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 2)
	assert.IsType(t, &block.Code{}, root.Blocks[0])
	assert.Equal(t, "if", root.Blocks[1].(*block.Conditional).Keyword)
}

func TestOneLineCompoundIsCode(t *testing.T) {
	root := mustParse(t, "if x: y = 1\nrule a:\n    threads: 1\n")
	require.Len(t, root.Blocks, 2)
	assert.IsType(t, &block.Code{}, root.Blocks[0])
}

func TestClassifyErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
		line uint32
		col  uint32
	}{
		{"missing colon", "rule a\n    input: 1\n", diag.SynExpectColon, 1, 6},
		{"content after header", "rule a: input: 1\n", diag.SynExpectNewline, 1, 9},
		{"invalid name", "rule 3:\n    input: 1\n", diag.SynInvalidName, 1, 6},
		{"name required", "module:\n    snakefile: \"x\"\n", diag.SynInvalidName, 1, 1},
		{"unrecognised", "rule a:\n    inputs: 1\n", diag.SynUnrecognisedKeyword, 2, 5},
		{"host keyword in rule", "rule a:\n    if x:\n        pass\n", diag.SynUnrecognisedKeyword, 2, 5},
		{"duplicate", "rule a:\n    input: 1\n    input: 2\n", diag.SynDuplicateKeyword, 3, 5},
		{"empty block", "rule a:\nx = 1\n", diag.SynEmptyBlock, 1, 1},
		{"empty run", "rule a:\n    run:\n", diag.SynEmptyBlock, 2, 5},
		{"over-indented", "rule a:\n    input:\n        \"a\",\n        output: \"b\"\n", diag.SynOverIndented, 4, 9},
		{"equals without key", "rule a:\n    params: =1\n", diag.SynInvalidKeyValue, 2, 13},
		{"invalid key", "rule a:\n    params: \"x\"=1\n", diag.SynInvalidKeyValue, 2, 13},
		{"empty value", "rule a:\n    input: \"a\",, \"b\"\n", diag.SynInvalidKeyValue, 2, 16},
		{"positional after keyword", "rule a:\n    input: a=1, \"b\"\n", diag.SynInvalidKeyValue, 2, 17},
		{"too many", "rule a:\n    threads: 1, 2\n", diag.SynTooManyParams, 2, 17},
		{"positional required", "rule a:\n    envmodules: m=1\n", diag.SynPositionalRequired, 2, 17},
		{"colon without with", "use rule a from m:\n    threads: 1\n", diag.SynExpectNewline, 1, 18},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.src)
			var cerr *classify.Error
			require.True(t, errors.As(err, &cerr), "expected *classify.Error, got %v", err)
			assert.Equal(t, tc.code, cerr.Code, cerr.Error())
			assert.Equal(t, source.LineCol{Line: tc.line, Col: tc.col}, cerr.Pos, cerr.Error())
		})
	}
}

func TestUnrecognisedKeywordSuggestion(t *testing.T) {
	_, err := parse(t, "rule a:\n    inputs: 1\n")
	var cerr *classify.Error
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, `did you mean "input"?`)

	_, err = parse(t, "rule a:\n    frobnicate: 1\n")
	require.ErrorAs(t, err, &cerr)
	assert.NotContains(t, cerr.Reason, "did you mean")
}

func TestLexErrorPassesThrough(t *testing.T) {
	_, err := parse(t, "rule a:\n    input: \"x.txt\n")
	var lerr *lexer.Error
	require.True(t, errors.As(err, &lerr), "expected *lexer.Error, got %v", err)
	assert.Equal(t, diag.LexUnterminatedString, lerr.Code)
	assert.Equal(t, source.LineCol{Line: 2, Col: 12}, lerr.Pos)
}

func TestInvariantsOnMixedFile(t *testing.T) {
	src := "import os\n\n" +
		"configfile: \"c.yaml\"\n\n" +
		"# the main rule\n" +
		"rule all:\n    input:\n        \"a\",\n        \"b\",\n\n" +
		"if os.name == \"nt\":\n\n    rule win:\n        shell: \"dir\"\n" +
		"else:\n    rule nix:\n        shell:\n            \"\"\"\n            ls\n            \"\"\"\n\n" +
		"def helper():\n    return 1\n"
	root := mustParse(t, src)
	require.Len(t, root.Blocks, 6)
	assert.IsType(t, &block.Code{}, root.Blocks[0])
	assert.IsType(t, &block.Keyword{}, root.Blocks[1])
	assert.IsType(t, &block.Keyword{}, root.Blocks[2])
	assert.IsType(t, &block.Conditional{}, root.Blocks[3])
	assert.IsType(t, &block.Conditional{}, root.Blocks[4])
	assert.IsType(t, &block.Code{}, root.Blocks[5])
	assert.Equal(t, 1, root.Blocks[3].(*block.Conditional).Body[0].Blank())
}
