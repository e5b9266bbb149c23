package format_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"snakefmt/internal/block"
	"snakefmt/internal/classify"
	"snakefmt/internal/diag"
	"snakefmt/internal/engine"
	"snakefmt/internal/format"
	"snakefmt/internal/lexer"
	"snakefmt/internal/reassemble"
	"snakefmt/internal/source"
)

func classifySource(t *testing.T, src string) (*source.File, *block.Root) {
	t.Helper()

	fs := source.NewFileSet()
	id := fs.AddVirtual("Snakefile", []byte(src))
	sf := fs.Get(id)
	root, err := classify.Classify(sf, lexer.New(sf, lexer.Options{}))
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	return sf, root
}

func formatWith(t *testing.T, src string, lineLength int, eng engine.Engine) (string, error) {
	t.Helper()

	sf, root := classifySource(t, src)
	frags, err := format.Format(context.Background(), sf, root, format.Context{LineLength: lineLength}, eng)
	if err != nil {
		return "", err
	}
	return reassemble.Reassemble(frags), nil
}

func formatSource(t *testing.T, src string, lineLength int) string {
	t.Helper()

	out, err := formatWith(t, src, lineLength, engine.Passthrough{})
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	return out
}

func TestFormatScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "sections get one space after the colon",
			src:  "rule a:\n    input: \"x.txt\"\n    output:\"y.txt\"",
			want: "rule a:\n    input: \"x.txt\"\n    output: \"y.txt\"\n",
		},
		{
			name: "blank lines between blocks collapse to one",
			src:  "rule a:\n    threads: 1\n\n\n\nrule b:\n    threads: 2\n",
			want: "rule a:\n    threads: 1\n\nrule b:\n    threads: 2\n",
		},
		{
			name: "comment stays on its value when the list is split",
			src:  "rule a:\n    input: \"a\", \"b\",  # second\n        \"c\"\n",
			want: "rule a:\n    input:\n        \"a\",\n        \"b\",  # second\n        \"c\",\n",
		},
		{
			name: "leading and trailing blank lines are removed",
			src:  "\n\n\nrule a:\n    threads: 1\n\n\n",
			want: "rule a:\n    threads: 1\n",
		},
		{
			name: "single blank line is kept",
			src:  "x = 1\n\nrule a:\n    threads: 1\n",
			want: "x = 1\n\nrule a:\n    threads: 1\n",
		},
		{
			name: "empty section is retained",
			src:  "rule a:\n    input:\n    output: \"b\"\n",
			want: "rule a:\n    input:\n    output: \"b\"\n",
		},
		{
			name: "header comment moves two spaces after the colon",
			src:  "rule a:     # note\n    threads:4\n",
			want: "rule a:  # note\n    threads: 4\n",
		},
		{
			name: "use rule with sections",
			src:  "use rule a   from m as b with:\n    threads:  2\n",
			want: "use rule a from m as b with:\n    threads: 2\n",
		},
		{
			name: "use rule without sections",
			src:  "use  rule * from m as m_*\n",
			want: "use rule * from m as m_*\n",
		},
		{
			name: "directives",
			src:  "configfile:\"c.yaml\"\nlocalrules:a,b\n",
			want: "configfile: \"c.yaml\"\nlocalrules: a, b\n",
		},
		{
			name: "onstart body is code",
			src:  "onstart:\n    print( 'hi' )   \n",
			want: "onstart:\n    print( 'hi' )\n",
		},
		{
			name: "lambda parameters stay in one value",
			src:  "rule a:\n    threads:lambda wildcards,attempt:attempt*2\n    resources:\n        mem_mb=lambda wildcards, attempt: attempt * 1000,\n        disk=10\n",
			want: "rule a:\n    threads: lambda wildcards, attempt: attempt * 2\n    resources: mem_mb=lambda wildcards, attempt: attempt * 1000, disk=10\n",
		},
		{
			name: "empty document",
			src:  "\n\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatSource(t, tt.src, 88)
			if got != tt.want {
				t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestPlainCodeMatchesEngine(t *testing.T) {
	sources := []string{
		"import os\nx=1   \n\n\n\n\ndef f( a ):\n    return a\n",
		"\n\nx = 1\n# trailing comment\n",
		"if x:\n    y = 1\nelse:\n    y = 2\n",
	}
	for _, src := range sources {
		direct, err := engine.Passthrough{}.FormatCode(context.Background(), src, 88)
		if err != nil {
			t.Fatalf("engine: %v", err)
		}
		if got := formatSource(t, src, 88); got != direct {
			t.Errorf("plain code differs from engine output:\n got: %q\nwant: %q", got, direct)
		}
	}
}

const richSnakefile = `import os
configfile:   "config.yaml"


# main target
rule all:
    input: expand( "out/{s}.txt" , s = SAMPLES )  # all outputs



rule map:   # mapping
    input:
        "ref.fa",
        # the reads
        reads = "r.fq"
    output: "out.bam"
    threads:8
    params:
        extra = config[ "x" ][ 1 : ],
    shell:
        """
        bwa mem {input} > {output}
        """
    # done

if config.get("y"):
    rule extra:
        output: touch("extra.flag")
else:
    x = -1
`

const richFormatted = `import os
configfile: "config.yaml"

# main target
rule all:
    input: expand("out/{s}.txt", s=SAMPLES)  # all outputs

rule map:  # mapping
    input:
        "ref.fa",
        # the reads
        reads="r.fq",
    output: "out.bam"
    threads: 8
    params: extra=config["x"][1:]
    shell:
        """
        bwa mem {input} > {output}
        """
    # done

if config.get("y"):
    rule extra:
        output: touch("extra.flag")
else:
    x = -1
`

func TestFormatRichFile(t *testing.T) {
	got := formatSource(t, richSnakefile, 88)
	if got != richFormatted {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, richFormatted)
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	inputs := []string{
		richSnakefile,
		"rule a:\n    input: \"a\", \"b\",  # second\n        \"c\"\n",
		"rule a:\n    input: \"aaaaaaaaaa\", \"bbbbbbbbbb\"\n    shell: \"cccccccccccccccccccccccccc\"\n",
		"rule a:\n    run:\n        shell(\"\"\"\n    echo hi\n\"\"\")\n",
		"rule a:\n    input:  # files\n        # first\n        \"x\",  # x\n        \"y\",\n        # tail\n    # end\n",
	}
	for _, lineLength := range []int{88, 30} {
		for _, src := range inputs {
			once := formatSource(t, src, lineLength)
			twice := formatSource(t, once, lineLength)
			if once != twice {
				t.Errorf("not idempotent at %d:\nonce:  %q\ntwice: %q", lineLength, once, twice)
			}
		}
	}
}

func TestSectionWidthPolicy(t *testing.T) {
	src := "rule a:\n    input: \"aaaaaaaaaa\", \"bbbbbbbbbb\"\n    shell: \"cccccccccccccccccccccccccc\"\n"
	want := "rule a:\n" +
		"    input:\n        \"aaaaaaaaaa\",\n        \"bbbbbbbbbb\",\n" +
		"    shell:\n        \"cccccccccccccccccccccccccc\"\n"
	if got := formatSource(t, src, 30); got != want {
		t.Fatalf("narrow layout:\n got: %q\nwant: %q", got, want)
	}
	if got := formatSource(t, want, 88); got != src {
		t.Fatalf("wide layout:\n got: %q\nwant: %q", got, src)
	}
}

func TestSectionWidthUsesDisplayWidth(t *testing.T) {
	// 24 bytes, 21 columns
	src := "rule a:\n    message: \"日本語\"\n"
	if got := formatSource(t, src, 22); got != src {
		t.Fatalf("expected inline layout, got %q", got)
	}
	want := "rule a:\n    message:\n        \"日本語\"\n"
	if got := formatSource(t, src, 20); got != want {
		t.Fatalf("expected vertical layout, got %q", got)
	}
}

func TestSectionWidthCountsTrailingComment(t *testing.T) {
	src := "rule a:\n    threads: 8  # cores for the aligner\n"
	if got := formatSource(t, src, 88); got != src {
		t.Fatalf("expected inline layout, got %q", got)
	}
	// "    threads: 8" fits in 30 columns, the comment does not
	want := "rule a:\n    threads:\n        8  # cores for the aligner\n"
	got := formatSource(t, src, 30)
	if got != want {
		t.Fatalf("expected vertical layout:\n got: %q\nwant: %q", got, want)
	}
	if again := formatSource(t, got, 30); again != got {
		t.Fatalf("not idempotent: %q", again)
	}
}

func TestStringInteriorIsNotReindented(t *testing.T) {
	src := "rule a:\n    run:\n        shell(\"\"\"\n    echo hi\n\"\"\")\n"
	if got := formatSource(t, src, 88); got != src {
		t.Fatalf("string content changed:\n got: %q\nwant: %q", got, src)
	}
}

type call struct {
	text  string
	width int
}

type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) engine(rewrite func(string) string) engine.Func {
	return func(ctx context.Context, text string, width int) (string, error) {
		r.mu.Lock()
		r.calls = append(r.calls, call{text: text, width: width})
		r.mu.Unlock()
		if rewrite != nil {
			text = rewrite(text)
		}
		return engine.Passthrough{}.FormatCode(ctx, text, width)
	}
}

func TestEngineReceivesDedentedCodeAndNarrowerWidth(t *testing.T) {
	var rec recorder
	src := "x = 1\nrule a:\n    run:\n        y = 2\n        z = 3\n"
	if _, err := formatWith(t, src, 88, rec.engine(nil)); err != nil {
		t.Fatalf("format: %v", err)
	}
	want := []call{
		{text: "x = 1\n", width: 88},
		{text: "y = 2\nz = 3\n", width: 80},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %+v, want %+v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, rec.calls[i], want[i])
		}
	}
}

func TestConditionalHeadersGoThroughEngine(t *testing.T) {
	var rec recorder
	src := "if a :  # first\n    rule x:\n        threads: 1\nelif b :\n    rule y:\n        threads: 2\nelse :\n    rule z:\n        threads: 3\n"
	got, err := formatWith(t, src, 88, rec.engine(func(s string) string {
		return strings.ReplaceAll(s, " :", ":")
	}))
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "if a:  # first\n    rule x:\n        threads: 1\n" +
		"elif b:\n    rule y:\n        threads: 2\n" +
		"else:\n    rule z:\n        threads: 3\n"
	if got != want {
		t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, want)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 engine calls, got %d", len(rec.calls))
	}
	if rec.calls[1].text != "if True:\n    pass\nelif b :\n    pass\n" {
		t.Errorf("elif sent as %q", rec.calls[1].text)
	}
}

func TestTryChainWithKeywordInExcept(t *testing.T) {
	var rec recorder
	src := "try:\n    import x\nexcept ImportError:\n    include: \"a.smk\"\n"
	got, err := formatWith(t, src, 88, rec.engine(nil))
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != src {
		t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, src)
	}
	for _, c := range rec.calls {
		if strings.HasPrefix(c.text, "try:") && !strings.Contains(c.text, "except") {
			t.Fatalf("engine received a lone try clause: %q", c.text)
		}
	}
}

func TestEngineErrorIsPositioned(t *testing.T) {
	src := "rule a:\n    run:\n        x = 1\n        y = = 2\n"
	failing := engine.Func(func(context.Context, string, int) (string, error) {
		return "", &engine.Error{Code: diag.FmtEngineFailed, Pos: source.LineCol{Line: 2, Col: 1}, Reason: "cannot parse code"}
	})
	_, err := formatWith(t, src, 88, failing)
	var e *engine.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *engine.Error, got %T (%v)", err, err)
	}
	if e.Pos != (source.LineCol{Line: 4, Col: 9}) {
		t.Fatalf("position = %+v, want 4:9", e.Pos)
	}
}

func TestPlainEngineErrorIsWrapped(t *testing.T) {
	src := "x = 1\n\nrule a:\n    threads: 1\n"
	failing := engine.Func(func(context.Context, string, int) (string, error) {
		return "", errors.New("boom")
	})
	_, err := formatWith(t, src, 88, failing)
	var e *engine.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *engine.Error, got %T (%v)", err, err)
	}
	if e.Code != diag.FmtEngineFailed || e.Pos != (source.LineCol{Line: 1, Col: 1}) {
		t.Fatalf("unexpected error %+v", e)
	}
	if e.Reason != "boom" {
		t.Fatalf("reason = %q", e.Reason)
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	sf, root := classifySource(t, richSnakefile)
	first, err := format.Format(context.Background(), sf, root, format.Context{}, engine.Passthrough{})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	second, err := format.Format(context.Background(), sf, root, format.Context{}, engine.Passthrough{})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if reassemble.Reassemble(first) != reassemble.Reassemble(second) {
		t.Fatal("two runs over the same tree differ")
	}
	if first[0].BlankBefore != 0 {
		t.Fatalf("first fragment has %d blank lines before it", first[0].BlankBefore)
	}
}

func TestFormatHonoursCancellation(t *testing.T) {
	sf, root := classifySource(t, richSnakefile)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := format.Format(ctx, sf, root, format.Context{}, engine.Passthrough{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
