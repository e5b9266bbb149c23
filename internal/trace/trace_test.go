package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, true},
		{LevelError, ScopePass, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	root := Begin(tr, ScopeDriver, "format", 0)
	Begin(tr, ScopeModule, "file:Snakefile", root.ID()).End("")
	pass := Begin(tr, ScopePass, "classify", root.ID()).WithExtra("blocks", "3").WithExtra("a", "b")
	pass.End("ok")
	root.End("")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events (file scope filtered), got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "→ format") {
		t.Errorf("unexpected begin line %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], "  ← classify (ok) {a=b, blocks=3}") {
		t.Errorf("unexpected end line %q", lines[2])
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeNode, "engine", 7, "cache hit")

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["scope"] != "node" || ev["detail"] != "cache hit" || ev["parent_id"] != float64(7) {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestNewPicksFormatByExtension(t *testing.T) {
	path := t.TempDir() + "/run.ndjson"
	tr, err := New(Config{Level: LevelPhase, OutputPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tr.Close()
	if st, ok := tr.(*StreamTracer); !ok || st.format != FormatNDJSON {
		t.Fatalf("expected NDJSON stream tracer, got %#v", tr)
	}
}

func TestDisabledTracer(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("expected Nop, got %v, %v", tr, err)
	}
	sp := Begin(tr, ScopeDriver, "x", 0)
	if sp.ID() != 0 || sp.End("") != 0 {
		t.Error("disabled span should be inert")
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Fatal("expected Nop without tracer")
	}
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx = WithTracer(ctx, tr)
	if FromContext(ctx) != tr {
		t.Fatal("tracer not found in context")
	}
	sp := Begin(tr, ScopeDriver, "run", 0)
	ctx = sp.Context(ctx)
	if got := CurrentSpan(ctx).SpanID; got != sp.ID() {
		t.Fatalf("CurrentSpan = %d, want %d", got, sp.ID())
	}
}

func TestStartAndMarkUseContext(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	ctx, run := Start(ctx, ScopeDriver, "format")
	fileCtx, file := Start(ctx, ScopeModule, "file:Snakefile")
	Mark(fileCtx, ScopeNode, "engine", "cache hit")
	file.End("")
	run.End("")

	if got := CurrentSpan(fileCtx).SpanID; got != file.ID() {
		t.Fatalf("file context span = %d, want %d", got, file.ID())
	}
	if FromContext(fileCtx) != tr {
		t.Fatal("tracer lost when the span context changed")
	}

	var events []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	if events[1]["parent_id"] != float64(run.ID()) {
		t.Errorf("file span parent = %v, want %d", events[1]["parent_id"], run.ID())
	}
	if events[2]["kind"] != "point" || events[2]["parent_id"] != float64(file.ID()) {
		t.Errorf("mark not attached to the file span: %v", events[2])
	}
}
