package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("Snakefile", []byte("rule a:\n"), 0)
	id2 := fs.Add("Snakefile", []byte("rule b:\n"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	latest, ok := fs.GetLatest("Snakefile")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v, want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "rule a:\n" {
		t.Fatalf("old version content changed: %q", got)
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.smk", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("LineIdx = %v, want %v", file.LineIdx, expected)
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], val)
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
	if file.LineCount() != 2 {
		t.Errorf("LineCount = %d, want 2", file.LineCount())
	}
}

func TestPositionAndLines(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("p.smk", []byte("rule a:\n    input: 1\nlast"))
	f := fs.Get(id)

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{7, LineCol{Line: 1, Col: 8}}, // the newline itself
		{8, LineCol{Line: 2, Col: 1}},
		{12, LineCol{Line: 2, Col: 5}},
		{21, LineCol{Line: 3, Col: 1}},
	}
	for _, tc := range cases {
		if got := f.Position(tc.off); got != tc.want {
			t.Errorf("Position(%d) = %+v, want %+v", tc.off, got, tc.want)
		}
	}

	if got := f.GetLine(2); got != "    input: 1" {
		t.Errorf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "last" {
		t.Errorf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(4); got != "" {
		t.Errorf("GetLine(4) = %q, want empty", got)
	}
	if got := f.LineStart(3); got != 21 {
		t.Errorf("LineStart(3) = %d, want 21", got)
	}
	if got := string(f.Slice(Span{File: id, Start: 8, End: 100})); got != "    input: 1\nlast" {
		t.Errorf("Slice clamped = %q", got)
	}
}

func TestLoadNormalizesAndRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Snakefile")
	raw := []byte("\xEF\xBB\xBFrule a:\r\n    threads: 1\r\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "rule a:\n    threads: 1\n" {
		t.Fatalf("content not normalized: %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF", f.Flags)
	}
	if got := Restore(f.Content, f.Flags); string(got) != string(raw) {
		t.Fatalf("Restore = %q, want %q", got, raw)
	}
}

func TestSpanRelations(t *testing.T) {
	outer := Span{Start: 0, End: 10}
	inner := Span{Start: 2, End: 5}
	other := Span{Start: 10, End: 12}

	if !outer.Contains(inner) {
		t.Error("outer should contain inner")
	}
	if outer.Overlaps(other) {
		t.Error("adjacent spans must not overlap")
	}
	if got := inner.Cover(other); got != (Span{Start: 2, End: 12}) {
		t.Errorf("Cover = %v", got)
	}
}
