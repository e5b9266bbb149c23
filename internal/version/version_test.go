package version

import (
	"strings"
	"testing"
)

func TestVersionIsSemver(t *testing.T) {
	core, _, _ := strings.Cut(Version, "-")
	if strings.Count(core, ".") != 2 {
		t.Fatalf("Version %q is not major.minor.patch", Version)
	}
}

func TestPrettyWithoutColor(t *testing.T) {
	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "dev", "1.2"} {
		if got := Pretty(v, false); got != v {
			t.Errorf("Pretty(%q, false) = %q", v, got)
		}
	}
}

func TestPrettyColored(t *testing.T) {
	got := Pretty("1.2.3-rc.1", true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", got)
	}
	if !strings.HasSuffix(got, "-rc.1") {
		t.Fatalf("suffix must be kept uncoloured: %q", got)
	}
	plain := strings.NewReplacer("\x1b[33;1m", "", "\x1b[32;1m", "", "\x1b[34;1m", "", "\x1b[0m", "").Replace(got)
	if plain != "1.2.3-rc.1" {
		t.Fatalf("stripped = %q", plain)
	}
	if got := Pretty("nightly", true); got != "nightly" {
		t.Fatalf("non-semver must be returned as is, got %q", got)
	}
}
