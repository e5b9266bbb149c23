package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = []color.Attribute{color.FgYellow, color.Bold}
	versionMinorColor = []color.Attribute{color.FgGreen, color.Bold}
	versionPatchColor = []color.Attribute{color.FgBlue, color.Bold}
)

// Version is the semantic version of snakefmt, overridable with
// -ldflags "-X snakefmt/internal/version.Version=...".
var Version = "0.1.0-dev"

// Pretty раскрашивает major.minor.patch; суффикс после '-' или '+' остаётся как есть.
// Строки, не похожие на semver, возвращаются без изменений.
func Pretty(v string, colored bool) string {
	core, suffix := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, suffix = v[:i], v[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	if !colored {
		return v
	}
	return colorize(versionMajorColor, parts[0]) + "." +
		colorize(versionMinorColor, parts[1]) + "." +
		colorize(versionPatchColor, parts[2]) + suffix
}

func colorize(attrs []color.Attribute, s string) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}
