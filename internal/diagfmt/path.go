package diagfmt

import (
	"os"
	"path/filepath"
	"strings"
)

// autoPathLimit is the length above which PathModeAuto shortens a path.
const autoPathLimit = 40

// formatPath форматирует путь к файлу в зависимости от режима.
func formatPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeRelative:
		return relative(path, baseDir)
	case PathModeBasename:
		return filepath.Base(path)
	}

	// auto: короткие пути как есть, длинные относительно базы, иначе basename
	if len(path) <= autoPathLimit || !filepath.IsAbs(path) {
		return path
	}
	if rel := relative(path, baseDir); rel != path && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return filepath.Base(path)
}

func relative(path, baseDir string) string {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return path
		}
		baseDir = wd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(baseDir, abs)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
