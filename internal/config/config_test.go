package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectFile), `
[tool.black]
line-length = 100

[tool.snakefmt]
line_length = 100
skip_string_normalization = true
target_version = ["py311", "py312"]
`)
	nested := filepath.Join(root, "workflow", "rules")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ProjectFile), cfg.Path)
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, 100, cfg.LineLength)
	assert.True(t, cfg.SkipStringNormalization)
	assert.Equal(t, []string{"py311", "py312"}, cfg.TargetVersion)
	assert.Equal(t, DefaultInclude, cfg.Include, "unset keys keep their defaults")

	fc := cfg.FormatContext()
	assert.Equal(t, 100, fc.LineLength)
	assert.Equal(t, "black", fc.Engine.Executable)
	assert.Equal(t, []string{"py311", "py312"}, fc.Engine.TargetVersions)
}

func TestDiscoverWithoutTable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectFile), "[project]\nname = \"wf\"\n")

	cfg, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDiscoverNothing(t *testing.T) {
	_, ok, err := Find(t.TempDir())
	require.NoError(t, err)
	if ok {
		t.Skip("a pyproject.toml exists above the temp dir")
	}
	cfg, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 88, cfg.LineLength)
}

func TestLoadExplicit(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "snakefmt.yaml")
		writeFile(t, path, "line_length: 79\nexclude: '/tests/'\nblack_executable: /opt/black\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 79, cfg.LineLength)
		assert.Equal(t, "/tests/", cfg.Exclude)
		assert.Equal(t, "/opt/black", cfg.BlackExecutable)
		assert.Equal(t, path, cfg.Path)
	})

	t.Run("empty yaml", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yml")
		writeFile(t, path, "")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 88, cfg.LineLength)
	})

	t.Run("toml top level", func(t *testing.T) {
		path := filepath.Join(dir, "snakefmt.toml")
		writeFile(t, path, "line_length = 120\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 120, cfg.LineLength)
	})

	t.Run("toml table", func(t *testing.T) {
		path := filepath.Join(dir, "other.toml")
		writeFile(t, path, "[tool.snakefmt]\nline_length = 60\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 60, cfg.LineLength)
	})
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name, file, content, want string
	}{
		{"unknown pyproject key", ProjectFile, "[tool.snakefmt]\nline_lenght = 1\n", "unknown key [tool.snakefmt].line_lenght"},
		{"unknown toml key", "a.toml", "colour = true\n", "unknown key colour"},
		{"unknown yaml key", "a.yaml", "colour: true\n", "failed to parse YAML"},
		{"bad toml", "b.toml", "line_length = \n", "failed to parse TOML"},
		{"negative length", "c.toml", "line_length = -1\n", "line_length must be positive"},
		{"bad include", "d.toml", "include = \"(\"\n", "invalid include pattern"},
		{"bad target", "e.toml", "target_version = [\"py2\"]\n", "invalid target_version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name, tt.file)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPatterns(t *testing.T) {
	include, exclude, err := Default().Patterns()
	require.NoError(t, err)

	for _, name := range []string{"Snakefile", "snakefile", "align.smk"} {
		assert.True(t, include.MatchString(name), name)
	}
	for _, name := range []string{"Snakefile.bak", "setup.py", "smk"} {
		assert.False(t, include.MatchString(name), name)
	}
	assert.True(t, exclude.MatchString("/.snakemake/"))
	assert.True(t, exclude.MatchString("/wf/.git/"))
	assert.False(t, exclude.MatchString("/workflow/rules/"))

	include, exclude, err = Config{}.Patterns()
	require.NoError(t, err)
	assert.Nil(t, include)
	assert.Nil(t, exclude)
}
