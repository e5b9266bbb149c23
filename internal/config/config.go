// Package config loads formatter settings.
//
// Настройки ищутся в pyproject.toml (таблица [tool.snakefmt]) вверх по
// дереву каталогов, либо читаются из явно указанного файла TOML или YAML.
// Флаги командной строки накладываются поверх уже после загрузки.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"snakefmt/internal/engine"
	"snakefmt/internal/format"
)

const (
	// ProjectFile is the file searched for when no config is given.
	ProjectFile = "pyproject.toml"

	// DefaultInclude matches the base names of files to format.
	DefaultInclude = `(\.smk$|^Snakefile$|^snakefile$)`
	// DefaultExclude matches slash-separated paths (with a leading and, for
	// directories, a trailing slash) that are never visited.
	DefaultExclude = `/(\.snakemake|\.eggs|\.git|\.hg|\.mypy_cache|\.nox|\.tox|\.venv|venv|\.svn|_build|buck-out|build|dist)/`
)

var targetVersionRe = regexp.MustCompile(`^py3[0-9]{1,2}$`)

// Settings are the keys of a config file.
type Settings struct {
	LineLength              int      `toml:"line_length" yaml:"line_length"`
	Include                 string   `toml:"include" yaml:"include"`
	Exclude                 string   `toml:"exclude" yaml:"exclude"`
	BlackExecutable         string   `toml:"black_executable" yaml:"black_executable"`
	SkipStringNormalization bool     `toml:"skip_string_normalization" yaml:"skip_string_normalization"`
	TargetVersion           []string `toml:"target_version" yaml:"target_version"`
}

// Config is a loaded configuration.
type Config struct {
	Path string // откуда прочитано; пусто, если используются значения по умолчанию
	Root string // каталог файла конфигурации
	Settings
}

type pyproject struct {
	Tool struct {
		Snakefmt Settings `toml:"snakefmt"`
	} `toml:"tool"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{Settings: Settings{
		LineLength:      format.DefaultLineLength,
		Include:         DefaultInclude,
		Exclude:         DefaultExclude,
		BlackExecutable: "black",
	}}
}

// Find walks from startDir up to the filesystem root looking for
// pyproject.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest pyproject.toml above startDir. A project file
// without a [tool.snakefmt] table, or no project file at all, yields the
// defaults.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), err
	}
	cfg, defined, err := loadPyproject(path)
	if err != nil {
		return Config{}, err
	}
	if !defined {
		return Default(), nil
	}
	return cfg, nil
}

// Load reads an explicit config file. YAML files (.yaml, .yml) hold the
// keys at top level; TOML files hold them in [tool.snakefmt] or, when that
// table is absent, at top level.
func Load(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	}
	cfg, defined, err := loadPyproject(path)
	if err != nil || defined {
		return cfg, err
	}
	return loadTOML(path)
}

func loadPyproject(path string) (Config, bool, error) {
	cfg := Default()
	doc := pyproject{}
	doc.Tool.Snakefmt = cfg.Settings
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return Config{}, false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("tool", "snakefmt") {
		return Config{}, false, nil
	}
	for _, key := range meta.Undecoded() {
		if len(key) > 2 && key[0] == "tool" && key[1] == "snakefmt" {
			return Config{}, true, fmt.Errorf("%s: unknown key [tool.snakefmt].%s", path, strings.Join(key[2:], "."))
		}
	}
	cfg.Settings = doc.Tool.Snakefmt
	return finish(cfg, path)
}

func loadTOML(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg.Settings)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0].String())
	}
	cfg, _, err = finish(cfg, path)
	return cfg, err
}

func loadYAML(path string) (Config, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg.Settings); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	cfg, _, err = finish(cfg, path)
	return cfg, err
}

func finish(cfg Config, path string) (Config, bool, error) {
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return Config{}, true, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, true, nil
}

// Validate checks value ranges and compiles the path patterns.
func (c Config) Validate() error {
	if c.LineLength <= 0 {
		return fmt.Errorf("line_length must be positive, got %d", c.LineLength)
	}
	if _, _, err := c.Patterns(); err != nil {
		return err
	}
	for _, v := range c.TargetVersion {
		if !targetVersionRe.MatchString(v) {
			return fmt.Errorf("invalid target_version %q (want e.g. py311)", v)
		}
	}
	return nil
}

// Patterns compiles Include and Exclude. An empty pattern yields nil.
func (c Config) Patterns() (include, exclude *regexp.Regexp, err error) {
	if c.Include != "" {
		if include, err = regexp.Compile(c.Include); err != nil {
			return nil, nil, fmt.Errorf("invalid include pattern: %w", err)
		}
	}
	if c.Exclude != "" {
		if exclude, err = regexp.Compile(c.Exclude); err != nil {
			return nil, nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}
	return include, exclude, nil
}

// FormatContext returns the formatting configuration of a run.
func (c Config) FormatContext() format.Context {
	return format.Context{
		LineLength: c.LineLength,
		Engine: engine.Options{
			Executable:              c.BlackExecutable,
			SkipStringNormalization: c.SkipStringNormalization,
			TargetVersions:          append([]string(nil), c.TargetVersion...),
		},
	}
}
