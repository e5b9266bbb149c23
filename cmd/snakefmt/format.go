package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"snakefmt/internal/config"
	"snakefmt/internal/driver"
	"snakefmt/internal/engine"
	"snakefmt/internal/observ"
)

func init() {
	flags := rootCmd.Flags()
	flags.IntP("line-length", "l", 0, "how many characters per line to allow (default from config, else 88)")
	flags.Bool("check", false, "don't write the files back, just return the status; exit 1 if any file would change")
	flags.Bool("diff", false, "don't write the files back, just output a diff for each file on stdout")
	flags.Bool("compact-diff", false, "same as --diff but only shows lines that would change")
	flags.String("include", "", "regular expression matching file names to format in directories")
	flags.String("exclude", "", "regular expression matching paths to skip in directories")
	flags.Bool("no-gitignore", false, "do not skip paths listed in .gitignore")
	flags.String("engine", "black", "code formatter for Python code (black|passthrough)")
	flags.String("black", "", "path to the black executable")
	flags.StringSliceP("target-version", "t", nil, "Python versions black should target (e.g. py311)")
	flags.BoolP("skip-string-normalization", "S", false, "don't normalize string quotes or prefixes")
	flags.Bool("cache", false, "cache formatter results on disk between runs")
	flags.Bool("clear-cache", false, "drop the on-disk cache before running")
	flags.Int("jobs", 0, "max parallel workers (0=auto)")
	flags.String("ui", "auto", "progress view (auto|on|off)")
	flags.String("diag-format", "pretty", "error output format (pretty|json)")
}

type runSettings struct {
	check, diff, compact bool
	quiet, timings       bool
	diagJSON             bool
	colorOut, colorErr   bool
	ui                   uiMode
}

func runFormat(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	rs, err := readRunSettings(cmd)
	if err != nil {
		return &exitError{code: exitFailure, msg: fmt.Sprintf("error: %v", err)}
	}

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return &exitError{code: exitFailure, msg: fmt.Sprintf("error: %v", err)}
	}
	include, exclude, err := cfg.Patterns()
	if err != nil {
		return &exitError{code: exitFailure, msg: fmt.Sprintf("error: %v", err)}
	}

	fc := cfg.FormatContext()
	eng, cache, err := buildEngine(cmd, cfg)
	if err != nil {
		renderError(os.Stderr, nil, err, rs)
		return &exitError{code: exitFailure}
	}

	ctx := cmd.Context()
	opts := driver.Options{
		Format:      fc,
		Engine:      eng,
		Diff:        rs.diff,
		CompactDiff: rs.compact,
	}

	if len(args) == 1 && args[0] == "-" {
		return formatStdin(ctx, cmd.InOrStdin(), opts, rs)
	}
	for _, a := range args {
		if a == "-" {
			return &exitError{code: exitFailure, msg: "error: \"-\" cannot be combined with other paths"}
		}
	}

	noGitignore, _ := cmd.Flags().GetBool("no-gitignore")
	jobs, _ := cmd.Flags().GetInt("jobs")
	timer := observ.NewTimer()
	run := driver.RunOptions{
		Options:   opts,
		Include:   include,
		Exclude:   exclude,
		Gitignore: !noGitignore,
		Write:     !rs.check && !rs.diff,
		Jobs:      jobs,
		Timer:     timer,
	}
	if cache != nil {
		fileCache, err := driver.LoadFileCache(cache.Dir())
		if err != nil {
			return &exitError{code: exitFailure, msg: fmt.Sprintf("error: cannot load cache: %v", err)}
		}
		run.Cache = fileCache
	}

	files, err := driver.CollectFiles(ctx, args, run)
	if err != nil {
		return &exitError{code: exitFailure, msg: fmt.Sprintf("error: %v", err)}
	}
	if len(files) == 0 {
		if !rs.quiet {
			fmt.Fprintln(os.Stderr, "No Snakefiles are present to be formatted. Nothing to do 😴")
		}
		return nil
	}

	var results []*driver.Result
	if shouldUseTUI(rs.ui, len(files)) && !rs.diff && !rs.quiet {
		results, err = runFormatWithUI(ctx, "snakefmt", files, run)
	} else {
		results, err = driver.FormatPaths(ctx, files, run)
	}
	if err != nil {
		return &exitError{code: exitFailure, msg: fmt.Sprintf("error: %v", err)}
	}
	if err := run.Cache.Save(); err != nil && !rs.quiet {
		fmt.Fprintf(os.Stderr, "warning: cannot save cache: %v\n", err)
	}

	sum := report(cmd.OutOrStdout(), os.Stderr, results, rs)
	if rs.timings {
		printTimings(os.Stderr, timer, eng)
	}
	switch {
	case sum.failed > 0:
		return &exitError{code: exitFailure}
	case rs.check && sum.changed > 0:
		return &exitError{code: exitChanged}
	}
	return nil
}

func readRunSettings(cmd *cobra.Command) (runSettings, error) {
	var rs runSettings
	var err error
	flags := cmd.Flags()
	if rs.check, err = flags.GetBool("check"); err != nil {
		return rs, err
	}
	if rs.diff, err = flags.GetBool("diff"); err != nil {
		return rs, err
	}
	if rs.compact, err = flags.GetBool("compact-diff"); err != nil {
		return rs, err
	}
	rs.diff = rs.diff || rs.compact
	if rs.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return rs, err
	}
	if rs.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return rs, err
	}
	diagFormat, err := flags.GetString("diag-format")
	if err != nil {
		return rs, err
	}
	switch diagFormat {
	case "pretty":
	case "json":
		rs.diagJSON = true
	default:
		return rs, fmt.Errorf("unsupported --diag-format %q (expected pretty|json)", diagFormat)
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return rs, err
	}
	if rs.ui, err = readUIMode(uiFlag); err != nil {
		return rs, err
	}
	rs.colorOut = useColor(cmd, os.Stdout)
	rs.colorErr = useColor(cmd, os.Stderr)
	return rs, nil
}

// loadConfig reads --config or discovers pyproject.toml above the common
// parent of the inputs, then applies command-line overrides.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Discover(commonDir(args))
	}
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("line-length") {
		if cfg.LineLength, err = flags.GetInt("line-length"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("include") {
		if cfg.Include, err = flags.GetString("include"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("exclude") {
		if cfg.Exclude, err = flags.GetString("exclude"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("black") {
		if cfg.BlackExecutable, err = flags.GetString("black"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("target-version") {
		if cfg.TargetVersion, err = flags.GetStringSlice("target-version"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("skip-string-normalization") {
		if cfg.SkipStringNormalization, err = flags.GetBool("skip-string-normalization"); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// commonDir returns the deepest directory containing every input.
func commonDir(args []string) string {
	var common []string
	for i, a := range args {
		if a == "-" {
			a = "."
		}
		abs, err := filepath.Abs(a)
		if err != nil {
			return "."
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			abs = filepath.Dir(abs)
		}
		parts := strings.Split(filepath.ToSlash(abs), "/")
		if i == 0 {
			common = parts
			continue
		}
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return "."
	}
	dir := strings.Join(common, "/")
	if dir == "" {
		dir = "/"
	}
	return filepath.FromSlash(dir)
}

// buildEngine creates the code formatter, wrapped in a memoising cache that
// is backed by disk when --cache is set.
func buildEngine(cmd *cobra.Command, cfg config.Config) (engine.Engine, *engine.DiskCache, error) {
	flags := cmd.Flags()
	name, err := flags.GetString("engine")
	if err != nil {
		return nil, nil, err
	}
	var inner engine.Engine
	switch name {
	case "black":
		b, err := engine.NewBlack(cfg.FormatContext().Engine)
		if err != nil {
			return nil, nil, err
		}
		inner = b
	case "passthrough":
		inner = engine.Passthrough{}
	default:
		return nil, nil, fmt.Errorf("unknown engine %q (expected black|passthrough)", name)
	}

	useCache, err := flags.GetBool("cache")
	if err != nil {
		return nil, nil, err
	}
	clearCache, err := flags.GetBool("clear-cache")
	if err != nil {
		return nil, nil, err
	}
	var disk *engine.DiskCache
	if useCache || clearCache {
		disk, err = engine.OpenDiskCache("snakefmt")
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open cache: %w", err)
		}
		if clearCache {
			if err := disk.DropAll(); err != nil {
				return nil, nil, fmt.Errorf("cannot clear cache: %w", err)
			}
		}
		if !useCache {
			disk = nil
		}
	}
	return engine.NewCached(inner, disk), disk, nil
}

func formatStdin(ctx context.Context, in io.Reader, opts driver.Options, rs runSettings) error {
	src, err := io.ReadAll(in)
	if err != nil {
		return &exitError{code: exitFailure, msg: fmt.Sprintf("error: cannot read stdin: %v", err)}
	}
	res, err := driver.FormatSource(ctx, driver.StdinPath, src, opts)
	if err != nil {
		renderError(os.Stderr, res, err, rs)
		return &exitError{code: exitFailure}
	}
	switch {
	case rs.diff:
		if res.Changed {
			writeDiff(os.Stdout, res.Diff, rs.colorOut)
		}
	case rs.check:
	default:
		if _, err := os.Stdout.Write(res.Formatted); err != nil {
			return &exitError{code: exitFailure, msg: fmt.Sprintf("error: %v", err)}
		}
	}
	if rs.check && res.Changed {
		if !rs.quiet {
			fmt.Fprintln(os.Stderr, "would reformat", driver.StdinPath)
		}
		return &exitError{code: exitChanged}
	}
	return nil
}

type summary struct {
	changed, unchanged, failed int
}

// report prints per-file outcomes and the closing summary.
func report(stdout, stderr io.Writer, results []*driver.Result, rs runSettings) summary {
	var sum summary
	for _, res := range results {
		if res.Err != nil {
			sum.failed++
			renderError(stderr, res, res.Err, rs)
			continue
		}
		if !res.Changed {
			sum.unchanged++
			continue
		}
		sum.changed++
		if rs.diff {
			writeDiff(stdout, res.Diff, rs.colorOut)
		}
		if rs.quiet {
			continue
		}
		if rs.check || rs.diff {
			fmt.Fprintln(stderr, "would reformat", res.Path)
		} else {
			fmt.Fprintln(stderr, "reformatted", res.Path)
		}
	}
	if !rs.quiet {
		writeSummary(stderr, sum, rs)
	}
	return sum
}

func writeSummary(w io.Writer, sum summary, rs runSettings) {
	bold := color.New(color.Bold)
	if rs.colorErr {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}
	if sum.failed > 0 {
		fmt.Fprintln(w, bold.Sprint("Oh no! 💥 💔 💥"))
	} else {
		fmt.Fprintln(w, bold.Sprint("All done! ✨ 🍰 ✨"))
	}

	verb := "reformatted"
	if rs.check || rs.diff {
		verb = "would be reformatted"
	}
	var parts []string
	if sum.changed > 0 {
		parts = append(parts, bold.Sprintf("%s %s", plural(sum.changed, "file"), verb))
	}
	if sum.unchanged > 0 {
		left := "left unchanged"
		if rs.check || rs.diff {
			left = "would be left unchanged"
		}
		parts = append(parts, fmt.Sprintf("%s %s", plural(sum.unchanged, "file"), left))
	}
	if sum.failed > 0 {
		parts = append(parts, fmt.Sprintf("%s failed to reformat", plural(sum.failed, "file")))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, strings.Join(parts, ", ")+".")
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// isCancelled reports whether err comes from an interrupted run.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
