package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"snakefmt/internal/diag"
	"snakefmt/internal/observ"
	"snakefmt/internal/trace"
)

// RunOptions configures a multi-file run.
type RunOptions struct {
	Options

	// Include matches base names of files found in directories; Exclude
	// matches slash-separated paths relative to the walked directory
	// ("/rules/a.smk", "/.snakemake/"). Files named explicitly are always
	// formatted.
	Include *regexp.Regexp
	Exclude *regexp.Regexp
	// Gitignore skips paths ignored by the .gitignore of each walked directory.
	Gitignore bool

	Write bool       // перезаписывать изменённые файлы
	Jobs  int        // 0 = GOMAXPROCS
	Cache *FileCache // пропускать уже отформатированные файлы; может быть nil
	Timer *observ.Timer
}

// FormatPaths formats files and directories (recursively collecting
// workflow files) in parallel. A failing file does not stop the others; its
// error is in Result.Err. The returned error is reserved for failures of the
// run itself: no inputs, unreadable directories, cancellation.
func FormatPaths(ctx context.Context, paths []string, opts RunOptions) ([]*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, runSpan := trace.Start(ctx, trace.ScopeDriver, "format")

	files, err := CollectFiles(ctx, paths, opts)
	if err != nil {
		runSpan.End("error")
		return nil, err
	}
	if len(files) == 0 {
		runSpan.End("no files")
		return nil, errors.New("format: no workflow files found")
	}
	runSpan.WithExtra("files", fmt.Sprint(len(files)))

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := formatFile(gctx, path, opts)
			results[i] = res
			if res.Err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		runSpan.End("cancelled")
		return nil, err
	}

	changed := 0
	for _, res := range results {
		if res.Changed {
			changed++
		}
		opts.Timer.Merge(res.timer)
	}
	runSpan.End(fmt.Sprintf("%d of %d changed", changed, len(files)))
	return results, nil
}

func formatFile(ctx context.Context, path string, opts RunOptions) *Result {
	started := time.Now()
	emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	// #nosec G304 -- path comes from the command line or a directory walk
	src, err := os.ReadFile(path)
	if err != nil {
		res := &Result{Path: path, Err: &FileError{Code: diag.IOLoadFileError, Path: path, Err: err}}
		emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusError, Err: res.Err})
		return res
	}

	digest := combineDigest(src, opts.Format, opts.Engine)
	if opts.Cache.Formatted(path, digest) {
		trace.Mark(ctx, trace.ScopeModule, "file:"+path, "cached")
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusDone, Elapsed: time.Since(started)})
		return &Result{Path: path, Formatted: src, Cached: true}
	}

	res, err := FormatSource(ctx, path, src, opts.Options)
	if err != nil {
		return res
	}

	if opts.Write && res.Changed {
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(path, res.Formatted, mode.Perm()); err != nil {
			res.Err = &FileError{Code: diag.IOWriteFileError, Path: path, Err: err}
			emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusError, Err: res.Err})
			return res
		}
		res.Written = true
	}
	if !res.Changed || res.Written {
		opts.Cache.Put(path, combineDigest(res.Formatted, opts.Format, opts.Engine))
	}
	emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusDone, Changed: res.Changed, Elapsed: time.Since(started)})
	return res
}

// CollectFiles expands directories into the workflow files below them,
// honouring Include, Exclude and .gitignore. The result is sorted and free
// of duplicates.
func CollectFiles(ctx context.Context, paths []string, opts RunOptions) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		w := walker{root: p, opts: opts, add: addFile}
		if opts.Gitignore {
			// отсутствие .gitignore не ошибка
			if gi, err := gitignore.CompileIgnoreFile(filepath.Join(p, ".gitignore")); err == nil {
				w.ignore = gi
			}
		}
		if err := w.walk(ctx, p); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

type walker struct {
	root   string
	opts   RunOptions
	ignore *gitignore.GitIgnore
	add    func(string)
}

func (w *walker) walk(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if w.skipped(rel, "/"+rel+"/") {
				continue
			}
			if err := w.walk(ctx, path); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if w.opts.Include != nil && !w.opts.Include.MatchString(name) {
			continue
		}
		if w.skipped(rel, "/"+rel) {
			continue
		}
		w.add(path)
	}
	return nil
}

func (w *walker) skipped(rel, slashed string) bool {
	if w.opts.Exclude != nil && w.opts.Exclude.MatchString(slashed) {
		return true
	}
	return w.ignore != nil && w.ignore.MatchesPath(rel)
}
