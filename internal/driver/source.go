package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"snakefmt/internal/block"
	"snakefmt/internal/classify"
	"snakefmt/internal/engine"
	"snakefmt/internal/format"
	"snakefmt/internal/lexer"
	"snakefmt/internal/observ"
	"snakefmt/internal/reassemble"
	"snakefmt/internal/source"
	"snakefmt/internal/trace"
)

// StdinPath is the display name of standard input.
const StdinPath = "<stdin>"

// Options configures the formatting pipeline of one file.
type Options struct {
	Format      format.Context
	Engine      engine.Engine
	Diff        bool // заполнить Result.Diff
	CompactDiff bool
	Progress    ProgressSink
}

// Result captures the outcome of formatting a single file.
type Result struct {
	Path      string
	FileSet   *source.FileSet // для вывода диагностик
	File      *source.File
	Formatted []byte // с исходными окончаниями строк и BOM
	Changed   bool
	Written   bool
	Cached    bool // пропущен: уже отформатирован при тех же настройках
	Diff      string
	Err       error
	Timing    *observ.Report

	timer *observ.Timer
}

// FormatSource runs lex, classify, format and reassemble over src. The
// returned Result is never nil; on failure it still carries the FileSet so
// that the error can be rendered against the source. Lexer, classifier and
// engine failures are returned as *lexer.Error, *classify.Error and
// *engine.Error.
func FormatSource(ctx context.Context, path string, src []byte, opts Options) (*Result, error) {
	res := &Result{Path: path}
	if opts.Engine == nil {
		res.Err = errors.New("driver: no code formatter configured")
		return res, res.Err
	}

	ctx, fileSpan := trace.Start(ctx, trace.ScopeModule, "file:"+path)
	timer := observ.NewTimer()
	res.timer = timer
	started := time.Now()
	defer func() {
		report := timer.Report()
		res.Timing = &report
		detail := "unchanged"
		switch {
		case res.Err != nil:
			detail = "error"
		case res.Changed:
			detail = "changed"
		}
		fileSpan.End(detail)
	}()

	fs := source.NewFileSet()
	var flags source.FileFlags
	if path == StdinPath {
		flags = source.FileVirtual
	}
	sf := fs.Get(fs.AddNormalized(path, src, flags))
	res.FileSet, res.File = fs, sf

	fail := func(stage Stage, err error) (*Result, error) {
		res.Err = err
		emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return res, err
	}

	var root *block.Root
	emit(opts.Progress, Event{File: path, Stage: StageClassify, Status: StatusWorking})
	err := phase(ctx, timer, "classify", func(context.Context) (note string, err error) {
		root, err = classify.Classify(sf, lexer.New(sf, lexer.Options{}))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d blocks", len(root.Blocks)), nil
	})
	if err != nil {
		return fail(StageClassify, err)
	}

	var frags []format.Fragment
	emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusWorking})
	err = phase(ctx, timer, "format", func(ctx context.Context) (note string, err error) {
		frags, err = format.Format(ctx, sf, root, opts.Format, opts.Engine)
		return fmt.Sprintf("%d fragments", len(frags)), err
	})
	if err != nil {
		return fail(StageFormat, err)
	}

	var text string
	err = phase(ctx, timer, "reassemble", func(context.Context) (string, error) {
		text = reassemble.Reassemble(frags)
		res.Formatted = source.Restore([]byte(text), sf.Flags)
		res.Changed = !bytes.Equal(res.Formatted, src)
		if !opts.Diff || !res.Changed {
			return "", nil
		}
		var derr error
		res.Diff, derr = reassemble.Diff(path, string(sf.Content), text, opts.CompactDiff)
		return "", derr
	})
	if err != nil {
		return fail(StageFormat, err)
	}
	return res, nil
}

// phase runs fn as a named pipeline phase: a trace span and a timer entry.
func phase(ctx context.Context, timer *observ.Timer, name string, fn func(context.Context) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := trace.Start(ctx, trace.ScopePass, name)
	idx := timer.Begin(name)
	note, err := fn(ctx)
	if err != nil {
		note = err.Error()
	}
	timer.End(idx, note)
	span.End(note)
	return err
}
