package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"snakefmt/internal/diag"
	"snakefmt/internal/diagfmt"
	"snakefmt/internal/driver"
	"snakefmt/internal/engine"
	"snakefmt/internal/observ"
	"snakefmt/internal/source"
)

// renderError prints err for the file of res. Pipeline errors are shown as
// diagnostics with a source snippet; anything else as a single line.
func renderError(w io.Writer, res *driver.Result, err error, rs runSettings) {
	var fs *source.FileSet
	path := ""
	if res != nil {
		fs = res.FileSet
		path = res.Path
	}

	var d diag.Diagnoser
	if !errors.As(err, &d) {
		switch {
		case isCancelled(err):
			fmt.Fprintln(w, "error: interrupted")
		case path != "":
			fmt.Fprintf(w, "error: cannot format %s: %v\n", path, err)
		default:
			fmt.Fprintf(w, "error: %v\n", err)
		}
		return
	}

	// у ошибок ввода-вывода нет позиции в файле
	var fe *driver.FileError
	if errors.As(err, &fe) {
		fs = nil
	}

	bag := diag.NewBag(1)
	bag.Add(d.Diagnostic())
	if rs.diagJSON {
		if jerr := diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			IncludeNotes:     true,
		}); jerr != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
		return
	}
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     rs.colorErr,
		Context:   1,
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: true,
	})
}

// writeDiff prints a unified diff, colouring headers, hunks and changes.
func writeDiff(w io.Writer, diff string, enabled bool) {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	header := mk(color.Bold)
	hunk := mk(color.FgCyan)
	added := mk(color.FgGreen)
	removed := mk(color.FgRed)

	for line := range strings.SplitSeq(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprintln(w, header.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintln(w, hunk.Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(w, added.Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(w, removed.Sprint(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
}

// printTimings prints the merged phase timings of a run followed by the
// engine cache counters.
func printTimings(w io.Writer, timer *observ.Timer, eng engine.Engine) {
	if summary := timer.Summary(); summary != "" {
		fmt.Fprint(w, summary)
		if !strings.HasSuffix(summary, "\n") {
			fmt.Fprintln(w)
		}
	}
	if c, ok := eng.(*engine.Cached); ok {
		hits, misses := c.Stats()
		fmt.Fprintf(w, "engine cache: %d hits, %d misses\n", hits, misses)
	}
}
