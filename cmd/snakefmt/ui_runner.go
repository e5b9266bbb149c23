package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"snakefmt/internal/driver"
	"snakefmt/internal/ui"
)

type formatOutcome struct {
	results []*driver.Result
	err     error
}

// runFormatWithUI runs FormatPaths while a progress view draws on stderr.
func runFormatWithUI(ctx context.Context, title string, files []string, opts driver.RunOptions) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.FormatPaths(ctx, files, optsCopy)
		outcomeCh <- formatOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	// если вид закрылся раньше, события всё равно надо дочитать
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
