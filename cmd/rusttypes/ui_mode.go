package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"rusttypes/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI resolves auto against the command's output: progress is drawn
// only on an interactive terminal.
func shouldUseTUI(mode uiMode, out io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		f, ok := out.(*os.File)
		return ok && isTerminal(f)
	}
}

// runWithProgress runs work while a progress view renders its events to out.
// work must not write to out; the sink it receives is closed when it returns.
func runWithProgress[T any](ctx context.Context, out io.Writer, title string, files []string, work func(context.Context, ui.Sink) T) (T, error) {
	events := make(chan ui.Event, 256)
	outcome := make(chan T, 1)

	go func() {
		defer close(events)
		outcome <- work(ctx, ui.ChannelSink{Ch: events})
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so work never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	result := <-outcome
	return result, uiErr
}
