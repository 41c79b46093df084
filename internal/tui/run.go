package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/lessons-ledger/internal/report"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user leaves the form without submitting.
var ErrCancelled = errors.New("run form cancelled")

// Run shows the form and returns the submitted request.
func Run(ctx context.Context, opts ...Option) (report.Request, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Input != nil {
		progOpts = append(progOpts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(cfg.Output))
	}

	final, err := tea.NewProgram(NewForm(cfg), progOpts...).Run()
	if err != nil {
		return report.Request{}, fmt.Errorf("run form: %w", err)
	}
	form, ok := final.(Form)
	if !ok {
		return report.Request{}, fmt.Errorf("run form: unexpected model %T", final)
	}
	req, ok := form.Request()
	if !ok {
		return report.Request{}, ErrCancelled
	}
	return req, nil
}
