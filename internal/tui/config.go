package tui

import (
	"io"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/Veraticus/lessons-ledger/internal/tui/themes"
)

// Config holds the run form configuration.
type Config struct {
	Theme   themes.Theme
	Input   io.Reader
	Output  io.Writer
	Clock   func() time.Time
	Initial report.Request
}

// Option is a functional option for configuring the form.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme: themes.Default,
		Clock: time.Now,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithRequest preselects the form fields. A zero month defaults to the current month.
func WithRequest(req report.Request) Option {
	return func(c *Config) {
		c.Initial = req
	}
}

// WithClock sets the clock used for the default month.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithIO replaces the terminal input and output.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
	}
}
