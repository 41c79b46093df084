// Package tui is the interactive form that collects the month, mode and scope of a run.
package tui

import (
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/Veraticus/lessons-ledger/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field int

const (
	fieldMonth field = iota
	fieldMode
	fieldScope
	fieldCount
)

var (
	modes  = []ledger.Mode{ledger.ModeSkip, ledger.ModeOverwrite, ledger.ModeReset}
	scopes = []report.Scope{report.ScopeBoth, report.ScopeGroup, report.ScopePrivate}
)

// Form is the bubbletea model of the run form.
type Form struct {
	err        error
	theme      themes.Theme
	keymap     KeyMap
	help       help.Model
	month      textinput.Model
	result     report.Request
	focus      field
	mode       int
	scope      int
	width      int
	confirming bool
	submitted  bool
	cancelled  bool
}

// NewForm creates a form preselected from cfg.Initial.
func NewForm(cfg Config) Form {
	if cfg.Clock == nil {
		cfg = defaultConfig()
	}

	month := cfg.Initial.Month
	if month.IsZero() {
		month = model.MonthOf(cfg.Clock())
	}
	in := textinput.New()
	in.Placeholder = "MM-YYYY"
	in.CharLimit = 7
	in.Width = 10
	in.Prompt = ""
	in.SetValue(month.String())
	in.Focus()

	f := Form{
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		month:  in,
	}
	for i, m := range modes {
		if m == cfg.Initial.Mode {
			f.mode = i
		}
	}
	for i, s := range scopes {
		if s == cfg.Initial.Scope {
			f.scope = i
		}
	}
	return f
}

// Init starts the cursor blink.
func (f Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and window resizes.
func (f Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		f.help.Width = msg.Width
		return f, nil

	case tea.KeyMsg:
		return f.handleKey(msg)
	}

	if f.focus == fieldMonth {
		var cmd tea.Cmd
		f.month, cmd = f.month.Update(msg)
		return f, cmd
	}
	return f, nil
}

func (f Form) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, f.keymap.Quit) {
		f.cancelled = true
		return f, tea.Quit
	}
	if key.Matches(msg, f.keymap.Submit) {
		return f.submit()
	}
	f.confirming = false

	switch {
	case key.Matches(msg, f.keymap.Help):
		f.help.ShowAll = !f.help.ShowAll
		return f, nil
	case key.Matches(msg, f.keymap.Next):
		return f.setFocus((f.focus + 1) % fieldCount)
	case key.Matches(msg, f.keymap.Prev):
		return f.setFocus((f.focus + fieldCount - 1) % fieldCount)
	}

	if f.focus != fieldMonth {
		step := 0
		switch {
		case key.Matches(msg, f.keymap.Left):
			step = -1
		case key.Matches(msg, f.keymap.Right):
			step = 1
		}
		switch f.focus {
		case fieldMode:
			f.mode = (f.mode + step + len(modes)) % len(modes)
		case fieldScope:
			f.scope = (f.scope + step + len(scopes)) % len(scopes)
		}
		return f, nil
	}

	f.err = nil
	var cmd tea.Cmd
	f.month, cmd = f.month.Update(msg)
	return f, cmd
}

func (f Form) setFocus(next field) (tea.Model, tea.Cmd) {
	f.focus = next
	if next == fieldMonth {
		return f, f.month.Focus()
	}
	f.month.Blur()
	return f, nil
}

// submit validates the month. Reset mode needs a second Enter.
func (f Form) submit() (tea.Model, tea.Cmd) {
	month, err := model.ParseMonth(f.month.Value())
	if err != nil {
		f.err = err
		f.confirming = false
		return f.setFocus(fieldMonth)
	}
	f.err = nil

	req := report.Request{Month: month, Mode: modes[f.mode], Scope: scopes[f.scope]}
	if req.Mode == ledger.ModeReset && !f.confirming {
		f.confirming = true
		return f, nil
	}
	f.result = req
	f.submitted = true
	return f, tea.Quit
}

// Request returns the submitted request, or false when the form was cancelled or is still open.
func (f Form) Request() (report.Request, bool) {
	return f.result, f.submitted && !f.cancelled
}
