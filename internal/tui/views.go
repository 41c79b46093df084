package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var modeHints = map[ledger.Mode]string{
	ledger.ModeSkip:      "add missing rows, keep existing ones",
	ledger.ModeOverwrite: "replace open rows, paid rows stay",
	ledger.ModeReset:     "delete the month's rows and rebuild them",
}

// View renders the form.
func (f Form) View() string {
	if f.submitted || f.cancelled {
		return ""
	}
	t := f.theme

	label := func(fl field, text string) string {
		if f.focus == fl {
			return t.FocusedLabel.Render(text)
		}
		return t.Label.Render(text)
	}
	choices := func(options []string, selected int) string {
		parts := make([]string, len(options))
		for i, o := range options {
			if i == selected {
				parts[i] = t.SelectedChoice.Render(o)
			} else {
				parts[i] = t.Choice.Render(o)
			}
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	modeNames := make([]string, len(modes))
	for i, m := range modes {
		modeNames[i] = string(m)
	}
	scopeNames := make([]string, len(scopes))
	for i, s := range scopes {
		scopeNames[i] = string(s)
	}

	var b strings.Builder
	b.WriteString(t.Title.Render("📒 Lessons ledger run") + "\n")
	b.WriteString(label(fieldMonth, "Month") + " " + f.month.View())
	if m, err := model.ParseMonth(f.month.Value()); err == nil {
		b.WriteString("  " + t.Hint.Render(m.Label()))
	}
	b.WriteString("\n")
	b.WriteString(label(fieldMode, "Mode") + " " + choices(modeNames, f.mode) + "\n")
	b.WriteString(strings.Repeat(" ", 9) + t.Hint.Render(modeHints[modes[f.mode]]) + "\n")
	b.WriteString(label(fieldScope, "Scope") + " " + choices(scopeNames, f.scope) + "\n")

	if f.err != nil {
		b.WriteString("\n" + t.Error.Render(f.err.Error()) + "\n")
	}
	if f.confirming {
		b.WriteString("\n" + t.Warning.Render(fmt.Sprintf("Reset deletes every ledger row dated in %s. Press Enter again to confirm.", f.month.Value())) + "\n")
	}
	b.WriteString("\n" + f.help.View(f.keymap))

	return t.Box.Render(b.String())
}
