// Package themes holds the colour themes of the interactive run form.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style of the form.
type Theme struct {
	Title          lipgloss.Style
	Label          lipgloss.Style
	FocusedLabel   lipgloss.Style
	Choice         lipgloss.Style
	SelectedChoice lipgloss.Style
	Hint           lipgloss.Style
	Error          lipgloss.Style
	Warning        lipgloss.Style
	Box            lipgloss.Style
	Primary        lipgloss.Color
	Muted          lipgloss.Color
	Border         lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#5B8DEF"),
	Muted:   lipgloss.Color("#737373"),
	Border:  lipgloss.Color("#404040"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		Width(8),
	FocusedLabel: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5B8DEF")).
		Bold(true).
		Width(8),
	Choice: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Padding(0, 1),
	SelectedChoice: lipgloss.NewStyle().
		Background(lipgloss.Color("#5B8DEF")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true).
		Padding(0, 1),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(1, 2),
}
