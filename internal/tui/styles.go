package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#2563EB")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// FocusStyle marks the slot the keys act on.
	FocusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	SizeStyle = lipgloss.NewStyle().
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// controlStyle renders a control label dimmed when it is disabled.
func controlStyle(enabled bool) lipgloss.Style {
	if enabled {
		return lipgloss.NewStyle()
	}
	return MutedStyle.Strikethrough(true)
}
