package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle renders the operation heading.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		"done":        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"installed":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"downloading": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"unpacking":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"registering": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"failed":      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"pending":     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}

	defaultStatusStyle = lipgloss.NewStyle()
)

// StatusStyle returns the style for a step status string.
func StatusStyle(status string) lipgloss.Style {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	return defaultStatusStyle
}
