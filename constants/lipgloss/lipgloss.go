package lipgloss

import "github.com/charmbracelet/lipgloss"

// Shared terminal styles for command output.
var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F3C969"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("#7AB8FF"))
	Gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	Info    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	Title   = lipgloss.NewStyle().Bold(true).Underline(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// SeverityStyle picks a color for a severity or impact label.
func SeverityStyle(label string) lipgloss.Style {
	switch label {
	case "Critical", "High":
		return Red
	case "Warning", "Medium":
		return Yellow
	default:
		return Green
	}
}

// ScoreStyle colors a 0-100 score.
func ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 80:
		return Green
	case score >= 50:
		return Yellow
	default:
		return Red
	}
}
