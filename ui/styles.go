package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#F0A868")
	cyanColor   = lipgloss.Color("#7EC8D8")
	greenColor  = lipgloss.Color("#51bd73")
	redColor    = lipgloss.Color("#ef4444")
	dimColor    = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}

	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#d0d0d0", Dark: "#333333"}).
			Padding(0, 1)
	focusedWindowStyle = windowStyle.
				BorderForeground(accentColor)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(cyanColor)
	dimStyle     = lipgloss.NewStyle().Foreground(dimColor)
	successStyle = lipgloss.NewStyle().Foreground(greenColor)
	errorStyle   = lipgloss.NewStyle().Foreground(redColor)
	hashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCC00"))
	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#36CFC9")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
)
