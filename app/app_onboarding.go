package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	welcomeTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0A868"))
	welcomeKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7EC8D8")).Bold(true)
	welcomeTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#dddddd"})
)

// handleWelcomeKeys handles the first-launch screen.
func (m *home) handleWelcomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.dismissWelcome()
		return m.openLessonPicker()
	case "s", "esc":
		m.dismissWelcome()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *home) dismissWelcome() {
	m.setState(stateDefault)
	m.appState.Welcomed = true
	m.saveProgress()
}

// viewWelcome renders the first-launch centered panel.
func (m *home) viewWelcome() string {
	panelWidth := max(m.width*60/100, 50)
	panelWidth = min(panelWidth, m.width)

	var b strings.Builder
	b.WriteString(welcomeTitleStyle.Render("Welcome to gitcoach"))
	b.WriteString("\n\n")
	b.WriteString(welcomeTextStyle.Width(panelWidth - 6).Render(
		"Practice git in a simulated repository. Nothing you type touches a real " +
			"repository, so experiment freely: every mistake is explained and undone."))
	b.WriteString("\n\n")
	b.WriteString(welcomeKeyStyle.Render("enter") + welcomeTextStyle.Render("  pick a lesson") + "\n")
	b.WriteString(welcomeKeyStyle.Render("s    ") + welcomeTextStyle.Render("  open the sandbox") + "\n")
	b.WriteString(welcomeKeyStyle.Render("q    ") + welcomeTextStyle.Render("  quit"))

	panel := lipgloss.NewStyle().
		Width(panelWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}
