package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions for the console view.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"})
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e67e22"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
)

// View implements tea.Model. It renders the console as a string.
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.state == StateFAQForm && m.faqForm != nil {
		return m.faqForm.Form().View()
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s · Factorio docs", m.opts.AppName)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(m.width, 1)))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.state == StateRunning {
		b.WriteString(fmt.Sprintf("%s Working...", m.spinner.View()))
	}
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")

	if overlay := m.completion.View(); overlay != "" {
		b.WriteString(overlay)
		b.WriteString("\n")
	}
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(m.input.View())

	return b.String()
}
