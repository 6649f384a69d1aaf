package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar displays the command count and the outcome of the last command.
type StatusBar struct {
	width    int
	commands int
	ran      int
	failed   int
	elapsed  time.Duration
	style    lipgloss.Style
}

// NewStatusBar creates a new StatusBar with the given terminal width.
func NewStatusBar(width int) *StatusBar {
	return &StatusBar{
		width: width,
		style: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}),
	}
}

// SetCommands sets the number of registered commands.
func (s *StatusBar) SetCommands(n int) { s.commands = n }

// SetWidth updates the render width.
func (s *StatusBar) SetWidth(w int) { s.width = w }

// Record notes a finished command.
func (s *StatusBar) Record(elapsed time.Duration, failed bool) {
	s.ran++
	if failed {
		s.failed++
	}
	s.elapsed = elapsed
}

// View renders the status bar as a styled string.
func (s *StatusBar) View() string {
	line := fmt.Sprintf(" %d commands  ran %d  failed %d", s.commands, s.ran, s.failed)
	if s.ran > 0 {
		line += fmt.Sprintf("  last %s", s.elapsed.Round(time.Millisecond))
	}
	return s.style.MaxWidth(max(s.width, 1)).Render(line)
}
