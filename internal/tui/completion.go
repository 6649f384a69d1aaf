package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianshen/rhobot/internal/commands"
)

const maxVisibleCandidates = 8

// CompletionOverlay shows a dropdown of completions for the word under the
// cursor above the input area. It supports keyboard navigation and
// tab-completion.
type CompletionOverlay struct {
	candidates []commands.Candidate
	selected   int
	visible    bool
	width      int
	input      string
}

// NewCompletionOverlay creates a new completion overlay. The width parameter
// controls the rendered width.
func NewCompletionOverlay(width int) *CompletionOverlay {
	return &CompletionOverlay{width: width}
}

// Stale reports whether the candidates were computed for another input.
func (co *CompletionOverlay) Stale(input string) bool {
	return input != co.input
}

// Set replaces the candidates offered for input. A blank input hides the
// overlay.
func (co *CompletionOverlay) Set(input string, candidates []commands.Candidate) {
	co.input = input
	co.candidates = candidates
	co.selected = 0
	co.visible = len(candidates) > 0 && strings.TrimSpace(input) != ""
}

// HandleKey processes a keypress when the overlay is visible.
// Up/Down navigate candidates (with wrap-around), Escape dismisses.
// Returns true if the key was consumed by the overlay.
func (co *CompletionOverlay) HandleKey(msg tea.KeyMsg) bool {
	if !co.visible {
		return false
	}

	switch msg.Type {
	case tea.KeyUp:
		co.selected--
		if co.selected < 0 {
			co.selected = len(co.candidates) - 1
		}
		return true

	case tea.KeyDown:
		co.selected++
		if co.selected >= len(co.candidates) {
			co.selected = 0
		}
		return true

	case tea.KeyEscape:
		co.visible = false
		return true
	}

	return false
}

// HandleTab accepts the selected candidate and returns input with its last
// word replaced. Returns (false, input) when nothing is offered.
func (co *CompletionOverlay) HandleTab(input string) (accepted bool, line string) {
	if !co.visible || len(co.candidates) == 0 {
		return false, input
	}
	co.visible = false
	return true, ReplaceLastWord(input, co.candidates[co.selected].Value) + " "
}

// ReplaceLastWord swaps the unfinished last word of line for value,
// quoting value when it contains spaces. A word opened with a quote is
// replaced from the quote on.
func ReplaceLastWord(line, value string) string {
	value = commands.QuoteArg(value)
	start, quoted := 0, false
	for i, r := range line {
		switch {
		case r == '"':
			if !quoted {
				start = i
			}
			quoted = !quoted
		case r == ' ' && !quoted:
			start = i + 1
		}
	}
	return line[:start] + value
}

// Visible returns whether the overlay should be rendered.
func (co *CompletionOverlay) Visible() bool {
	return co.visible
}

// Candidates returns the current list of completion candidates.
func (co *CompletionOverlay) Candidates() []commands.Candidate {
	return co.candidates
}

// Selected returns the index of the currently highlighted candidate.
func (co *CompletionOverlay) Selected() int {
	return co.selected
}

// SetWidth updates the render width.
func (co *CompletionOverlay) SetWidth(w int) {
	co.width = w
}

// View renders the completion overlay as a bordered box with candidate rows.
// Returns an empty string when not visible.
func (co *CompletionOverlay) View() string {
	if !co.visible || len(co.candidates) == 0 {
		return ""
	}

	boxWidth := max(co.width-4, 20)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#666666"}).
		Width(boxWidth)

	selectedStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("#e67e22")).
		Foreground(lipgloss.Color("#FFFFFF"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})

	// Keep the selected row inside the scroll window.
	start := 0
	total := len(co.candidates)
	if total > maxVisibleCandidates && co.selected >= maxVisibleCandidates {
		start = min(co.selected-maxVisibleCandidates+1, total-maxVisibleCandidates)
	}
	end := min(start+maxVisibleCandidates, total)

	var rows []string
	for i := start; i < end; i++ {
		c := co.candidates[i]
		spacing := max(boxWidth-2-lipgloss.Width(c.Value)-lipgloss.Width(c.Description), 2)
		pad := strings.Repeat(" ", spacing)

		if i == co.selected {
			rows = append(rows, selectedStyle.Render(c.Value+pad+c.Description))
			continue
		}
		rows = append(rows, c.Value+pad+descStyle.Render(c.Description))
	}

	return borderStyle.Render(strings.Join(rows, "\n"))
}
