package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputArea wraps a bubbles textinput.Model for single-line command entry.
// Enter and Tab are left to the parent Model.
type InputArea struct {
	input textinput.Model
}

// NewInputArea creates a focused command prompt.
func NewInputArea() *InputArea {
	ti := textinput.New()
	ti.Placeholder = "api class LuaEntity teleport"
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Focus()
	return &InputArea{input: ti}
}

// Value returns the current text content.
func (ia *InputArea) Value() string {
	return ia.input.Value()
}

// SetValue replaces the text content and moves the cursor to the end.
func (ia *InputArea) SetValue(s string) {
	ia.input.SetValue(s)
	ia.input.CursorEnd()
}

// Reset clears the text content.
func (ia *InputArea) Reset() {
	ia.input.Reset()
}

// Init focuses the prompt.
func (ia *InputArea) Init() tea.Cmd {
	return ia.input.Focus()
}

// Update delegates a message to the text input and returns any command.
func (ia *InputArea) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	ia.input, cmd = ia.input.Update(msg)
	return cmd
}

// View renders the prompt.
func (ia *InputArea) View() string {
	return ia.input.View()
}

// Focus gives the prompt focus.
func (ia *InputArea) Focus() tea.Cmd {
	return ia.input.Focus()
}

// Blur removes focus from the prompt.
func (ia *InputArea) Blur() {
	ia.input.Blur()
}
