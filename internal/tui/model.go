// Package tui implements the interactive console: a prompt that runs bot
// commands and renders their responses.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianshen/rhobot/internal/commands"
	"github.com/julianshen/rhobot/internal/faq"
	"github.com/julianshen/rhobot/internal/output"
)

// Runner executes and completes command lines. *commands.Dispatcher
// satisfies it.
type Runner interface {
	Run(ctx context.Context, line string) commands.Result
	Complete(ctx context.Context, line string) []commands.Candidate
}

// DraftSaver stores an entry collected by the FAQ form.
type DraftSaver func(ctx context.Context, d faq.Draft) (commands.Result, error)

// UIState represents the current state of the console.
type UIState int

const (
	// StateInput indicates the console is waiting for a command.
	StateInput UIState = iota
	// StateRunning indicates a command is executing.
	StateRunning
	// StateFAQForm indicates the FAQ entry form is open.
	StateFAQForm
)

// Options configures a Model.
type Options struct {
	AppName string
	// SaveDraft receives entries from the FAQ form. Nil disables the form.
	SaveDraft DraftSaver
	// AttachmentDir receives exported files. Empty only reports them.
	AttachmentDir string
	// Commands is shown in the status bar.
	Commands int
}

// Model is the Bubble Tea model for the console.
type Model struct {
	ctx        context.Context
	runner     Runner
	opts       Options
	input      *InputArea
	viewport   viewport.Model
	spinner    spinner.Model
	content    strings.Builder
	renderer   *output.TerminalFormatter
	completion *CompletionOverlay
	statusBar  *StatusBar
	faqForm    *FAQForm
	state      UIState
	width      int
	height     int
	quitting   bool
}

// Ensure Model satisfies the tea.Model interface at compile time.
var _ tea.Model = (*Model)(nil)

// NewModel creates a console running commands through runner.
func NewModel(ctx context.Context, runner Runner, opts Options) *Model {
	if opts.AppName == "" {
		opts.AppName = "rhobot"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	sb := NewStatusBar(80)
	sb.SetCommands(opts.Commands)

	// Render falls back to raw markdown if the renderer is nil.
	renderer, _ := output.NewTerminalFormatter("dark", 80)

	m := &Model{
		ctx:        ctx,
		runner:     runner,
		opts:       opts,
		input:      NewInputArea(),
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		renderer:   renderer,
		completion: NewCompletionOverlay(80),
		statusBar:  sb,
		state:      StateInput,
		width:      80,
		height:     24,
	}

	m.content.WriteString(RenderBanner())
	m.content.WriteString("\n")
	m.viewport.SetContent(m.content.String())
	return m
}

// write appends text to the transcript and scrolls to the end.
func (m *Model) write(text string) {
	m.content.WriteString(text)
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}

// render formats a response for the transcript.
func (m *Model) render(r *output.Response) string {
	if r == nil {
		return ""
	}
	if r.Error != "" {
		return errorStyle.Render(r.Error) + "\n"
	}
	if m.renderer != nil {
		if out, err := m.renderer.Format(r); err == nil {
			return string(out)
		}
	}
	return output.Markdown(r)
}

// saveAttachment writes a to the attachment directory and describes the
// outcome.
func (m *Model) saveAttachment(a *commands.Attachment) string {
	if m.opts.AttachmentDir == "" {
		return fmt.Sprintf("Attachment %s (%d bytes) was not saved.\n", a.Name, len(a.Data))
	}
	path := filepath.Join(m.opts.AttachmentDir, filepath.Base(a.Name))
	if err := os.WriteFile(path, a.Data, 0o600); err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not save %s: %v", a.Name, err)) + "\n"
	}
	return fmt.Sprintf("Saved %s\n", path)
}

// resize applies a new terminal size to every component.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	// Reserve space for header (1), divider (1), status (2), input (1).
	m.viewport.Width = width
	m.viewport.Height = max(height-5, 1)
	m.completion.SetWidth(width)
	m.statusBar.SetWidth(width)
	if r, err := output.NewTerminalFormatter("dark", max(width-2, 20)); err == nil {
		m.renderer = r
	}
}
