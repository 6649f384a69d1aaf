package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianshen/rhobot/internal/commands"
	"github.com/julianshen/rhobot/internal/faq"
	"github.com/julianshen/rhobot/internal/output"
)

// resultMsg carries a finished command back to Update.
type resultMsg struct {
	line    string
	result  commands.Result
	elapsed time.Duration
}

// completionMsg carries candidates computed for input.
type completionMsg struct {
	input      string
	candidates []commands.Candidate
}

// Init implements tea.Model. It focuses the prompt.
func (m *Model) Init() tea.Cmd {
	return m.input.Init()
}

// Update implements tea.Model. It processes incoming messages and returns the
// updated model and any commands to execute.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateFAQForm && m.faqForm != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case resultMsg:
		return m.handleResult(msg)

	case completionMsg:
		if msg.input == m.input.Value() {
			m.completion.Set(msg.input, msg.candidates)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == StateRunning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// updateForm routes a message to the open FAQ form.
func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.faqForm.Form().Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.faqForm.SetForm(f)
	}
	switch {
	case m.faqForm.IsCompleted():
		draft := m.faqForm.Draft()
		m.faqForm = nil
		m.state = StateRunning
		return m, tea.Batch(m.saveDraft(draft), m.spinner.Tick)
	case m.faqForm.IsAborted():
		m.faqForm = nil
		m.state = StateInput
		m.write("FAQ entry discarded.\n\n")
		return m, m.input.Focus()
	}
	return m, cmd
}

// handleKeyMsg processes keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, regardless of state.
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.state != StateInput {
		return m, nil
	}
	if m.completion.HandleKey(msg) {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.completion.Set("", nil)
		m.write(promptStyle.Render("> ") + text + "\n")
		m.state = StateRunning
		return m, tea.Batch(m.run(text), m.spinner.Tick)

	case tea.KeyTab:
		if ok, line := m.completion.HandleTab(m.input.Value()); ok {
			m.input.SetValue(line)
			return m, m.complete(line)
		}
		return m, m.complete(m.input.Value())

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyCtrlL:
		m.content.Reset()
		m.viewport.SetContent("")
		return m, nil

	default:
		cmd := m.input.Update(msg)
		if line := m.input.Value(); m.completion.Stale(line) {
			return m, tea.Batch(cmd, m.complete(line))
		}
		return m, cmd
	}
}

// run executes line off the Update goroutine.
func (m *Model) run(line string) tea.Cmd {
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		if runner == nil {
			return resultMsg{line: line, result: commands.Result{
				Response: output.ErrorResponse("no commands configured"),
			}}
		}
		start := time.Now()
		res := runner.Run(ctx, line)
		return resultMsg{line: line, result: res, elapsed: time.Since(start)}
	}
}

// complete computes candidates for line off the Update goroutine.
func (m *Model) complete(line string) tea.Cmd {
	if m.runner == nil || strings.TrimSpace(line) == "" {
		m.completion.Set(line, nil)
		return nil
	}
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		return completionMsg{input: line, candidates: runner.Complete(ctx, line)}
	}
}

// saveDraft stores a form entry off the Update goroutine.
func (m *Model) saveDraft(d faq.Draft) tea.Cmd {
	ctx, save := m.ctx, m.opts.SaveDraft
	return func() tea.Msg {
		start := time.Now()
		res, err := save(ctx, d)
		if err != nil {
			res = commands.Result{Response: output.ErrorResponse(commands.UserMessage(err))}
		}
		return resultMsg{line: "faqedit add " + d.Name, result: res, elapsed: time.Since(start)}
	}
}

// handleResult prints a finished command and performs its action.
func (m *Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.state = StateInput
	res := msg.result
	m.statusBar.Record(msg.elapsed, res.Response != nil && res.Response.Error != "")

	switch res.Action {
	case commands.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case commands.ActionOpenFAQForm:
		if m.opts.SaveDraft == nil {
			m.write(m.render(output.ErrorResponse("The FAQ form is not available here.")) + "\n")
			return m, nil
		}
		m.faqForm = NewFAQForm("")
		m.state = StateFAQForm
		m.input.Blur()
		return m, m.faqForm.Form().Init()
	}

	m.write(m.render(res.Response))
	if res.Attachment != nil {
		m.write(m.saveAttachment(res.Attachment))
	}
	m.write("\n")
	return m, m.input.Focus()
}

// Transcript returns everything printed so far.
func (m *Model) Transcript() string {
	return m.content.String()
}

// Run starts the console on the terminal and blocks until it exits.
func Run(ctx context.Context, runner Runner, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, runner, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}
