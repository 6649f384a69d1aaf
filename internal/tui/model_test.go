package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/rhobot/internal/commands"
	"github.com/julianshen/rhobot/internal/faq"
	"github.com/julianshen/rhobot/internal/output"
)

type fakeRunner struct {
	lines   []string
	results map[string]commands.Result
	cands   map[string][]commands.Candidate
}

func (f *fakeRunner) Run(_ context.Context, line string) commands.Result {
	f.lines = append(f.lines, line)
	if r, ok := f.results[line]; ok {
		return r
	}
	return commands.Result{Response: output.ErrorResponse("Unknown command `" + line + "`. Try `help`.")}
}

func (f *fakeRunner) Complete(_ context.Context, line string) []commands.Candidate {
	return f.cands[line]
}

func newTestModel(t *testing.T, r *fakeRunner, opts Options) *Model {
	t.Helper()
	m := NewModel(context.Background(), r, opts)
	// Plain markdown keeps assertions free of ANSI styling.
	m.renderer = nil
	return m
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestUIStateConstants(t *testing.T) {
	states := []UIState{StateInput, StateRunning, StateFAQForm}
	seen := make(map[UIState]bool)
	for _, s := range states {
		assert.False(t, seen[s], "duplicate UIState value: %d", s)
		seen[s] = true
	}
}

func TestNewModel(t *testing.T) {
	m := NewModel(context.Background(), nil, Options{})

	assert.Equal(t, StateInput, m.state)
	assert.Equal(t, "rhobot", m.opts.AppName)
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 24, m.height)
	assert.False(t, m.quitting)
	assert.Contains(t, m.Transcript(), "Type `help` for commands")
}

func TestModelUpdateCtrlC(t *testing.T) {
	m := newTestModel(t, &fakeRunner{}, Options{})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.True(t, updated.(*Model).quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "Goodbye!\n", m.View())
}

func TestModelUpdateWindowSize(t *testing.T) {
	m := newTestModel(t, &fakeRunner{}, Options{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 35, m.viewport.Height)
	assert.Equal(t, 120, m.completion.width)

	m.Update(tea.WindowSizeMsg{Width: 10, Height: 2})
	assert.Equal(t, 1, m.viewport.Height)
}

func TestModelEnterRunsCommand(t *testing.T) {
	r := &fakeRunner{results: map[string]commands.Result{
		"fff 380": {Response: &output.Response{Title: "Friday Facts #380", Description: "Belts."}},
	}}
	m := newTestModel(t, r, Options{})
	typeText(m, "fff 380")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, StateRunning, m.state)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.Transcript(), "fff 380")
	assert.Contains(t, m.View(), "Working...")

	// Keys are ignored while the command runs.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Empty(t, m.input.Value())

	msg := m.run("fff 380")()
	m.Update(msg)
	assert.Equal(t, StateInput, m.state)
	assert.Equal(t, []string{"fff 380"}, r.lines)
	assert.Contains(t, m.Transcript(), "## Friday Facts #380")
	assert.Contains(t, m.Transcript(), "Belts.")
	assert.Contains(t, m.statusBar.View(), "ran 1")
}

func TestModelEnterEmptyInput(t *testing.T) {
	m := newTestModel(t, &fakeRunner{}, Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, StateInput, m.state)
}

func TestModelErrorResult(t *testing.T) {
	r := &fakeRunner{}
	m := newTestModel(t, r, Options{})

	m.Update(m.run("bogus")())
	assert.Contains(t, m.Transcript(), "Unknown command `bogus`")
	assert.Contains(t, m.statusBar.View(), "failed 1")
}

func TestModelNilRunner(t *testing.T) {
	m := NewModel(context.Background(), nil, Options{})
	msg := m.run("help")().(resultMsg)
	assert.Equal(t, "no commands configured", msg.result.Response.Error)
	assert.Nil(t, m.complete("he"))
}

func TestModelQuitAction(t *testing.T) {
	r := &fakeRunner{results: map[string]commands.Result{"quit": {Action: commands.ActionQuit}}}
	m := newTestModel(t, r, Options{})

	_, cmd := m.Update(m.run("quit")())
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelAttachmentSaved(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{results: map[string]commands.Result{"export_faqs": {
		Response:   &output.Response{Description: faq.DumpMessage},
		Attachment: &commands.Attachment{Name: "faqs.json", Data: []byte("[]")},
	}}}
	m := newTestModel(t, r, Options{AttachmentDir: dir})

	m.Update(m.run("export_faqs")())
	data, err := os.ReadFile(filepath.Join(dir, "faqs.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Contains(t, m.Transcript(), "Saved "+filepath.Join(dir, "faqs.json"))
}

func TestModelAttachmentNotSavedWithoutDir(t *testing.T) {
	r := &fakeRunner{results: map[string]commands.Result{"export_faqs": {
		Attachment: &commands.Attachment{Name: "faqs.json", Data: []byte("[]")},
	}}}
	m := newTestModel(t, r, Options{})

	m.Update(m.run("export_faqs")())
	assert.Contains(t, m.Transcript(), "Attachment faqs.json (2 bytes) was not saved.")
}

func TestModelCtrlLClears(t *testing.T) {
	m := newTestModel(t, &fakeRunner{}, Options{})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.Transcript())
}

func TestModelTabCompletes(t *testing.T) {
	r := &fakeRunner{cands: map[string][]commands.Candidate{
		"api cl":        {{Value: "class"}},
		"api class ":    {{Value: "LuaEntity"}, {Value: "LuaControl"}},
		"api class Lua": {{Value: "LuaEntity"}},
	}}
	m := newTestModel(t, r, Options{})
	typeText(m, "api cl")

	// Candidates arrive asynchronously.
	m.Update(completionMsg{input: "api cl", candidates: r.Complete(context.Background(), "api cl")})
	require.True(t, m.completion.Visible())
	assert.Contains(t, m.View(), "class")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "api class ", m.input.Value())
	require.NotNil(t, cmd)

	m.Update(cmd())
	assert.Len(t, m.completion.Candidates(), 2)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.completion.Selected())
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "api class LuaControl ", m.input.Value())
}

func TestModelStaleCompletionIgnored(t *testing.T) {
	m := newTestModel(t, &fakeRunner{}, Options{})
	typeText(m, "wiki")

	m.Update(completionMsg{input: "wik", candidates: []commands.Candidate{{Value: "wiki"}}})
	assert.False(t, m.completion.Visible())
}

func TestModelEscapeHidesCompletion(t *testing.T) {
	m := newTestModel(t, &fakeRunner{}, Options{})
	typeText(m, "he")
	m.Update(completionMsg{input: "he", candidates: []commands.Candidate{{Value: "help"}}})
	require.True(t, m.completion.Visible())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.completion.Visible())
	assert.Equal(t, "he", m.input.Value())
}

// --- FAQ form ---

func openForm(t *testing.T, opts Options) *Model {
	t.Helper()
	r := &fakeRunner{results: map[string]commands.Result{"faqedit new": {Action: commands.ActionOpenFAQForm}}}
	m := newTestModel(t, r, opts)
	m.Update(m.run("faqedit new")())
	return m
}

func TestModelOpenFAQForm(t *testing.T) {
	m := openForm(t, Options{SaveDraft: func(context.Context, faq.Draft) (commands.Result, error) {
		return commands.Result{}, nil
	}})
	assert.Equal(t, StateFAQForm, m.state)
	require.NotNil(t, m.faqForm)
	assert.NotContains(t, m.View(), "Factorio docs", "form replaces the console view")

	// Keys go to the form.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	assert.Equal(t, StateFAQForm, m.state)
}

func TestModelFAQFormWithoutSaver(t *testing.T) {
	m := openForm(t, Options{})
	assert.Equal(t, StateInput, m.state)
	assert.Nil(t, m.faqForm)
	assert.Contains(t, m.Transcript(), "The FAQ form is not available here.")
}

func TestModelFAQFormCompleted(t *testing.T) {
	var saved faq.Draft
	m := openForm(t, Options{SaveDraft: func(_ context.Context, d faq.Draft) (commands.Result, error) {
		saved = d
		return commands.Result{Response: &output.Response{Title: `Successfully added "Belts" to database`}}, nil
	}})
	m.faqForm.name = " belts "
	m.faqForm.contents = "Yellow."
	m.faqForm.Form().State = huh.StateCompleted

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, StateRunning, m.state)
	assert.Nil(t, m.faqForm)

	m.Update(m.saveDraft(faq.Draft{Name: "belts", Contents: "Yellow."})())
	assert.Equal(t, "belts", saved.Name)
	assert.Equal(t, StateInput, m.state)
	assert.Contains(t, m.Transcript(), `Successfully added "Belts" to database`)
}

func TestModelFAQFormSaveError(t *testing.T) {
	m := openForm(t, Options{SaveDraft: func(context.Context, faq.Draft) (commands.Result, error) {
		return commands.Result{}, faq.ErrBodyTooLong
	}})
	msg := m.saveDraft(faq.Draft{Name: "x"})().(resultMsg)
	assert.Equal(t, faq.ErrBodyTooLong.Error(), msg.result.Response.Error)

	msg = NewModel(context.Background(), nil, Options{SaveDraft: func(context.Context, faq.Draft) (commands.Result, error) {
		return commands.Result{}, errors.New("disk on fire")
	}}).saveDraft(faq.Draft{})().(resultMsg)
	assert.Equal(t, commands.GenericErrorMessage, msg.result.Response.Error)
}

func TestModelFAQFormAborted(t *testing.T) {
	m := openForm(t, Options{SaveDraft: func(context.Context, faq.Draft) (commands.Result, error) {
		return commands.Result{}, nil
	}})
	m.faqForm.Form().State = huh.StateAborted

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateInput, m.state)
	assert.Nil(t, m.faqForm)
	assert.True(t, strings.HasSuffix(m.Transcript(), "FAQ entry discarded.\n\n"))
}
