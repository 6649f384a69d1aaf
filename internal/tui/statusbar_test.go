package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusBarView(t *testing.T) {
	sb := NewStatusBar(80)
	sb.SetCommands(9)
	assert.Contains(t, sb.View(), "9 commands  ran 0  failed 0")
	assert.NotContains(t, sb.View(), "last")

	sb.Record(1234*time.Microsecond, false)
	sb.Record(42*time.Millisecond, true)
	view := sb.View()
	assert.Contains(t, view, "ran 2  failed 1")
	assert.Contains(t, view, "last 42ms")
}

func TestRenderBanner(t *testing.T) {
	assert.Contains(t, RenderBanner(), "Tab to complete")
}
