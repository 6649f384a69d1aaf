package output

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// TerminalFormatter renders a Response as styled terminal output.
type TerminalFormatter struct {
	renderer *glamour.TermRenderer
}

// NewTerminalFormatter creates a glamour-backed formatter wrapping at width.
// style is a glamour standard style name; empty means "dark".
func NewTerminalFormatter(style string, width int) (*TerminalFormatter, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating glamour renderer: %w", err)
	}
	return &TerminalFormatter{renderer: r}, nil
}

// Format renders the Response through glamour.
func (f *TerminalFormatter) Format(r *Response) ([]byte, error) {
	out, err := f.Render(Markdown(r))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Render processes markdown text into styled terminal output.
func (f *TerminalFormatter) Render(md string) (string, error) {
	if md == "" {
		return "", nil
	}
	if f.renderer == nil {
		return md, nil
	}
	return f.renderer.Render(md)
}

// ForName picks a formatter: "json", "markdown", or "terminal".
func ForName(name string, width int) (Formatter, error) {
	switch name {
	case "json":
		return NewJSONFormatter(), nil
	case "markdown", "md", "":
		return NewMarkdownFormatter(), nil
	case "terminal":
		return NewTerminalFormatter("dark", width)
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}
