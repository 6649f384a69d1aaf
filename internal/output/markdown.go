package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter outputs a Response as Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the Response as Markdown.
func (f *MarkdownFormatter) Format(r *Response) ([]byte, error) {
	return []byte(Markdown(r)), nil
}

// Markdown renders r as a Markdown document.
func Markdown(r *Response) string {
	var b strings.Builder

	if r.Error != "" {
		b.WriteString(r.Error)
		b.WriteString("\n")
		return b.String()
	}

	if r.Author != "" {
		if r.AuthorURL != "" {
			fmt.Fprintf(&b, "*[%s](%s)*\n\n", r.Author, r.AuthorURL)
		} else {
			fmt.Fprintf(&b, "*%s*\n\n", r.Author)
		}
	}
	if r.Title != "" {
		if r.URL != "" {
			fmt.Fprintf(&b, "## [%s](%s)\n\n", r.Title, r.URL)
		} else {
			fmt.Fprintf(&b, "## %s\n\n", r.Title)
		}
	}
	if r.Description != "" {
		b.WriteString(r.Description)
		b.WriteString("\n")
	}
	for _, field := range r.Fields {
		fmt.Fprintf(&b, "\n### %s\n\n%s\n", field.Name, field.Value)
	}
	if r.Image != "" {
		fmt.Fprintf(&b, "\n![image](%s)\n", r.Image)
	}
	if r.Footer != "" {
		fmt.Fprintf(&b, "\n---\n*%s*\n", r.Footer)
	}
	return b.String()
}
