package tui

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/huh"

	"github.com/julianshen/rhobot/internal/faq"
	"github.com/julianshen/rhobot/internal/output"
)

// FAQForm wraps a Huh form collecting a new FAQ entry.
type FAQForm struct {
	form     *huh.Form
	name     string
	contents string
	image    string
}

// NewFAQForm creates an entry form. name pre-fills the tag field.
func NewFAQForm(name string) *FAQForm {
	f := &FAQForm{name: name}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tag").
				Placeholder("belts").
				Value(&f.name).
				Validate(validateTitle),
			huh.NewText().
				Title("Contents").
				Value(&f.contents).
				Validate(validateContents),
			huh.NewInput().
				Title("Image URL").
				Placeholder("optional").
				Value(&f.image),
		).Title("New FAQ entry"),
	)
	return f
}

func validateTitle(s string) error {
	switch {
	case strings.TrimSpace(s) == "":
		return errors.New("tag is required")
	case utf8.RuneCountInString(s) > output.TitleLimit:
		return faq.ErrTitleTooLong
	}
	return nil
}

func validateContents(s string) error {
	if utf8.RuneCountInString(s) > output.DescriptionLimit {
		return faq.ErrBodyTooLong
	}
	return nil
}

// Draft returns the collected entry. The author is filled in by the saver.
func (f *FAQForm) Draft() faq.Draft {
	return faq.Draft{
		Name:     strings.TrimSpace(f.name),
		Contents: f.contents,
		Image:    strings.TrimSpace(f.image),
	}
}

// Form returns the underlying huh.Form for Bubble Tea embedding.
func (f *FAQForm) Form() *huh.Form { return f.form }

// SetForm replaces the underlying huh.Form. This is used when the form's
// Update method returns a new Form instance.
func (f *FAQForm) SetForm(form *huh.Form) { f.form = form }

// IsCompleted returns true if the form has been submitted.
func (f *FAQForm) IsCompleted() bool { return f.form.State == huh.StateCompleted }

// IsAborted returns true if the form has been cancelled.
func (f *FAQForm) IsAborted() bool { return f.form.State == huh.StateAborted }
