// Package output holds the response model every command produces and the
// formatters that print it.
package output

// Embed limits of the chat surface, in runes.
const (
	TitleLimit       = 256
	DescriptionLimit = 4096
	FieldNameLimit   = 256
	FieldValueLimit  = 1024
	AuthorLimit      = 256
)

// Colors used by responses, as hex RGB.
const (
	ColorOrange    = "#e67e22"
	ColorGreen     = "#2ecc71"
	ColorRed       = "#e74c3c"
	ColorGold      = "#f1c40f"
	ColorDarkGreen = "#1f8b4c"
)

// Response is a rich message: a titled card with optional fields.
type Response struct {
	Author      string  `json:"author,omitempty"`
	AuthorURL   string  `json:"author_url,omitempty"`
	Title       string  `json:"title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Image       string  `json:"image,omitempty"`
	Color       string  `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty"`
	// Error is set instead of the card when the command failed.
	Error string `json:"error,omitempty"`
}

// Field is a named block inside a Response.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// AddField appends a field, truncating name and value to their limits.
func (r *Response) AddField(name, value string, inline bool) {
	r.Fields = append(r.Fields, Field{
		Name:   Truncate(name, FieldNameLimit),
		Value:  Truncate(value, FieldValueLimit),
		Inline: inline,
	})
}

// Clamp truncates every text part of r to its limit.
func (r *Response) Clamp() {
	r.Author = Truncate(r.Author, AuthorLimit)
	r.Title = Truncate(r.Title, TitleLimit)
	r.Description = Truncate(r.Description, DescriptionLimit)
	for i := range r.Fields {
		r.Fields[i].Name = Truncate(r.Fields[i].Name, FieldNameLimit)
		r.Fields[i].Value = Truncate(r.Fields[i].Value, FieldValueLimit)
	}
}

// ErrorResponse wraps a user-facing error message.
func ErrorResponse(msg string) *Response {
	return &Response{Error: msg, Color: ColorRed}
}

// Formatter formats a Response into output bytes.
type Formatter interface {
	Format(r *Response) ([]byte, error)
}
