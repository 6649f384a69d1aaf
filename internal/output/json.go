package output

import "encoding/json"

// JSONFormatter outputs a Response as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals the Response as indented JSON.
func (f *JSONFormatter) Format(r *Response) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
