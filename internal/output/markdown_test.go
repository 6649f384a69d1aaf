package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResponse() *Response {
	r := &Response{
		Author:      "Factorio Wiki",
		AuthorURL:   "https://wiki.factorio.com/",
		Title:       "Transport belt",
		URL:         "https://wiki.factorio.com/Transport_belt",
		Description: "Moves items.",
		Footer:      "2.0.28",
	}
	r.AddField("Speed", "15 items/s", true)
	return r
}

func TestMarkdownFormatterBasic(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleResponse())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "*[Factorio Wiki](https://wiki.factorio.com/)*")
	assert.Contains(t, s, "## [Transport belt](https://wiki.factorio.com/Transport_belt)")
	assert.Contains(t, s, "Moves items.")
	assert.Contains(t, s, "### Speed\n\n15 items/s")
	assert.Contains(t, s, "*2.0.28*")
}

func TestMarkdownFormatterError(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(ErrorResponse("Could not find class `X`"))
	require.NoError(t, err)
	assert.Equal(t, "Could not find class `X`\n", string(out))
}

func TestMarkdownTitleWithoutURL(t *testing.T) {
	assert.Contains(t, Markdown(&Response{Title: "Plain"}), "## Plain\n")
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSONFormatter().Format(sampleResponse())
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Transport belt", decoded.Title)
	require.Len(t, decoded.Fields, 1)
	assert.True(t, decoded.Fields[0].Inline)
	assert.NotContains(t, string(out), `"error"`)
}

func TestTerminalFormatter(t *testing.T) {
	f, err := NewTerminalFormatter("", 80)
	require.NoError(t, err)
	out, err := f.Format(sampleResponse())
	require.NoError(t, err)
	assert.Contains(t, string(out), "Moves items.")

	empty, err := f.Render("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestForName(t *testing.T) {
	for _, name := range []string{"json", "markdown", "terminal", ""} {
		f, err := ForName(name, 80)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := ForName("xml", 80)
	assert.Error(t, err)
}

func TestClampAndAddFieldTruncate(t *testing.T) {
	long := make([]rune, 5000)
	for i := range long {
		long[i] = 'é'
	}
	r := &Response{Title: string(long), Description: string(long)}
	r.AddField(string(long), string(long), false)
	r.Clamp()

	assert.Len(t, []rune(r.Title), TitleLimit)
	assert.Len(t, []rune(r.Description), DescriptionLimit)
	assert.Len(t, []rune(r.Fields[0].Name), FieldNameLimit)
	assert.Len(t, []rune(r.Fields[0].Value), FieldValueLimit)
}
