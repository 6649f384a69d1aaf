// Package wikitext parses MediaWiki markup into a flat node tree.
//
// The parser never fails: markup that does not close is kept as text.
// Bold and italic markers are emitted as toggle nodes rather than spans,
// so a consumer walks the nodes in order and writes a marker each time.
package wikitext

// Node is one element of parsed markup.
type Node interface {
	node()
}

// --- inline ---

// Text is literal text.
type Text struct{ Value string }

// Bold, Italic and BoldItalic toggle emphasis. They come from runs of
// three, two and five apostrophes.
type (
	Bold       struct{}
	Italic     struct{}
	BoldItalic struct{}
)

// CharacterEntity is a decoded HTML entity such as &nbsp;.
type CharacterEntity struct{ Character rune }

// Comment is an HTML comment. Its contents are discarded.
type Comment struct{}

// Link is an internal link. Text falls back to the target when no label
// is given, and absorbs any trailing lowercase letters after the link.
type Link struct {
	Target string
	Text   []Node
}

// ExternalLink is [url label]. Nodes holds the URL and label unsplit.
type ExternalLink struct{ Nodes []Node }

// Category is a [[Category:...]] link. Ordinal is the sort key after the
// pipe, if any.
type Category struct {
	Target  string
	Ordinal []Node
}

// Image is a [[File:...]] or [[Image:...]] link. Text holds everything
// after the first pipe.
type Image struct {
	Target string
	Text   []Node
}

// Template is a {{name|...}} transclusion.
type Template struct {
	Name       []Node
	Parameters []Parameter
}

// Parameter is one template argument. Name is nil for positional
// arguments.
type Parameter struct {
	Name  []Node
	Value []Node
}

// TemplateParameter is a {{{name|default}}} placeholder.
type TemplateParameter struct {
	Name    []Node
	Default []Node
}

// MagicWord is a behaviour switch such as __TOC__.
type MagicWord struct{ Name string }

// StartTag and EndTag are HTML tags that are not extension tags.
type (
	StartTag struct {
		Name        string
		SelfClosing bool
	}
	EndTag struct{ Name string }
)

// Tag is an extension tag with its contents, such as <nowiki>x</nowiki>.
type Tag struct {
	Name  string
	Nodes []Node
}

// --- block ---

type Heading struct {
	Level int
	Nodes []Node
}

type HorizontalDivider struct{}

type ParagraphBreak struct{}

type Preformatted struct{ Nodes []Node }

type Redirect struct{ Target string }

// ListItem is one entry of a list. Nested lists appear in Nodes.
type ListItem struct{ Nodes []Node }

type OrderedList struct{ Items []ListItem }

type UnorderedList struct{ Items []ListItem }

// DefinitionItem is a ";" term or ":" details line.
type DefinitionItem struct {
	Term  bool
	Nodes []Node
}

type DefinitionList struct{ Items []DefinitionItem }

type Table struct {
	Attributes string
	Captions   [][]Node
	Rows       []TableRow
}

type TableRow struct{ Cells []TableCell }

type TableCell struct {
	Header     bool
	Attributes string
	Nodes      []Node
}

func (Text) node()              {}
func (Bold) node()              {}
func (Italic) node()            {}
func (BoldItalic) node()        {}
func (CharacterEntity) node()   {}
func (Comment) node()           {}
func (Link) node()              {}
func (ExternalLink) node()      {}
func (Category) node()          {}
func (Image) node()             {}
func (Template) node()          {}
func (TemplateParameter) node() {}
func (MagicWord) node()         {}
func (StartTag) node()          {}
func (EndTag) node()            {}
func (Tag) node()               {}
func (Heading) node()           {}
func (HorizontalDivider) node() {}
func (ParagraphBreak) node()    {}
func (Preformatted) node()      {}
func (Redirect) node()          {}
func (OrderedList) node()       {}
func (UnorderedList) node()     {}
func (DefinitionList) node()    {}
func (Table) node()             {}
