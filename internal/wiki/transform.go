// Package wiki fetches wiki.factorio.com articles and converts their markup
// into chat markdown.
package wiki

import (
	"strings"

	"github.com/julianshen/rhobot/internal/wikitext"
)

// DefaultBase is the root every article URL is built from.
const DefaultBase = "https://wiki.factorio.com/"

// HeadingMarker precedes every rendered heading so the text can be split
// into sections afterwards.
const HeadingMarker = "||HEADING||"

const spaceAgeNote = `_[Space Age](https://wiki.factorio.com/Space\_Age) expansion exclusive feature._`

// Transformer renders markup nodes as chat markdown.
type Transformer struct {
	// Base is prepended to link targets. Empty means DefaultBase.
	Base string
}

// Transform renders nodes with links rooted at DefaultBase.
func Transform(nodes []wikitext.Node) string {
	return Transformer{}.Transform(nodes)
}

// Transform renders nodes.
func (t Transformer) Transform(nodes []wikitext.Node) string {
	var b strings.Builder
	t.writeNodes(&b, nodes)
	return b.String()
}

// PageURL returns the article URL of title under base.
func PageURL(base, title string) string {
	if base == "" {
		base = DefaultBase
	}
	return base + strings.ReplaceAll(title, " ", "_")
}

func (t Transformer) render(nodes []wikitext.Node) string {
	return t.Transform(nodes)
}

func (t Transformer) writeNodes(b *strings.Builder, nodes []wikitext.Node) {
	for _, n := range nodes {
		t.writeNode(b, n)
	}
}

func (t Transformer) writeNode(b *strings.Builder, n wikitext.Node) {
	switch n := n.(type) {
	case wikitext.Text:
		b.WriteString(n.Value)
	case wikitext.Bold:
		b.WriteString("**")
	case wikitext.BoldItalic:
		b.WriteString("***")
	case wikitext.Italic:
		b.WriteString("*")
	case wikitext.Heading:
		parts := make([]string, len(n.Nodes))
		for i, child := range n.Nodes {
			parts[i] = t.render([]wikitext.Node{child})
		}
		b.WriteString("\n" + HeadingMarker + strings.Repeat("#", n.Level) + " " + strings.Join(parts, " ") + "\n")
	case wikitext.HorizontalDivider:
		b.WriteString("\n---\n")
	case wikitext.ParagraphBreak:
		b.WriteString("\n\n")
	case wikitext.Link:
		b.WriteString("[" + t.render(n.Text) + "](" + PageURL(t.Base, n.Target) + ")")
	case wikitext.ExternalLink:
		s := t.render(n.Nodes)
		if url, label, ok := strings.Cut(s, " "); ok {
			b.WriteString("[" + label + "](" + url + ")")
		} else {
			b.WriteString(s)
		}
	case wikitext.OrderedList:
		for _, item := range n.Items {
			b.WriteString("\n0. " + t.render(item.Nodes))
		}
	case wikitext.UnorderedList:
		for _, item := range n.Items {
			b.WriteString("\n- " + t.render(item.Nodes))
		}
	case wikitext.Preformatted:
		b.WriteString("```" + t.render(n.Nodes) + "```\n")
	case wikitext.StartTag:
		if n.Name == "code" {
			b.WriteString("`")
		}
	case wikitext.EndTag:
		if n.Name == "code" {
			b.WriteString("`")
		}
	case wikitext.Tag:
		t.writeTag(b, n)
	case wikitext.Template:
		t.writeTemplate(b, n)
	}
}

func (t Transformer) writeTag(b *strings.Builder, tag wikitext.Tag) {
	body := t.render(tag.Nodes)
	switch tag.Name {
	case "syntaxhighlight":
		b.WriteString("```lua\n" + body + "```\n")
	case "nowiki":
		b.WriteString(body)
	default:
		b.WriteString("TAG " + tag.Name + ": " + body)
	}
}

// writeTemplate unwraps the few templates with a useful plain rendering.
// Everything else is dropped.
func (t Transformer) writeTemplate(b *strings.Builder, tpl wikitext.Template) {
	name, ok := firstText(tpl.Name)
	if !ok {
		return
	}
	switch {
	case strings.EqualFold(name, "imagelink"):
		if len(tpl.Parameters) == 0 {
			return
		}
		value, ok := firstText(tpl.Parameters[0].Value)
		if !ok {
			return
		}
		b.WriteString("[" + value + "](" + PageURL(t.Base, value) + ")")
	case name == "About/Space age":
		b.WriteString(spaceAgeNote + "\n")
	case strings.Contains(name, "DISPLAYTITLE"):
		b.WriteString("DISPLAYTITLE: " + strings.TrimPrefix(name, "DISPLAYTITLE:"))
	}
}

func firstText(nodes []wikitext.Node) (string, bool) {
	if len(nodes) == 0 {
		return "", false
	}
	t, ok := nodes[0].(wikitext.Text)
	return t.Value, ok
}

// DefaultMinLeadLength is the lead length below which Summarize also keeps
// the first section. The value is inherited and worth revisiting.
const DefaultMinLeadLength = 100

// Summarize keeps the text before the first heading, plus the first section
// when that lead is short.
func Summarize(text string) string {
	return SummarizeWithMin(text, DefaultMinLeadLength)
}

// SummarizeWithMin is Summarize with an explicit minimum lead length in
// bytes.
func SummarizeWithMin(text string, minLead int) string {
	sections := strings.Split(text, HeadingMarker)
	if len(sections) == 1 {
		return sections[0]
	}
	if len(sections[0]) < minLead {
		return sections[0] + sections[1]
	}
	return sections[0]
}
