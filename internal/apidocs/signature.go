package apidocs

import (
	"sort"
	"strings"
)

// DefaultDocsBase is the root of the published API documentation.
const DefaultDocsBase = "https://lua-api.factorio.com/latest/"

// ReturnArrow separates a method signature from its return values.
const ReturnArrow = "🡪"

// sortedParameters returns a copy of params ordered by Order.
func sortedParameters(params []Parameter) []Parameter {
	out := make([]Parameter, len(params))
	copy(out, params)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// MethodSignature renders the argument list: "{a=..., b?=...}" for methods
// taking a table, "(a, b?)" otherwise.
func MethodSignature(m Method) string {
	params := sortedParameters(m.Parameters)
	parts := make([]string, len(params))
	for i, p := range params {
		name := p.Name
		if p.Optional {
			name += "?"
		}
		if m.Format.TakesTable {
			name += "=..."
		}
		parts[i] = name
	}
	joined := strings.Join(parts, ", ")
	if m.Format.TakesTable {
		return "{" + joined + "}"
	}
	return "(" + joined + ")"
}

// ReturnSignature renders return value types, "?" marking optional ones.
func ReturnSignature(m Method) string {
	parts := make([]string, len(m.ReturnValues))
	for i, rv := range m.ReturnValues {
		parts[i] = Render(rv.Type)
		if rv.Optional {
			parts[i] += "?"
		}
	}
	return strings.Join(parts, ", ")
}

// FormatMethodTitle assembles a code-formatted method title from an already
// rendered signature and return list.
func FormatMethodTitle(name, signature, returns string) string {
	if returns == "" {
		return "`" + name + signature + "`"
	}
	return "`" + name + signature + " " + ReturnArrow + " " + returns + "`"
}

// MethodTitle renders "`name(sig) 🡪 returns`".
func MethodTitle(m Method) string {
	return FormatMethodTitle(m.Name, MethodSignature(m), ReturnSignature(m))
}

// AccessFlag renders read/write access as [RW], [R], [W] or "".
func AccessFlag(read, write bool) string {
	switch {
	case read && write:
		return "[RW]"
	case read:
		return "[R]"
	case write:
		return "[W]"
	default:
		return ""
	}
}

// AttributeTitle renders "`name [RW] :: type?`".
func AttributeTitle(a Attribute) string {
	optional := ""
	if a.Optional {
		optional = "?"
	}
	return "`" + a.Name + " " + AccessFlag(a.Read, a.Write) + " :: " + Render(a.Type) + optional + "`"
}

// PropertyTitle renders "`name optional :: type`".
func PropertyTitle(p Property) string {
	optional := ""
	if p.Optional {
		optional = "optional"
	}
	return "`" + p.Name + " " + optional + " :: " + Render(p.Type) + "`"
}

// DataTypeTitle renders "Name :: type".
func DataTypeTitle(t DataType) string {
	return t.Name + " :: " + Render(t.Type)
}

// Links builds documentation URLs under a base URL.
type Links struct {
	base string
}

// NewLinks returns a link builder rooted at base. An empty base uses
// DefaultDocsBase.
func NewLinks(base string) Links {
	if base == "" {
		base = DefaultDocsBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return Links{base: base}
}

// Base returns the root URL, always ending in "/".
func (l Links) Base() string {
	if l.base == "" {
		return DefaultDocsBase
	}
	return l.base
}

// Section returns the index page for kind.
func (l Links) Section(kind Kind) string {
	switch kind {
	case KindClass:
		return l.Base() + "classes.html"
	case KindEvent:
		return l.Base() + "events.html"
	case KindDefine:
		return l.Base() + "defines.html"
	case KindConcept:
		return l.Base() + "concepts.html"
	case KindPrototype:
		return l.Base() + "prototypes.html"
	case KindType:
		return l.Base() + "types.html"
	default:
		return l.Base()
	}
}

// Class returns the page of a class, anchored at member when non-empty.
func (l Links) Class(name, member string) string {
	return l.Page("classes", name, member)
}

// Prototype returns the page of a prototype, anchored at property when
// non-empty.
func (l Links) Prototype(name, property string) string {
	return l.Page("prototypes", name, property)
}

// Type returns the page of a data-stage type, anchored at property when
// non-empty.
func (l Links) Type(name, property string) string {
	return l.Page("types", name, property)
}

// Page returns {base}{section}/{name}.html with an optional anchor.
func (l Links) Page(section, name, anchor string) string {
	u := l.Base() + section + "/" + name + ".html"
	if anchor != "" {
		u += "#" + anchor
	}
	return u
}

// Event returns the anchor of an event on the events page.
func (l Links) Event(name string) string {
	return l.Base() + "events.html#" + name
}

// Define returns the anchor of a define on the defines page.
func (l Links) Define(name string) string {
	return l.Base() + "defines.html#defines." + name
}

// Concept returns the anchor of a concept on the concepts page.
func (l Links) Concept(name string) string {
	return l.Base() + "concepts.html#" + name
}
