package apidocs

import (
	"errors"
	"fmt"
	"strings"
)

// Named is implemented by every entity that can be looked up by name.
type Named interface {
	EntityName() string
}

// FindByName returns the first item whose name equals name, ignoring case.
func FindByName[E Named](items []E, name string) (E, bool) {
	for _, item := range items {
		if strings.EqualFold(item.EntityName(), name) {
			return item, true
		}
	}
	var zero E
	return zero, false
}

// Names returns the names of items in order.
func Names[E Named](items []E) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.EntityName()
	}
	return names
}

// WithPrefix keeps names starting with partial, ignoring case.
func WithPrefix(names []string, partial string) []string {
	lower := strings.ToLower(partial)
	var out []string
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), lower) {
			out = append(out, n)
		}
	}
	return out
}

// Containing keeps names containing partial, ignoring case.
func Containing(names []string, partial string) []string {
	lower := strings.ToLower(partial)
	var out []string
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			out = append(out, n)
		}
	}
	return out
}

// Kind names the section of a corpus an entity belongs to.
type Kind string

const (
	KindClass     Kind = "class"
	KindEvent     Kind = "event"
	KindDefine    Kind = "define"
	KindConcept   Kind = "concept"
	KindPrototype Kind = "prototype"
	KindType      Kind = "type"
	KindProperty  Kind = "property"
)

// NotFoundError reports a name that matched nothing in a corpus. It is an
// expected outcome of user input, not an infrastructure failure.
type NotFoundError struct {
	Kind   Kind
	Name   string
	Corpus string
}

func (e *NotFoundError) Error() string {
	if e.Kind == KindProperty {
		return fmt.Sprintf("Could not find property `%s`", e.Name)
	}
	return fmt.Sprintf("Could not find %s `%s` in %s documentation", e.Kind, e.Name, e.Corpus)
}

// NotFound is a convenience constructor for NotFoundError.
func NotFound(kind Kind, name, corpus string) error {
	return &NotFoundError{Kind: kind, Name: name, Corpus: corpus}
}

// Corpus labels used in not-found messages.
const (
	RuntimeCorpusLabel   = "runtime API"
	PrototypeCorpusLabel = "prototype API"
)

// ErrNoTypeProperties is returned when a property is requested on a data
// type that has no property list.
var ErrNoTypeProperties = errors.New("type has no properties")

// SplitQuery separates "Entity::member" shorthand and strips a trailing
// "| comment" from the member part. member is empty when absent.
func SplitQuery(main, member string) (string, string) {
	if before, after, ok := strings.Cut(main, "::"); ok {
		main, member = before, after
	}
	main = StripComment(main)
	if strings.ContainsRune(member, Separator) {
		member = StripComment(member)
	}
	return strings.TrimSpace(main), strings.TrimSpace(member)
}

// Separator starts an inline comment in free-text command input.
const Separator = '|'

// StripComment returns the text before the first Separator, trimmed.
func StripComment(s string) string {
	if before, _, ok := strings.Cut(s, string(Separator)); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
