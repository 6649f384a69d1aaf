package wikitext

import (
	"html"
	"strings"
	"unicode/utf8"
)

// inline parses running text until one of terms, a newline when
// stopAtNewline is set, or the end of input. Terminators are not consumed.
func (s *state) inline(terms []string, stopAtNewline bool) []Node {
	var out []Node
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			out = appendText(out, text.String())
			text.Reset()
		}
	}

	for !s.eof() {
		if stopAtNewline && s.src[s.pos] == '\n' {
			break
		}
		if s.atAny(terms) {
			break
		}
		if nodes, ok := s.construct(); ok {
			flush()
			out = append(out, nodes...)
			continue
		}
		text.WriteByte(s.src[s.pos])
		s.pos++
	}
	flush()
	return mergeText(out)
}

func (s *state) atAny(terms []string) bool {
	rest := s.rest()
	for _, t := range terms {
		if strings.HasPrefix(rest, t) {
			return true
		}
	}
	return false
}

// construct tries every inline element starting at the current position.
// On failure the position is unchanged.
func (s *state) construct() ([]Node, bool) {
	rest := s.rest()
	switch rest[0] {
	case '\'':
		return s.apostrophes()
	case '[':
		if strings.HasPrefix(rest, "[[") {
			return one(s.internalLink())
		}
		return one(s.externalLink())
	case '{':
		if strings.HasPrefix(rest, "{{{") {
			if n, ok := s.templateParameter(); ok {
				return []Node{n}, true
			}
		}
		if strings.HasPrefix(rest, "{{") {
			return one(s.template())
		}
	case '<':
		if strings.HasPrefix(rest, "<!--") {
			return one(s.comment())
		}
		return one(s.tag())
	case '&':
		return one(s.entity())
	case '_':
		if strings.HasPrefix(rest, "__") {
			return one(s.magicWord())
		}
	}
	return nil, false
}

func one(n Node, ok bool) ([]Node, bool) {
	if !ok {
		return nil, false
	}
	return []Node{n}, true
}

func (s *state) apostrophes() ([]Node, bool) {
	n := 0
	for s.pos+n < len(s.src) && s.src[s.pos+n] == '\'' {
		n++
	}
	if n < 2 {
		return nil, false
	}
	s.pos += n
	switch {
	case n == 2:
		return []Node{Italic{}}, true
	case n == 3:
		return []Node{Bold{}}, true
	case n == 4:
		return []Node{Text{Value: "'"}, Bold{}}, true
	case n == 5:
		return []Node{BoldItalic{}}, true
	default:
		return []Node{Text{Value: strings.Repeat("'", n-5)}, BoldItalic{}}, true
	}
}

// linkTarget returns the end of a link target starting at from, or -1 when
// the target contains characters links may not.
func (s *state) linkTarget(from string, stop byte) int {
	for i := 0; i < len(from); i++ {
		switch c := from[i]; c {
		case stop:
			return i
		case ']':
			if strings.HasPrefix(from[i:], "]]") {
				return i
			}
			return -1
		case '\n', '[', '{', '}', '<':
			return -1
		}
	}
	return -1
}

func (s *state) internalLink() (Node, bool) {
	start := s.pos
	s.pos += 2
	end := s.linkTarget(s.rest(), '|')
	if end < 0 {
		s.pos = start
		return nil, false
	}
	target := strings.TrimSpace(s.src[s.pos : s.pos+end])
	s.pos += end
	if target == "" {
		s.pos = start
		return nil, false
	}

	var text []Node
	piped := false
	if s.src[s.pos] == '|' {
		piped = true
		s.pos++
		text = s.inline([]string{"]]"}, false)
		if !strings.HasPrefix(s.rest(), "]]") {
			s.pos = start
			return nil, false
		}
	}
	s.pos += 2

	escaped := strings.HasPrefix(target, ":")
	if escaped {
		target = strings.TrimSpace(target[1:])
	} else if i := strings.IndexByte(target, ':'); i > 0 {
		ns := strings.ToLower(strings.TrimSpace(target[:i]))
		switch {
		case s.cfg.categories[ns]:
			return Category{Target: target, Ordinal: text}, true
		case s.cfg.files[ns]:
			return Image{Target: target, Text: text}, true
		}
	}

	if !piped {
		text = []Node{Text{Value: target}}
	}
	trail := s.pos
	for trail < len(s.src) && strings.IndexByte(s.cfg.LinkTrail, s.src[trail]) >= 0 {
		trail++
	}
	if trail > s.pos {
		text = appendText(text, s.src[s.pos:trail])
		s.pos = trail
	}
	return Link{Target: target, Text: text}, true
}

func (s *state) externalLink() (Node, bool) {
	if !s.cfg.hasProtocol(s.src[s.pos+1:]) {
		return nil, false
	}
	start := s.pos
	s.pos++
	nodes := s.inline([]string{"]"}, true)
	if s.eof() || s.src[s.pos] != ']' {
		s.pos = start
		return nil, false
	}
	s.pos++
	return ExternalLink{Nodes: nodes}, true
}

func (s *state) templateParameter() (Node, bool) {
	start := s.pos
	s.pos += 3
	name := s.inline([]string{"|", "}}}"}, false)
	var def []Node
	if !s.eof() && s.src[s.pos] == '|' {
		s.pos++
		def = s.inline([]string{"}}}"}, false)
	}
	if !strings.HasPrefix(s.rest(), "}}}") {
		s.pos = start
		return nil, false
	}
	s.pos += 3
	return TemplateParameter{Name: trimNodes(name), Default: def}, true
}

func (s *state) template() (Node, bool) {
	start := s.pos
	s.pos += 2
	name := trimNodes(s.inline([]string{"|", "}}"}, false))
	if name == nil {
		s.pos = start
		return nil, false
	}

	var params []Parameter
	for !s.eof() && s.src[s.pos] == '|' {
		s.pos++
		first := s.inline([]string{"|", "}}", "="}, false)
		if !s.eof() && s.src[s.pos] == '=' {
			s.pos++
			value := s.inline([]string{"|", "}}"}, false)
			params = append(params, Parameter{Name: trimNodes(first), Value: trimNodes(value)})
			continue
		}
		params = append(params, Parameter{Value: first})
	}
	if !strings.HasPrefix(s.rest(), "}}") {
		s.pos = start
		return nil, false
	}
	s.pos += 2
	return Template{Name: name, Parameters: params}, true
}

func (s *state) comment() (Node, bool) {
	end := strings.Index(s.src[s.pos+4:], "-->")
	if end < 0 {
		s.pos = len(s.src)
	} else {
		s.pos += 4 + end + 3
	}
	return Comment{}, true
}

func (s *state) tag() (Node, bool) {
	start := s.pos
	i := s.pos + 1
	closing := i < len(s.src) && s.src[i] == '/'
	if closing {
		i++
	}
	nameStart := i
	for i < len(s.src) && isTagNameByte(s.src[i]) {
		i++
	}
	name := strings.ToLower(s.src[nameStart:i])
	ext := s.cfg.extensions[name]
	if name == "" || (!ext && !htmlTags[name]) {
		return nil, false
	}

	gt := strings.IndexByte(s.src[i:], '>')
	if gt < 0 || strings.IndexByte(s.src[i:i+gt], '<') >= 0 {
		return nil, false
	}
	attrs := s.src[i : i+gt]
	selfClosing := strings.HasSuffix(attrs, "/")
	s.pos = i + gt + 1

	switch {
	case closing:
		return EndTag{Name: name}, true
	case !ext:
		return StartTag{Name: name, SelfClosing: selfClosing}, true
	case selfClosing:
		return Tag{Name: name}, true
	}

	body, end, ok := findClosingTag(s.src[s.pos:], name)
	if !ok {
		s.pos = start
		return nil, false
	}
	s.pos += end
	var nodes []Node
	if body != "" {
		nodes = []Node{Text{Value: body}}
	}
	return Tag{Name: name, Nodes: nodes}, true
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// findClosingTag returns the text before </name> and the offset just past
// the closing tag.
func findClosingTag(src, name string) (string, int, bool) {
	lower := strings.ToLower(src)
	needle := "</" + name
	from := 0
	for {
		i := strings.Index(lower[from:], needle)
		if i < 0 {
			return "", 0, false
		}
		i += from
		j := i + len(needle)
		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		if j < len(src) && src[j] == '>' {
			return src[:i], j + 1, true
		}
		from = i + len(needle)
	}
}

func (s *state) entity() (Node, bool) {
	rest := s.rest()
	semi := strings.IndexByte(rest, ';')
	if semi < 2 || semi > 12 {
		return nil, false
	}
	raw := rest[:semi+1]
	if !validEntity(raw[1:semi]) {
		return nil, false
	}
	decoded := html.UnescapeString(raw)
	if decoded == raw || utf8.RuneCountInString(decoded) != 1 {
		return nil, false
	}
	r, _ := utf8.DecodeRuneInString(decoded)
	s.pos += len(raw)
	return CharacterEntity{Character: r}, true
}

func validEntity(body string) bool {
	if strings.HasPrefix(body, "#x") || strings.HasPrefix(body, "#X") {
		return body != "#x" && body != "#X" && strings.Trim(body[2:], "0123456789abcdefABCDEF") == ""
	}
	if strings.HasPrefix(body, "#") {
		return body != "#" && strings.Trim(body[1:], "0123456789") == ""
	}
	for i := 0; i < len(body); i++ {
		if !isTagNameByte(body[i]) {
			return false
		}
	}
	return true
}

func (s *state) magicWord() (Node, bool) {
	rest := s.rest()
	end := strings.Index(rest[2:], "__")
	if end <= 0 {
		return nil, false
	}
	word := rest[2 : 2+end]
	if !s.cfg.magic[strings.ToLower(word)] {
		return nil, false
	}
	s.pos += end + 4
	return MagicWord{Name: word}, true
}
