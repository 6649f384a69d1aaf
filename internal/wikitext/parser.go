package wikitext

import (
	"strings"
)

// Parser turns markup into nodes. It is safe for concurrent use.
type Parser struct {
	cfg *compiled
}

// NewParser returns a parser for a wiki configured as cfg.
func NewParser(cfg Config) *Parser {
	return &Parser{cfg: compile(cfg)}
}

// Parse parses a whole page.
func (p *Parser) Parse(src string) []Node {
	st := &state{cfg: p.cfg, src: strings.ReplaceAll(src, "\r\n", "\n")}
	return st.document()
}

// Parse parses src with the wiki.factorio.com configuration.
func Parse(src string) []Node {
	return NewParser(FactorioWiki()).Parse(src)
}

type state struct {
	cfg *compiled
	src string
	pos int
}

func (s *state) eof() bool { return s.pos >= len(s.src) }

func (s *state) rest() string { return s.src[s.pos:] }

func (s *state) lineEnd() int {
	if i := strings.IndexByte(s.rest(), '\n'); i >= 0 {
		return s.pos + i
	}
	return len(s.src)
}

func (s *state) skipNewline() {
	if !s.eof() && s.src[s.pos] == '\n' {
		s.pos++
	}
}

func (s *state) skipSpaces() {
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *state) blankLine() bool {
	end := s.lineEnd()
	return strings.TrimSpace(s.src[s.pos:end]) == ""
}

func (s *state) skipBlankLines() {
	for !s.eof() && s.blankLine() {
		s.pos = s.lineEnd()
		s.skipNewline()
	}
}

// sub parses a fragment as inline markup.
func (s *state) sub(src string) []Node {
	return (&state{cfg: s.cfg, src: src}).inline(nil, false)
}

// subBlocks parses a fragment as block markup.
func (s *state) subBlocks(src string) []Node {
	return (&state{cfg: s.cfg, src: src}).blocks()
}

func (s *state) document() []Node {
	s.skipBlankLines()
	var out []Node
	if r, ok := s.redirect(); ok {
		out = append(out, r)
	}
	return append(out, s.blocks()...)
}

func (s *state) redirect() (Node, bool) {
	start := s.pos
	lower := strings.ToLower(s.src[s.pos:min(s.pos+32, len(s.src))])
	matched := ""
	for _, w := range s.cfg.redirects {
		if strings.HasPrefix(lower, w) {
			matched = w
			break
		}
	}
	if matched == "" {
		return nil, false
	}
	s.pos += len(matched)
	s.skipSpaces()
	if !s.eof() && s.src[s.pos] == ':' {
		s.pos++
		s.skipSpaces()
	}
	if !strings.HasPrefix(s.rest(), "[[") {
		s.pos = start
		return nil, false
	}
	end := strings.Index(s.rest(), "]]")
	if end < 0 {
		s.pos = start
		return nil, false
	}
	target := s.src[s.pos+2 : s.pos+end]
	if i := strings.IndexByte(target, '|'); i >= 0 {
		target = target[:i]
	}
	s.pos += end + 2
	return Redirect{Target: strings.TrimSpace(target)}, true
}

type blockKind int

const (
	blockNone blockKind = iota
	blockHeading
	blockDivider
	blockList
	blockPre
	blockTable
)

func (s *state) blockKind() blockKind {
	if s.eof() {
		return blockNone
	}
	rest := s.rest()
	switch c := rest[0]; {
	case c == '=' && isHeadingLine(s.src[s.pos:s.lineEnd()]):
		return blockHeading
	case strings.HasPrefix(rest, "----"):
		return blockDivider
	case strings.IndexByte("*#:;", c) >= 0:
		return blockList
	case strings.HasPrefix(rest, "{|"):
		return blockTable
	case c == ' ' || c == '\t':
		if strings.HasPrefix(strings.TrimLeft(rest, " \t"), "{|") {
			return blockTable
		}
		if c == ' ' && !s.blankLine() {
			return blockPre
		}
	}
	return blockNone
}

func (s *state) blocks() []Node {
	var out []Node
	s.skipBlankLines()
	for !s.eof() {
		switch s.blockKind() {
		case blockHeading:
			out = append(out, s.heading())
		case blockDivider:
			out = append(out, s.divider())
		case blockList:
			out = append(out, s.list()...)
		case blockPre:
			out = append(out, s.preformatted())
		case blockTable:
			out = append(out, s.table())
		default:
			out = s.paragraphLine(out)
			continue
		}
		s.skipBlankLines()
	}
	return mergeText(out)
}

// paragraphLine consumes one line of running text and decides how it joins
// the next line.
func (s *state) paragraphLine(out []Node) []Node {
	out = append(out, s.inline(nil, true)...)
	if s.eof() {
		return out
	}
	s.pos++ // newline
	if s.blankLine() {
		s.skipBlankLines()
		if !s.eof() && s.blockKind() == blockNone {
			out = append(out, ParagraphBreak{})
		}
		return out
	}
	if s.blockKind() == blockNone {
		out = appendText(out, "\n")
	}
	return out
}

func isHeadingLine(line string) bool {
	line = strings.TrimRight(line, " \t")
	return len(line) >= 3 && line[0] == '=' && line[len(line)-1] == '=' &&
		strings.Trim(line, "=") != ""
}

func (s *state) heading() Node {
	end := s.lineEnd()
	line := strings.TrimRight(s.src[s.pos:end], " \t")
	lead := len(line) - len(strings.TrimLeft(line, "="))
	trail := len(line) - len(strings.TrimRight(line, "="))
	level := min(lead, trail, 6)
	inner := line[level : len(line)-level]
	s.pos = end
	s.skipNewline()
	return Heading{Level: level, Nodes: s.sub(strings.TrimSpace(inner))}
}

func (s *state) divider() Node {
	for !s.eof() && s.src[s.pos] == '-' {
		s.pos++
	}
	s.skipSpaces()
	s.skipNewline()
	return HorizontalDivider{}
}

func (s *state) preformatted() Node {
	var nodes []Node
	first := true
	for s.blockKind() == blockPre {
		if !first {
			nodes = appendText(nodes, "\n")
		}
		first = false
		s.pos++ // leading space
		nodes = append(nodes, s.inline(nil, true)...)
		s.skipNewline()
	}
	return Preformatted{Nodes: mergeText(nodes)}
}

// --- lists ---

type listEntry struct {
	markers string
	nodes   []Node
}

func (s *state) list() []Node {
	var entries []listEntry
	for !s.eof() && strings.IndexByte("*#:;", s.src[s.pos]) >= 0 {
		start := s.pos
		for !s.eof() && strings.IndexByte("*#:;", s.src[s.pos]) >= 0 {
			s.pos++
		}
		markers := s.src[start:s.pos]
		s.skipSpaces()
		nodes := trimNodes(s.inline(nil, true))
		s.skipNewline()
		entries = append(entries, listEntry{markers: markers, nodes: nodes})
	}
	return buildLists(entries, 0)
}

func listFamily(c byte) byte {
	if c == ';' {
		return ':'
	}
	return c
}

// buildLists groups entries sharing the marker at depth into one list and
// nests deeper entries under the preceding item.
func buildLists(entries []listEntry, depth int) []Node {
	var out []Node
	i := 0
	for i < len(entries) {
		family := listFamily(entries[i].markers[depth])
		var items [][]Node
		var terms []bool
		for i < len(entries) && listFamily(entries[i].markers[depth]) == family {
			e := entries[i]
			if len(e.markers) == depth+1 {
				items = append(items, e.nodes)
				terms = append(terms, e.markers[depth] == ';')
				i++
				continue
			}
			j := i
			for j < len(entries) && len(entries[j].markers) > depth+1 &&
				listFamily(entries[j].markers[depth]) == family {
				j++
			}
			children := buildLists(entries[i:j], depth+1)
			if len(items) == 0 {
				items = append(items, nil)
				terms = append(terms, false)
			}
			items[len(items)-1] = append(items[len(items)-1], children...)
			i = j
		}
		out = append(out, makeList(family, items, terms))
	}
	return out
}

func makeList(family byte, items [][]Node, terms []bool) Node {
	switch family {
	case '#':
		l := OrderedList{Items: make([]ListItem, len(items))}
		for i, nodes := range items {
			l.Items[i] = ListItem{Nodes: nodes}
		}
		return l
	case ':':
		l := DefinitionList{Items: make([]DefinitionItem, len(items))}
		for i, nodes := range items {
			l.Items[i] = DefinitionItem{Term: terms[i], Nodes: nodes}
		}
		return l
	default:
		l := UnorderedList{Items: make([]ListItem, len(items))}
		for i, nodes := range items {
			l.Items[i] = ListItem{Nodes: nodes}
		}
		return l
	}
}

// --- text helpers ---

func appendText(nodes []Node, s string) []Node {
	if s == "" {
		return nodes
	}
	if n := len(nodes); n > 0 {
		if t, ok := nodes[n-1].(Text); ok {
			nodes[n-1] = Text{Value: t.Value + s}
			return nodes
		}
	}
	return append(nodes, Text{Value: s})
}

func mergeText(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		if t, ok := n.(Text); ok {
			out = appendText(out, t.Value)
			continue
		}
		out = append(out, n)
	}
	return out
}

// trimNodes strips surrounding whitespace from the outer Text nodes.
func trimNodes(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	if t, ok := nodes[0].(Text); ok {
		if v := strings.TrimLeft(t.Value, " \t\n"); v == "" {
			nodes = nodes[1:]
		} else {
			nodes[0] = Text{Value: v}
		}
	}
	if n := len(nodes); n > 0 {
		if t, ok := nodes[n-1].(Text); ok {
			if v := strings.TrimRight(t.Value, " \t\n"); v == "" {
				nodes = nodes[:n-1]
			} else {
				nodes[n-1] = Text{Value: v}
			}
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes
}
