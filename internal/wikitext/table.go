package wikitext

import "strings"

// table consumes a {| ... |} block, including nested tables.
func (s *state) table() Node {
	var lines []string
	depth := 0
	for !s.eof() {
		end := s.lineEnd()
		line := strings.TrimLeft(s.src[s.pos:end], " \t")
		s.pos = end
		s.skipNewline()
		if strings.HasPrefix(line, "{|") {
			depth++
		} else if strings.HasPrefix(line, "|}") {
			depth--
			if depth == 0 {
				break
			}
		}
		lines = append(lines, line)
	}
	return s.buildTable(lines)
}

type rawCell struct {
	header bool
	text   string
}

func (s *state) buildTable(lines []string) Table {
	t := Table{Attributes: strings.TrimSpace(strings.TrimPrefix(lines[0], "{|"))}

	var (
		rows     [][]rawCell
		captions []string
		inCell   bool
		nested   int
	)
	continueCell := func(line string) {
		switch {
		case inCell && len(rows) > 0 && len(rows[len(rows)-1]) > 0:
			row := rows[len(rows)-1]
			row[len(row)-1].text += "\n" + line
		case !inCell && len(captions) > 0:
			captions[len(captions)-1] += "\n" + line
		}
	}
	addCells := func(header bool, parts []string) {
		if len(rows) == 0 {
			rows = append(rows, nil)
		}
		for _, p := range parts {
			rows[len(rows)-1] = append(rows[len(rows)-1], rawCell{header: header, text: p})
		}
		inCell = true
	}

	for _, line := range lines[1:] {
		if nested > 0 {
			if strings.HasPrefix(line, "{|") {
				nested++
			} else if strings.HasPrefix(line, "|}") {
				nested--
			}
			continueCell(line)
			continue
		}
		switch {
		case strings.HasPrefix(line, "{|"):
			nested++
			continueCell(line)
		case strings.HasPrefix(line, "|-"):
			rows = append(rows, nil)
			inCell = false
		case strings.HasPrefix(line, "|+"):
			captions = append(captions, line[2:])
			inCell = false
		case strings.HasPrefix(line, "|"):
			addCells(false, splitTopLevel(line[1:], "||"))
		case strings.HasPrefix(line, "!"):
			var parts []string
			for _, p := range splitTopLevel(line[1:], "!!") {
				parts = append(parts, splitTopLevel(p, "||")...)
			}
			addCells(true, parts)
		default:
			continueCell(line)
		}
	}

	for _, c := range captions {
		t.Captions = append(t.Captions, s.sub(strings.TrimSpace(c)))
	}
	for _, raw := range rows {
		if len(raw) == 0 {
			continue
		}
		row := TableRow{Cells: make([]TableCell, len(raw))}
		for i, c := range raw {
			attrs, content := cellAttributes(c.text)
			row.Cells[i] = TableCell{
				Header:     c.header,
				Attributes: attrs,
				Nodes:      s.subBlocks(strings.TrimSpace(content)),
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// cellAttributes splits "attrs | content" at the first top-level pipe.
func cellAttributes(text string) (string, string) {
	parts := splitTopLevel(text, "|")
	if len(parts) < 2 {
		return "", text
	}
	attrs := parts[0]
	if strings.Contains(attrs, "[[") || strings.Contains(attrs, "{{") {
		return "", text
	}
	return strings.TrimSpace(attrs), text[len(attrs)+1:]
}

// splitTopLevel splits s on sep outside [[...]] and {{...}}.
func splitTopLevel(s, sep string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "[[") || strings.HasPrefix(s[i:], "{{"):
			depth++
			i++
		case (strings.HasPrefix(s[i:], "]]") || strings.HasPrefix(s[i:], "}}")) && depth > 0:
			depth--
			i++
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			parts = append(parts, s[last:i])
			i += len(sep) - 1
			last = i + 1
		}
	}
	return append(parts, s[last:])
}
