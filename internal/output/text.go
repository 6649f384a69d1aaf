package output

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks truncated text.
const Ellipsis = "..."

// Truncate shortens s to at most limit runes, ending in Ellipsis when
// anything was cut. Cuts never split a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= len(Ellipsis) {
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-len(Ellipsis)]) + Ellipsis
}

// EscapeFormatting escapes markdown emphasis characters and breaks mentions.
func EscapeFormatting(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '_', '*', '~':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '@':
			b.WriteString("@\u200b")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Capitalize lowercases s and uppercases its first rune.
func Capitalize(s string) string {
	lower := strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(lower)
	if size == 0 {
		return ""
	}
	return strings.ToUpper(string(r)) + lower[size:]
}
