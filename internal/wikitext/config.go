package wikitext

import "strings"

// Config describes the wiki the markup comes from. Names are matched
// case-insensitively.
type Config struct {
	CategoryNamespaces []string
	FileNamespaces     []string
	ExtensionTags      []string
	MagicWords         []string
	Protocols          []string
	RedirectWords      []string
	// LinkTrail lists the characters that extend a link's label when they
	// directly follow the closing brackets.
	LinkTrail string
}

// FactorioWiki is the configuration of wiki.factorio.com.
func FactorioWiki() Config {
	return Config{
		CategoryNamespaces: []string{"category"},
		FileNamespaces:     []string{"file", "image"},
		ExtensionTags: []string{
			"charinsert", "gallery", "imagemap", "indicator", "info", "langconvert", "nowiki",
			"pre", "section", "seo", "smwdoc", "source", "syntaxhighlight", "tabber",
		},
		MagicWords: []string{
			"expectunusedcategory", "forcetoc", "hiddencat", "index", "newsectionlink", "nocc",
			"nocontentconvert", "noeditsection", "nofactbox", "nogallery", "noindex",
			"nonewsectionlink", "notc", "notitleconvert", "notoc", "showfactbox",
			"staticredirect", "toc",
		},
		Protocols: []string{
			"//", "bitcoin:", "ftp://", "ftps://", "geo:", "git://", "gopher://", "http://",
			"https://", "irc://", "ircs://", "magnet:", "mailto:", "mms://", "news:", "nntp://",
			"redis://", "sftp://", "sip:", "sips:", "sms:", "ssh://", "svn://", "tel:",
			"telnet://", "urn:", "worldwind://", "xmpp:",
		},
		RedirectWords: []string{"redirect"},
		LinkTrail:     "abcdefghijklmnopqrstuvwxyz",
	}
}

// htmlTags are the HTML elements MediaWiki passes through as tags.
var htmlTags = toSet([]string{
	"abbr", "b", "bdi", "bdo", "big", "blockquote", "br", "caption", "center", "cite", "code",
	"data", "dd", "del", "dfn", "div", "dl", "dt", "em", "font", "h1", "h2", "h3", "h4", "h5",
	"h6", "hr", "i", "ins", "kbd", "li", "mark", "ol", "p", "q", "rb", "rp", "rt", "rtc",
	"ruby", "s", "samp", "small", "span", "strike", "strong", "sub", "sup", "table", "td",
	"th", "time", "tr", "tt", "u", "ul", "var", "wbr",
})

type compiled struct {
	Config
	categories map[string]bool
	files      map[string]bool
	extensions map[string]bool
	magic      map[string]bool
	redirects  []string
}

func compile(c Config) *compiled {
	redirects := make([]string, len(c.RedirectWords))
	for i, w := range c.RedirectWords {
		redirects[i] = "#" + strings.ToLower(w)
	}
	return &compiled{
		Config:     c,
		categories: toSet(c.CategoryNamespaces),
		files:      toSet(c.FileNamespaces),
		extensions: toSet(c.ExtensionTags),
		magic:      toSet(c.MagicWords),
		redirects:  redirects,
	}
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = true
	}
	return m
}

// hasProtocol reports whether s starts with a configured URL protocol.
func (c *compiled) hasProtocol(s string) bool {
	for _, p := range c.Protocols {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return true
		}
	}
	return false
}
