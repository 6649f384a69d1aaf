// Package xref rewrites the internal cross-reference links found in API
// descriptions, such as [text](runtime:LuaEntity::teleport), into absolute
// documentation URLs.
package xref

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/logging"
)

var linkPattern = regexp.MustCompile(
	`\[(?P<linktext>.+?)\]\((?P<cat>runtime|prototype):(?P<page>.+?)(?P<property>::.+?)?\)`)

var (
	groupText     = linkPattern.SubexpIndex("linktext")
	groupCategory = linkPattern.SubexpIndex("cat")
	groupPage     = linkPattern.SubexpIndex("page")
	groupProperty = linkPattern.SubexpIndex("property")
)

// DataSource supplies the current data-stage snapshot. *corpus.Cache
// satisfies it.
type DataSource interface {
	Load() (*apidocs.DataAPI, error)
}

// Resolver rewrites internal links against the data-stage corpus.
type Resolver struct {
	data   DataSource
	links  apidocs.Links
	logger *zap.Logger
}

// New returns a Resolver building URLs under links.
func New(data DataSource, links apidocs.Links, logger *zap.Logger) *Resolver {
	return &Resolver{data: data, links: links, logger: logging.OrNop(logger)}
}

// Resolve replaces every internal link in text. Links into the data stage
// that match neither a prototype nor a type keep only their label. Text
// outside links is untouched.
func (r *Resolver) Resolve(text string) string {
	if !strings.Contains(text, "](") {
		return text
	}

	var api *apidocs.DataAPI
	loaded := false

	return linkPattern.ReplaceAllStringFunc(text, func(full string) string {
		m := linkPattern.FindStringSubmatch(full)
		label, page := m[groupText], m[groupPage]

		var section string
		switch m[groupCategory] {
		case "runtime":
			section = "classes"
		case "prototype":
			if !loaded {
				var err error
				api, err = r.data.Load()
				if err != nil {
					r.logger.Warn("data-stage corpus unavailable for link resolution", zap.Error(err))
				}
				loaded = true
			}
			section = classify(api, page)
		}

		if section == "" {
			r.logger.Warn("failed to parse internal API link", zap.String("link", full))
			return label
		}
		anchor := strings.TrimLeft(m[groupProperty], ":")
		return "[" + label + "](" + r.links.Base() + section + "/" + page + ".html#" + anchor + ")"
	})
}

// classify picks the data-stage section page lives in, prototypes first.
func classify(api *apidocs.DataAPI, page string) string {
	switch {
	case api == nil:
		return ""
	case api.HasPrototype(page):
		return "prototypes"
	case api.HasType(page):
		return "types"
	default:
		return ""
	}
}
