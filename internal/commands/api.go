package commands

import (
	"context"
	"strings"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/fuzzy"
	"github.com/julianshen/rhobot/internal/output"
	"github.com/julianshen/rhobot/internal/xref"
)

// RuntimeSource supplies the current runtime API snapshot.
type RuntimeSource interface {
	Load() (*apidocs.RuntimeAPI, error)
}

// ExampleFormatter turns a documentation example into display text.
// *parser.Parser satisfies it.
type ExampleFormatter interface {
	FormatExample(ctx context.Context, src string) string
}

// completionLimit caps suggestion lists.
const completionLimit = 25

const fullDocsLabel = "\n[Full documentation]("

// auxPage is one entry of the auxiliary documentation index.
type auxPage struct {
	key, title, url string
}

var auxPages = []auxPage{
	{"home", "Home", "https://lua-api.factorio.com/latest/"},
	{"lifecycle", "Lifecycle", "https://lua-api.factorio.com/latest/auxiliary/data-lifecycle.html"},
	{"storage", "Storage", "https://lua-api.factorio.com/latest/auxiliary/storage.html"},
	{"structure", "Mod Structure", "https://lua-api.factorio.com/latest/auxiliary/mod-structure.html"},
	{"changelog", "Changelog Format", "https://lua-api.factorio.com/latest/auxiliary/changelog-format.html"},
	{"migrations", "Migrations", "https://lua-api.factorio.com/latest/auxiliary/migrations.html"},
	{"libraries", "Libraries and Functions", "https://lua-api.factorio.com/latest/auxiliary/libraries.html"},
	{"classes", "Classes", "https://lua-api.factorio.com/latest/classes.html"},
	{"events", "Events", "https://lua-api.factorio.com/latest/events.html"},
	{"concepts", "Concepts", "https://lua-api.factorio.com/latest/concepts.html"},
	{"defines", "Defines", "https://lua-api.factorio.com/latest/defines.html"},
	{"prototypes", "Prototypes", "https://lua-api.factorio.com/latest/prototypes.html"},
	{"types", "Types", "https://lua-api.factorio.com/latest/types.html"},
	{"tree", "Prototype Inheritance Tree", "https://lua-api.factorio.com/latest/tree.html"},
	{"noise", "Noise Expressions", "https://lua-api.factorio.com/latest/auxiliary/noise-expressions.html"},
	{"instrument", "Instrument Mode", "https://lua-api.factorio.com/latest/auxiliary/instrument.html"},
	{"weight", "Item Weight", "https://lua-api.factorio.com/latest/auxiliary/item-weight.html"},
	{"modding", "Modding Tutorial", "https://wiki.factorio.com/Tutorial:Modding_tutorial/Gangsir"},
	{"scripting", "Scripting Tutorial", "https://wiki.factorio.com/Tutorial:Scripting"},
	{"localisation", "Localisation", "https://wiki.factorio.com/Tutorial:Localisation"},
	{"scenario", "Scenario System", "https://wiki.factorio.com/Scenario_system"},
	{"cli", "Command Line Parameters", "https://wiki.factorio.com/Command_line_parameters"},
	{"console", "Console Commands", "https://wiki.factorio.com/Console"},
	{"data.raw", "data.raw", "https://wiki.factorio.com/Data.raw"},
}

var apiSubcommands = []string{"class", "event", "define", "concept", "prototype", "type", "page"}

type apiCommand struct {
	runtime  RuntimeSource
	data     xref.DataSource
	links    apidocs.Links
	resolver *xref.Resolver
	examples ExampleFormatter
}

// NewAPICommand creates the api command over both corpora. examples may be
// nil, in which case examples are shown verbatim.
func NewAPICommand(runtime RuntimeSource, data xref.DataSource, links apidocs.Links, resolver *xref.Resolver, examples ExampleFormatter) SlashCommand {
	return &apiCommand{
		runtime:  runtime,
		data:     data,
		links:    links,
		resolver: resolver,
		examples: examples,
	}
}

func (c *apiCommand) Name() string        { return "api" }
func (c *apiCommand) Description() string { return "Link the modding API documentation" }
func (c *apiCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{
		{Name: "section", Description: "Part of the API to search", Required: true, Static: apiSubcommands},
		{Name: "name", Description: "Class, event, define, concept, prototype, type or page", Required: true},
		{Name: "member", Description: "Method, attribute or property; also accepted as Name::member"},
	}
}

func (c *apiCommand) usage() error {
	return &UsageError{Command: "api", Usage: "<" + strings.Join(apiSubcommands, "|") + "> <name> [member]"}
}

func (c *apiCommand) Execute(ctx context.Context, args []string) (Result, error) {
	if len(args) < 2 {
		return Result{}, c.usage()
	}
	sub := strings.ToLower(args[0])
	if sub == "page" {
		return c.page(strings.Join(args[1:], " "))
	}

	fields := strings.Fields(apidocs.StripComment(strings.Join(args[1:], " ")))
	if len(fields) == 0 {
		return Result{}, c.usage()
	}
	name, member := apidocs.SplitQuery(fields[0], strings.Join(fields[1:], " "))

	var (
		r   *output.Response
		err error
	)
	switch sub {
	case "class":
		r, err = c.class(ctx, name, member)
	case "event":
		r, err = c.event(ctx, name)
	case "define":
		r, err = c.define(ctx, name)
	case "concept":
		r, err = c.concept(ctx, name)
	case "prototype":
		r, err = c.prototype(ctx, name, member)
	case "type":
		r, err = c.dataType(ctx, name, member)
	default:
		return Result{}, c.usage()
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Response: r}, nil
}

// card builds the common GOLD entity card.
func (c *apiCommand) card(ctx context.Context, author string, kind apidocs.Kind, url string, m apidocs.Member) *output.Response {
	r := &output.Response{
		Author:      author,
		AuthorURL:   c.links.Section(kind),
		Title:       m.Name,
		URL:         url,
		Description: output.Truncate(c.resolver.Resolve(m.Description), output.DescriptionLimit),
		Color:       output.ColorGold,
	}
	if len(m.Examples) > 0 {
		r.AddField("Example", c.example(ctx, m.Examples[0]), false)
	}
	return r
}

func (c *apiCommand) example(ctx context.Context, src string) string {
	if c.examples == nil {
		return src
	}
	return c.examples.FormatExample(ctx, src)
}

// memberField appends a member field whose value ends in a documentation
// link, trimming the description so the link always fits.
func (c *apiCommand) memberField(r *output.Response, title, description, url string) {
	link := fullDocsLabel + url + ")"
	budget := output.FieldValueLimit - len([]rune(link))
	value := output.Truncate(c.resolver.Resolve(description), max(budget, 0)) + link
	r.Fields = append(r.Fields, output.Field{Name: output.Truncate(title, output.FieldNameLimit), Value: value})
}

func errorField(r *output.Response, err error) {
	r.AddField("Error", UserMessage(err), false)
}

// methodTitle fits a method signature into a field name, cutting the
// parameter list first.
func methodTitle(m apidocs.Method) string {
	name := []rune(m.Name)
	returns := apidocs.ReturnSignature(m)
	budget := output.FieldNameLimit - len(name) - 2
	if returns != "" {
		budget = output.FieldNameLimit - len(name) - len([]rune(returns)) - 5
	}
	sig := output.Truncate(apidocs.MethodSignature(m), max(budget, 0))
	return apidocs.FormatMethodTitle(m.Name, sig, returns)
}

func (c *apiCommand) class(ctx context.Context, name, member string) (*output.Response, error) {
	api, err := c.runtime.Load()
	if err != nil {
		return nil, err
	}
	class, ok := apidocs.FindByName(api.Classes, name)
	if !ok {
		return nil, apidocs.NotFound(apidocs.KindClass, name, apidocs.RuntimeCorpusLabel)
	}
	r := c.card(ctx, "Class", apidocs.KindClass, c.links.Class(class.Name, ""), class.Member)
	if member == "" {
		return r, nil
	}
	if m, ok := class.FindMethod(member); ok {
		c.memberField(r, methodTitle(m), m.Description, c.links.Class(class.Name, m.Name))
	} else if a, ok := class.FindAttribute(member); ok {
		c.memberField(r, apidocs.AttributeTitle(a), a.Description, c.links.Class(class.Name, a.Name))
	} else {
		errorField(r, apidocs.NotFound(apidocs.KindProperty, member, apidocs.RuntimeCorpusLabel))
	}
	return r, nil
}

func (c *apiCommand) event(ctx context.Context, name string) (*output.Response, error) {
	api, err := c.runtime.Load()
	if err != nil {
		return nil, err
	}
	ev, ok := apidocs.FindByName(api.Events, name)
	if !ok {
		return nil, apidocs.NotFound(apidocs.KindEvent, name, apidocs.RuntimeCorpusLabel)
	}
	return c.card(ctx, "Event", apidocs.KindEvent, c.links.Event(ev.Name), ev.Member), nil
}

func (c *apiCommand) define(ctx context.Context, name string) (*output.Response, error) {
	api, err := c.runtime.Load()
	if err != nil {
		return nil, err
	}
	def, ok := apidocs.FindByName(api.Defines, strings.TrimPrefix(name, "defines."))
	if !ok {
		return nil, apidocs.NotFound(apidocs.KindDefine, name, apidocs.RuntimeCorpusLabel)
	}
	return c.card(ctx, "Define", apidocs.KindDefine, c.links.Define(def.Name), def.Member), nil
}

func (c *apiCommand) concept(ctx context.Context, name string) (*output.Response, error) {
	api, err := c.runtime.Load()
	if err != nil {
		return nil, err
	}
	concept, ok := apidocs.FindByName(api.Concepts, name)
	if !ok {
		return nil, apidocs.NotFound(apidocs.KindConcept, name, apidocs.RuntimeCorpusLabel)
	}
	return c.card(ctx, "Concept", apidocs.KindConcept, c.links.Concept(concept.Name), concept.Member), nil
}

func (c *apiCommand) prototype(ctx context.Context, name, property string) (*output.Response, error) {
	api, err := c.data.Load()
	if err != nil {
		return nil, err
	}
	proto, ok := apidocs.FindByName(api.Prototypes, name)
	if !ok {
		return nil, apidocs.NotFound(apidocs.KindPrototype, name, apidocs.PrototypeCorpusLabel)
	}
	r := c.card(ctx, "Prototype", apidocs.KindPrototype, c.links.Prototype(proto.Name, ""), proto.Member)
	if property == "" {
		return r, nil
	}
	if p, ok := proto.FindProperty(property); ok {
		c.memberField(r, apidocs.PropertyTitle(p), p.Description, c.links.Prototype(proto.Name, p.Name))
	} else {
		errorField(r, apidocs.NotFound(apidocs.KindProperty, property, apidocs.PrototypeCorpusLabel))
	}
	return r, nil
}

func (c *apiCommand) dataType(ctx context.Context, name, property string) (*output.Response, error) {
	api, err := c.data.Load()
	if err != nil {
		return nil, err
	}
	t, ok := apidocs.FindByName(api.Types, name)
	if !ok {
		return nil, apidocs.NotFound(apidocs.KindType, name, apidocs.PrototypeCorpusLabel)
	}
	r := c.card(ctx, "Type", apidocs.KindType, c.links.Type(t.Name, ""), t.Member)
	r.Title = apidocs.DataTypeTitle(t)
	if property == "" {
		return r, nil
	}
	p, found, hasProperties := t.FindProperty(property)
	switch {
	case !hasProperties:
		errorField(r, apidocs.ErrNoTypeProperties)
	case !found:
		errorField(r, apidocs.NotFound(apidocs.KindProperty, property, apidocs.PrototypeCorpusLabel))
	default:
		c.memberField(r, apidocs.PropertyTitle(p), p.Description, c.links.Type(t.Name, p.Name))
	}
	return r, nil
}

func (c *apiCommand) page(query string) (Result, error) {
	query = strings.ToLower(apidocs.StripComment(query))
	for _, p := range auxPages {
		if p.key == query || strings.ToLower(p.title) == query {
			return Result{Response: &output.Response{
				Title:       p.title,
				Description: p.url,
				Color:       output.ColorGold,
			}}, nil
		}
	}
	return Result{}, apidocs.NotFound("page", query, "auxiliary")
}

func (c *apiCommand) Complete(_ context.Context, args []string) []Candidate {
	switch len(args) {
	case 0:
		return names(apiSubcommands)
	case 1:
		return names(apidocs.WithPrefix(apiSubcommands, args[0]))
	case 2:
		return names(c.entityNames(strings.ToLower(args[0]), args[1]))
	case 3:
		return names(c.memberNames(strings.ToLower(args[0]), args[1], args[2]))
	default:
		return nil
	}
}

// entityNames filters names by prefix and falls back to fuzzy ranking when
// no name starts with partial.
func (c *apiCommand) entityNames(sub, partial string) []string {
	var all []string
	switch sub {
	case "page":
		for _, p := range auxPages {
			all = append(all, p.key)
		}
	case "class", "event", "define", "concept":
		api, err := c.runtime.Load()
		if err != nil {
			return nil
		}
		switch sub {
		case "class":
			all = apidocs.Names(api.Classes)
		case "event":
			all = apidocs.Names(api.Events)
		case "define":
			all = apidocs.Names(api.Defines)
		default:
			all = apidocs.Names(api.Concepts)
		}
	case "prototype", "type":
		api, err := c.data.Load()
		if err != nil {
			return nil
		}
		if sub == "prototype" {
			all = apidocs.Names(api.Prototypes)
		} else {
			all = apidocs.Names(api.Types)
		}
	}
	matches := apidocs.WithPrefix(all, partial)
	if len(matches) == 0 && partial != "" {
		return fuzzy.Rank(partial, all, completionLimit)
	}
	return limit(matches)
}

func (c *apiCommand) memberNames(sub, entity, partial string) []string {
	var all []string
	switch sub {
	case "class":
		api, err := c.runtime.Load()
		if err != nil {
			return nil
		}
		class, ok := apidocs.FindByName(api.Classes, entity)
		if !ok {
			return nil
		}
		all = class.MemberNames()
	case "prototype":
		api, err := c.data.Load()
		if err != nil {
			return nil
		}
		proto, ok := apidocs.FindByName(api.Prototypes, entity)
		if !ok {
			return nil
		}
		all = apidocs.Names(proto.Properties)
	case "type":
		api, err := c.data.Load()
		if err != nil {
			return nil
		}
		t, ok := apidocs.FindByName(api.Types, entity)
		if !ok {
			return nil
		}
		all = apidocs.Names(t.Properties)
	}
	return limit(apidocs.Containing(all, partial))
}

func limit(values []string) []string {
	if len(values) > completionLimit {
		return values[:completionLimit]
	}
	return values
}
