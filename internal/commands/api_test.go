package commands

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/corpus"
	"github.com/julianshen/rhobot/internal/output"
	"github.com/julianshen/rhobot/internal/xref"
)

const docs = "https://lua-api.factorio.com/latest/"

type apiFixture struct {
	runtime *corpus.Cache[apidocs.RuntimeAPI]
	data    *corpus.Cache[apidocs.DataAPI]
	cmd     SlashCommand
}

func newAPIFixture(t *testing.T, examples ExampleFormatter) *apiFixture {
	t.Helper()
	raw, err := os.ReadFile("../apidocs/testdata/runtime-api.json")
	require.NoError(t, err)
	rt, err := apidocs.DecodeRuntimeAPI(raw)
	require.NoError(t, err)
	raw, err = os.ReadFile("../apidocs/testdata/prototype-api.json")
	require.NoError(t, err)
	data, err := apidocs.DecodeDataAPI(raw)
	require.NoError(t, err)

	f := &apiFixture{
		runtime: corpus.NewCache[apidocs.RuntimeAPI]("runtime api"),
		data:    corpus.NewCache[apidocs.DataAPI]("data api"),
	}
	f.runtime.Store(rt)
	f.data.Store(data)
	links := apidocs.NewLinks("")
	f.cmd = NewAPICommand(f.runtime, f.data, links, xref.New(f.data, links, nil), examples)
	return f
}

func (f *apiFixture) run(t *testing.T, args ...string) *output.Response {
	t.Helper()
	res, err := f.cmd.Execute(context.Background(), args)
	require.NoError(t, err)
	require.NotNil(t, res.Response)
	return res.Response
}

func TestAPIClassCard(t *testing.T) {
	f := newAPIFixture(t, nil)
	r := f.run(t, "class", "luaentity")

	assert.Equal(t, "Class", r.Author)
	assert.Equal(t, docs+"classes.html", r.AuthorURL)
	assert.Equal(t, "LuaEntity", r.Title)
	assert.Equal(t, docs+"classes/LuaEntity.html", r.URL)
	assert.Equal(t, output.ColorGold, r.Color)
	assert.Contains(t, r.Description, "[energy]("+docs+"prototypes/EntityPrototype.html#energy_source)")
	assert.Empty(t, r.Fields)
}

func TestAPIClassMethodField(t *testing.T) {
	f := newAPIFixture(t, nil)
	for _, args := range [][]string{
		{"class", "LuaEntity", "teleport"},
		{"class", "LuaEntity::teleport"},
		{"class", "LuaEntity", "teleport", "|", "how", "to", "move"},
	} {
		r := f.run(t, args...)
		require.Len(t, r.Fields, 1, args)
		assert.Equal(t, "`teleport(position, surface?) 🡪 boolean`", r.Fields[0].Name)
		assert.Equal(t, "Teleports the entity to a given position.\n[Full documentation]("+docs+"classes/LuaEntity.html#teleport)", r.Fields[0].Value)
	}

	r := f.run(t, "class", "LuaEntity", "set_driver")
	assert.Equal(t, "`set_driver{driver?=...}`", r.Fields[0].Name)
}

func TestAPIClassAttributeField(t *testing.T) {
	f := newAPIFixture(t, nil)
	r := f.run(t, "class", "LuaEntity", "HEALTH")
	require.Len(t, r.Fields, 1)
	assert.Equal(t, "`health [RW] :: float?`", r.Fields[0].Name)
	assert.True(t, strings.HasSuffix(r.Fields[0].Value, "classes/LuaEntity.html#health)"))
}

func TestAPIClassUnknownMemberIsAField(t *testing.T) {
	f := newAPIFixture(t, nil)
	r := f.run(t, "class", "LuaEntity", "bogus")
	require.Len(t, r.Fields, 1)
	assert.Equal(t, "Error", r.Fields[0].Name)
	assert.Equal(t, "Could not find property `bogus`", r.Fields[0].Value)
}

func TestAPIMemberFieldFitsLimit(t *testing.T) {
	f := newAPIFixture(t, nil)
	rt, err := f.runtime.Load()
	require.NoError(t, err)
	patched := *rt
	patched.Classes = append([]apidocs.Class(nil), rt.Classes...)
	patched.Classes[0].Methods = append([]apidocs.Method(nil), rt.Classes[0].Methods...)
	patched.Classes[0].Methods[0].Description = strings.Repeat("long ", 400)
	f.runtime.Store(&patched)

	r := f.run(t, "class", "LuaEntity", "teleport")
	assert.Len(t, []rune(r.Fields[0].Value), output.FieldValueLimit)
	assert.True(t, strings.HasSuffix(r.Fields[0].Value, "#teleport)"))
}

func TestAPIRuntimeSections(t *testing.T) {
	f := newAPIFixture(t, nil)

	r := f.run(t, "event", "on_tick")
	assert.Equal(t, "Event", r.Author)
	assert.Equal(t, docs+"events.html#on_tick", r.URL)

	r = f.run(t, "define", "defines.direction")
	assert.Equal(t, "Define", r.Author)
	assert.Equal(t, docs+"defines.html#defines.direction", r.URL)

	r = f.run(t, "concept", "mapposition")
	assert.Equal(t, "Concept", r.Author)
	assert.Equal(t, "MapPosition", r.Title)
	assert.Equal(t, docs+"concepts.html#MapPosition", r.URL)
}

func TestAPIPrototype(t *testing.T) {
	f := newAPIFixture(t, nil)

	r := f.run(t, "prototype", "RoboportPrototype")
	assert.Equal(t, "Prototype", r.Author)
	assert.Equal(t, docs+"prototypes/RoboportPrototype.html", r.URL)
	assert.Contains(t, r.Description, "[EntityPrototype]("+docs+"prototypes/EntityPrototype.html#)")

	r = f.run(t, "prototype", "EntityPrototype::icon_size")
	require.Len(t, r.Fields, 1)
	assert.Equal(t, "`icon_size optional :: SpriteSizeType`", r.Fields[0].Name)
	assert.True(t, strings.HasSuffix(r.Fields[0].Value, "prototypes/EntityPrototype.html#icon_size)"))

	r = f.run(t, "prototype", "EntityPrototype", "nope")
	assert.Equal(t, "Could not find property `nope`", r.Fields[0].Value)
}

func TestAPIType(t *testing.T) {
	f := newAPIFixture(t, nil)

	r := f.run(t, "type", "Color", "r")
	assert.Equal(t, "Type", r.Author)
	assert.True(t, strings.HasPrefix(r.Title, "Color :: "))
	require.Len(t, r.Fields, 1)
	assert.Equal(t, "`r optional :: float`", r.Fields[0].Name)

	r = f.run(t, "type", "Color", "g")
	assert.Equal(t, "Could not find property `g`", r.Fields[0].Value)

	r = f.run(t, "type", "EnergySource", "r")
	assert.Equal(t, "Type has no properties", r.Fields[0].Value)
}

func TestAPINotFound(t *testing.T) {
	f := newAPIFixture(t, nil)
	ctx := context.Background()

	_, err := f.cmd.Execute(ctx, []string{"class", "LuaNothing"})
	var nf *apidocs.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Could not find class `LuaNothing` in runtime API documentation", err.Error())

	_, err = f.cmd.Execute(ctx, []string{"type", "Nothing"})
	assert.Equal(t, "Could not find type `Nothing` in prototype API documentation", err.Error())

	_, err = f.cmd.Execute(ctx, []string{"class"})
	var usage *UsageError
	assert.True(t, errors.As(err, &usage))

	_, err = f.cmd.Execute(ctx, []string{"widget", "x"})
	assert.True(t, errors.As(err, &usage))
}

func TestAPIEmptyCache(t *testing.T) {
	links := apidocs.NewLinks("")
	data := corpus.NewCache[apidocs.DataAPI]("data api")
	cmd := NewAPICommand(corpus.NewCache[apidocs.RuntimeAPI]("runtime api"), data, links, xref.New(data, links, nil), nil)

	_, err := cmd.Execute(context.Background(), []string{"class", "LuaEntity"})
	assert.ErrorIs(t, err, corpus.ErrUnavailable)
	assert.Nil(t, cmd.Complete(context.Background(), []string{"class", "Lua"}))
}

func TestAPIPage(t *testing.T) {
	f := newAPIFixture(t, nil)

	r := f.run(t, "page", "Lifecycle")
	assert.Equal(t, "Lifecycle", r.Title)
	assert.Equal(t, docs+"auxiliary/data-lifecycle.html", r.Description)
	assert.Equal(t, output.ColorGold, r.Color)

	r = f.run(t, "page", "data.raw")
	assert.Equal(t, "https://wiki.factorio.com/Data.raw", r.Description)

	r = f.run(t, "page", "command", "line", "parameters")
	assert.Equal(t, "Command Line Parameters", r.Title)

	_, err := f.cmd.Execute(context.Background(), []string{"page", "nowhere"})
	assert.Error(t, err)
}

type fenceExamples struct{}

func (fenceExamples) FormatExample(_ context.Context, src string) string {
	return "```lua\n" + src + "\n```"
}

func TestAPIExamplesAreFormatted(t *testing.T) {
	f := newAPIFixture(t, fenceExamples{})
	rt, err := f.runtime.Load()
	require.NoError(t, err)
	patched := *rt
	patched.Concepts = []apidocs.Concept{{Member: apidocs.Member{
		Name:     "Tick",
		Examples: []string{"game.tick"},
	}}}
	f.runtime.Store(&patched)

	r := f.run(t, "concept", "Tick")
	require.Len(t, r.Fields, 1)
	assert.Equal(t, "Example", r.Fields[0].Name)
	assert.Equal(t, "```lua\ngame.tick\n```", r.Fields[0].Value)
}

func candidateValues(cs []Candidate) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.Value)
	}
	return out
}

func TestAPIComplete(t *testing.T) {
	f := newAPIFixture(t, nil)
	ctx := context.Background()

	assert.Len(t, f.cmd.Complete(ctx, nil), len(apiSubcommands))
	assert.Equal(t, []string{"prototype", "page"}, candidateValues(f.cmd.Complete(ctx, []string{"p"})))
	assert.Equal(t, []string{"LuaEntity", "LuaControl"}, candidateValues(f.cmd.Complete(ctx, []string{"class", "lua"})))
	assert.Equal(t, []string{"LuaEntity"}, candidateValues(f.cmd.Complete(ctx, []string{"class", "LEnt"})))
	assert.Equal(t, []string{"teleport", "set_driver", "health"}, candidateValues(f.cmd.Complete(ctx, []string{"class", "LuaEntity", "t"})))
	assert.Equal(t, []string{"energy_source", "icon_size"}, candidateValues(f.cmd.Complete(ctx, []string{"prototype", "EntityPrototype", "_s"})))
	assert.Equal(t, []string{"Color"}, candidateValues(f.cmd.Complete(ctx, []string{"type", "co"})))
	assert.Equal(t, []string{"on_tick"}, candidateValues(f.cmd.Complete(ctx, []string{"event", ""})))
	assert.Nil(t, f.cmd.Complete(ctx, []string{"class", "Missing", ""}))
}
