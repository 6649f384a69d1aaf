package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/corpus"
)

const dataJSON = `{
  "application": "factorio",
  "stage": "prototype",
  "application_version": "2.0.28",
  "prototypes": [{"name": "EntityPrototype"}, {"name": "RoboportPrototype"}],
  "types": [{"name": "Color", "type": "struct"}, {"name": "EnergySource", "type": "string"}]
}`

func newResolver(t *testing.T) (*Resolver, *observer.ObservedLogs) {
	t.Helper()
	api, err := apidocs.DecodeDataAPI([]byte(dataJSON))
	require.NoError(t, err)
	cache := corpus.NewCache[apidocs.DataAPI]("prototype API")
	cache.Store(api)

	core, logs := observer.New(zapcore.WarnLevel)
	return New(cache, apidocs.NewLinks(""), zap.New(core)), logs
}

func TestResolveRuntimeLinkWithoutMember(t *testing.T) {
	r, _ := newResolver(t)
	got := r.Resolve("See [LuaEntity](runtime:LuaEntity).")
	assert.Equal(t, "See [LuaEntity](https://lua-api.factorio.com/latest/classes/LuaEntity.html#).", got)
}

func TestResolveRuntimeLinkWithMember(t *testing.T) {
	r, _ := newResolver(t)
	got := r.Resolve("[teleport](runtime:LuaEntity::teleport)")
	assert.Equal(t, "[teleport](https://lua-api.factorio.com/latest/classes/LuaEntity.html#teleport)", got)
}

func TestResolvePrototypeBeforeType(t *testing.T) {
	r, _ := newResolver(t)
	assert.Equal(t,
		"[energy](https://lua-api.factorio.com/latest/prototypes/EntityPrototype.html#energy_source)",
		r.Resolve("[energy](prototype:EntityPrototype::energy_source)"))
	assert.Equal(t,
		"[Color](https://lua-api.factorio.com/latest/types/Color.html#)",
		r.Resolve("[Color](prototype:Color)"))
}

func TestResolveUnknownKeepsLabel(t *testing.T) {
	r, logs := newResolver(t)
	assert.Equal(t, "x and y", r.Resolve("[x](prototype:UnknownThing) and y"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[x](prototype:UnknownThing)", entries[0].ContextMap()["link"])
}

func TestResolveIsCaseSensitiveForDataStage(t *testing.T) {
	r, _ := newResolver(t)
	assert.Equal(t, "c", r.Resolve("[c](prototype:color)"))
}

func TestResolveLeavesOtherTextAlone(t *testing.T) {
	r, _ := newResolver(t)
	in := "Plain [link](https://example.com) and `code` 🡪 unicode."
	assert.Equal(t, in, r.Resolve(in))
	assert.Equal(t, "", r.Resolve(""))
}

func TestResolveMultipleLinksInOnePass(t *testing.T) {
	r, _ := newResolver(t)
	got := r.Resolve("[a](runtime:LuaA), [b](prototype:Nope), [c](prototype:RoboportPrototype::x)")
	assert.Equal(t,
		"[a](https://lua-api.factorio.com/latest/classes/LuaA.html#), b, "+
			"[c](https://lua-api.factorio.com/latest/prototypes/RoboportPrototype.html#x)",
		got)
}

func TestResolveSameLinkTwice(t *testing.T) {
	r, _ := newResolver(t)
	got := r.Resolve("[a](runtime:LuaA) [a](runtime:LuaA)")
	want := "[a](https://lua-api.factorio.com/latest/classes/LuaA.html#)"
	assert.Equal(t, want+" "+want, got)
}

func TestResolveWithEmptyCache(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New(corpus.NewCache[apidocs.DataAPI]("prototype API"), apidocs.NewLinks(""), zap.New(core))

	assert.Equal(t, "p", r.Resolve("[p](prototype:EntityPrototype)"))
	assert.Equal(t,
		"[c](https://lua-api.factorio.com/latest/classes/LuaEntity.html#)",
		r.Resolve("[c](runtime:LuaEntity)"), "runtime links do not need the data stage")
	assert.Equal(t, 2, logs.Len())
}

func TestResolveCustomBase(t *testing.T) {
	r := New(corpus.NewCache[apidocs.DataAPI]("p"), apidocs.NewLinks("https://lua-api.factorio.com/2.0.28"), nil)
	assert.Equal(t,
		"[c](https://lua-api.factorio.com/2.0.28/classes/LuaEntity.html#)",
		r.Resolve("[c](runtime:LuaEntity)"))
}
