package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/rhobot/internal/fff"
	"github.com/julianshen/rhobot/internal/modportal"
	"github.com/julianshen/rhobot/internal/output"
	"github.com/julianshen/rhobot/internal/wiki"
)

// --- quit ---

func TestQuitCommand(t *testing.T) {
	cmd := NewQuitCommand()
	assert.Equal(t, "quit", cmd.Name())
	assert.Equal(t, []string{"exit"}, cmd.(Aliased).Aliases())

	result, err := cmd.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, ActionQuit, result.Action)
}

// --- help ---

func TestHelpListsCommands(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewQuitCommand()))
	require.NoError(t, reg.Register(NewHelpCommand(reg)))

	res, err := NewHelpCommand(reg).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Available commands", res.Response.Title)
	assert.Equal(t, "`help` Show available commands\n`quit` Quit the console", res.Response.Description)
}

func TestHelpDescribesOneCommand(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewQuitCommand()))
	require.NoError(t, reg.Register(NewFFFCommand(&fakeFFF{})))
	help := NewHelpCommand(reg)

	res, err := help.Execute(context.Background(), []string{"exit"})
	require.NoError(t, err)
	assert.Equal(t, "quit", res.Response.Title)
	assert.Equal(t, "Aliases: exit", res.Response.Footer)

	res, err = help.Execute(context.Background(), []string{"fff"})
	require.NoError(t, err)
	require.Len(t, res.Response.Fields, 1)
	assert.Equal(t, "number (optional)", res.Response.Fields[0].Name)

	_, err = help.Execute(context.Background(), []string{"nope"})
	var unknown *UnknownCommandError
	assert.True(t, errors.As(err, &unknown))

	assert.Equal(t, []string{"fff"}, candidateValues(help.Complete(context.Background(), []string{"f"})))
}

func TestHelpEmptyRegistry(t *testing.T) {
	res, err := NewHelpCommand(NewRegistry()).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No commands available.", res.Response.Description)
}

// --- wiki ---

type fakeWiki struct {
	query    string
	articles map[string]wiki.Article
}

func (f *fakeWiki) Lookup(_ context.Context, q string) (wiki.Article, error) {
	f.query = q
	a, ok := f.articles[q]
	if !ok {
		return wiki.Article{}, &wiki.NoSearchResultsError{Query: q}
	}
	return a, nil
}

func (f *fakeWiki) Complete(_ context.Context, partial string) []string {
	if partial == "" {
		return []string{wiki.MainPage}
	}
	return []string{partial + " belt"}
}

func TestWikiCommand(t *testing.T) {
	w := &fakeWiki{articles: map[string]wiki.Article{
		"Transport belt": {Title: "Transport belt", URL: "https://wiki.factorio.com/Transport_belt", Summary: "Moves items."},
	}}
	cmd := NewWikiCommand(w)

	res, err := cmd.Execute(context.Background(), []string{"Transport", "belt", "|", "read", "this"})
	require.NoError(t, err)
	assert.Equal(t, "Transport belt", w.query)
	assert.Equal(t, "Transport belt", res.Response.Title)
	assert.Equal(t, output.ColorOrange, res.Response.Color)

	_, err = cmd.Execute(context.Background(), []string{"nothing"})
	var none *wiki.NoSearchResultsError
	assert.True(t, errors.As(err, &none))

	assert.Equal(t, []string{wiki.MainPage}, candidateValues(cmd.Complete(context.Background(), nil)))
	assert.Equal(t, []string{"fast belt"}, candidateValues(cmd.Complete(context.Background(), []string{"fast"})))
}

// --- fff ---

type fakeFFF struct {
	asked int
}

func (f *fakeFFF) Post(_ context.Context, n int) (*fff.Post, error) {
	f.asked = n
	if n > 1000 {
		return nil, &fff.PageNotFoundError{Number: n}
	}
	return &fff.Post{Number: n, Title: "Friday Facts", URL: "https://factorio.com/blog/post/fff-1", Image: "i", Description: "d"}, nil
}

func (f *fakeFFF) IndexResponse() *output.Response {
	return &output.Response{Title: "Factorio Friday Facts"}
}

func TestFFFCommand(t *testing.T) {
	client := &fakeFFF{}
	cmd := NewFFFCommand(client)
	ctx := context.Background()

	res, err := cmd.Execute(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Factorio Friday Facts", res.Response.Title)

	res, err = cmd.Execute(ctx, []string{"#380"})
	require.NoError(t, err)
	assert.Equal(t, 380, client.asked)
	assert.Equal(t, "i", res.Response.Thumbnail)

	_, err = cmd.Execute(ctx, []string{"9999"})
	assert.EqualError(t, err, "Page for FFF 9999 not found.")

	_, err = cmd.Execute(ctx, []string{"latest"})
	var usage *UsageError
	assert.True(t, errors.As(err, &usage))
}

// --- mod ---

type fakeModPortal struct {
	query string
}

func (f *fakeModPortal) Search(_ context.Context, q string) (*modportal.Mod, error) {
	f.query = q
	if q == "nothing" {
		return nil, &modportal.NoResultsError{Query: q}
	}
	return &modportal.Mod{Name: "Even Distribution", Title: "Even Distribution", Owner: "Bilka", Downloads: 7}, nil
}

func TestModCommand(t *testing.T) {
	portal := &fakeModPortal{}
	cmd := NewModCommand(portal)
	ctx := context.Background()
	assert.Equal(t, []string{"find-mod", "find_mod"}, cmd.(Aliased).Aliases())

	res, err := cmd.Execute(ctx, []string{"even", "distribution", "|", "for", "you"})
	require.NoError(t, err)
	assert.Equal(t, "even distribution", portal.query)
	assert.Equal(t, "Even Distribution", res.Response.Title)
	assert.Equal(t, "https://mods.factorio.com/mod/Even%20Distribution", res.Response.URL)
	require.Len(t, res.Response.Fields, 2)
	assert.Equal(t, "7", res.Response.Fields[1].Value)

	_, err = cmd.Execute(ctx, []string{"nothing"})
	var none *modportal.NoResultsError
	assert.True(t, errors.As(err, &none))

	_, err = cmd.Execute(ctx, nil)
	var usage *UsageError
	assert.True(t, errors.As(err, &usage))
}
