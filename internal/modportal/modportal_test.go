package modportal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/rhobot/internal/integrations"
	"github.com/julianshen/rhobot/internal/output"
)

var testCreds = &Credentials{Username: "rho", Token: "secret"}

func newPortal(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(integrations.NewHTTPFetcher(5*time.Second), server.URL, testCreds)
}

func TestSearchReturnsTopResult(t *testing.T) {
	var got searchRequest
	client := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"results":[{"name":"Even Distribution","title":"Even_Distribution","owner":"Bilka",
			"summary":"Spreads *items*.","thumbnail":"/assets/ed.png","downloads_count":12345}]}`))
	})

	m, err := client.Search(context.Background(), "even distribution")
	require.NoError(t, err)
	assert.Equal(t, "rho", got.Username)
	assert.Equal(t, "secret", got.Token)
	assert.Equal(t, "even distribution", got.Query)
	assert.Equal(t, "1", got.PageSize)
	assert.Equal(t, GameVersion, got.Version)

	assert.Equal(t, AssetBase+"/assets/ed.png", m.Thumbnail)
	assert.Equal(t, "https://mods.factorio.com/mod/Even%20Distribution", m.URL())

	r := m.Response()
	assert.Equal(t, `Even\_Distribution`, r.Title)
	assert.Equal(t, `Spreads \*items\*.`, r.Description)
	assert.Equal(t, output.ColorGreen, r.Color)
	require.Len(t, r.Fields, 2)
	assert.Equal(t, "Author", r.Fields[0].Name)
	assert.Equal(t, "Bilka", r.Fields[0].Value)
	assert.Equal(t, "12345", r.Fields[1].Value)
}

func TestSearchTruncatesQuery(t *testing.T) {
	var got searchRequest
	client := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"results":[{"name":"x"}]}`))
	})
	_, err := client.Search(context.Background(), strings.Repeat("é", 80))
	require.NoError(t, err)
	assert.Len(t, []rune(got.Query), QueryLimit)
}

func TestSearchErrors(t *testing.T) {
	ctx := context.Background()

	empty := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	_, err := empty.Search(ctx, "nothing here")
	var none *NoResultsError
	require.True(t, errors.As(err, &none))
	assert.Equal(t, "Did not find any mods named nothing here", err.Error())

	down := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = down.Search(ctx, "x")
	var bad *BadStatusError
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, http.StatusBadGateway, bad.StatusCode)

	garbled := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})
	_, err = garbled.Search(ctx, "x")
	assert.ErrorIs(t, err, ErrRetrieve)

	anonymous := NewClient(integrations.NewHTTPFetcher(time.Second), "http://127.0.0.1:1", nil)
	_, err = anonymous.Search(ctx, "x")
	assert.ErrorIs(t, err, ErrNoCredentials)
}
