package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello from server"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(15 * time.Second)
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello from server", string(body))
}

func TestHTTPFetcherResponseSizeLimit(t *testing.T) {
	bigBody := strings.Repeat("x", 2048)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bigBody))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(15*time.Second, WithMaxResponseSize(1024))
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, body, 1024)
}

func TestHTTPFetcherConnectionError(t *testing.T) {
	fetcher := NewHTTPFetcher(2 * time.Second)
	_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch")
}

func TestHTTPFetcherNon200IsStatusError(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusNoContent, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		fetcher := NewHTTPFetcher(15 * time.Second)
		_, err := fetcher.Fetch(context.Background(), server.URL)
		server.Close()

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr), "status %d", code)
		assert.Equal(t, code, statusErr.StatusCode)
	}
}

func TestHTTPFetcherSendsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5*time.Second, WithUserAgent("rhobot/test"))
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "rhobot/test", got)
}

func TestHTTPFetcherRateLimitHonoursContext(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5*time.Second, WithRateLimit(0.001, 1))
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = fetcher.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPFetcherFetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"rho"}`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5 * time.Second)
	var v struct{ Name string }
	require.NoError(t, fetcher.FetchJSON(context.Background(), server.URL, &v))
	assert.Equal(t, "rho", v.Name)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer bad.Close()
	err := fetcher.FetchJSON(context.Background(), bad.URL, &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestHTTPFetcherPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "rhobot-test", r.Header.Get("User-Agent"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.Write([]byte(`{"echo":"` + in["query"] + `"}`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5*time.Second, WithUserAgent("rhobot-test"))
	var out struct{ Echo string }
	require.NoError(t, fetcher.PostJSON(context.Background(), server.URL, map[string]string{"query": "belts"}, &out))
	assert.Equal(t, "belts", out.Echo)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer failing.Close()
	err := fetcher.PostJSON(context.Background(), failing.URL, nil, &out)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}
