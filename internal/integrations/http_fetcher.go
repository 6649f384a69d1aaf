// Package integrations holds the outbound HTTP plumbing shared by the
// documentation, wiki and blog clients.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxResponseSize bounds every response body. The runtime API
// document is several megabytes.
const DefaultMaxResponseSize = 32 << 20 // 32 MB

// StatusError is returned when the server answers with a status other than
// 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %q: HTTP %d", e.URL, e.StatusCode)
}

// HTTPFetcher retrieves URL contents with a timeout, a response size limit
// and an optional request rate limit.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBytes  int64
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithRateLimit allows at most perSecond requests per second with the given
// burst. perSecond <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) FetcherOption {
	return func(f *HTTPFetcher) {
		if perSecond <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// WithMaxResponseSize overrides DefaultMaxResponseSize.
func WithMaxResponseSize(n int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithHTTPClient replaces the underlying client. The timeout passed to
// NewHTTPFetcher is ignored.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// NewHTTPFetcher creates a new HTTPFetcher with the given timeout.
func NewHTTPFetcher(timeout time.Duration, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: DefaultMaxResponseSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the URL body. Any status other than 200 yields a
// *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return f.do(req)
}

// PostJSON sends payload as a JSON body to url and decodes the answer into
// v.
func (f *HTTPFetcher) PostJSON(ctx context.Context, url string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := f.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %q: %w", url, err)
	}
	return nil
}

func (f *HTTPFetcher) do(req *http.Request) ([]byte, error) {
	url := req.URL.String()
	if f.limiter != nil {
		if err := f.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("fetch %q: rate limit: %w", url, err)
		}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// FetchJSON retrieves url and decodes the body into v.
func (f *HTTPFetcher) FetchJSON(ctx context.Context, url string, v any) error {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %q: %w", url, err)
	}
	return nil
}
