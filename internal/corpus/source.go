package corpus

import (
	"context"
	"fmt"
)

// Source produces a fresh snapshot.
type Source[T any] func(ctx context.Context) (*T, error)

// Fetcher is the subset of integrations.HTTPFetcher a JSON source needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// JSONSource fetches url and decodes the body with decode. The fetcher is
// expected to reject any status other than 200.
func JSONSource[T any](f Fetcher, url string, decode func([]byte) (*T, error)) Source[T] {
	return func(ctx context.Context) (*T, error) {
		body, err := f.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		v, err := decode(body)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", url, err)
		}
		return v, nil
	}
}
