// Package corpus keeps the latest decoded documentation snapshot and
// refreshes it from upstream on a fixed interval.
package corpus

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrUnavailable is returned by Load before the first successful fetch.
var ErrUnavailable = errors.New("cache is empty")

// Cache is a single-slot holder for an immutable snapshot. Readers get the
// snapshot that was current when they called Load; a later Store does not
// affect them.
type Cache[T any] struct {
	name     string
	snap     atomic.Pointer[T]
	storedAt atomic.Int64
}

// NewCache returns an empty cache. name is used in error messages.
func NewCache[T any](name string) *Cache[T] {
	return &Cache[T]{name: name}
}

// Name returns the label the cache was created with.
func (c *Cache[T]) Name() string { return c.name }

// Load returns the current snapshot, or an error wrapping ErrUnavailable.
func (c *Cache[T]) Load() (*T, error) {
	v := c.snap.Load()
	if v == nil {
		return nil, fmt.Errorf("acquiring %s cache: %w", c.name, ErrUnavailable)
	}
	return v, nil
}

// Store replaces the snapshot and returns the previous one. Storing nil is
// ignored so a populated cache never becomes empty again.
func (c *Cache[T]) Store(v *T) (previous *T) {
	if v == nil {
		return c.snap.Load()
	}
	c.storedAt.Store(time.Now().UnixNano())
	return c.snap.Swap(v)
}

// StoredAt reports when the current snapshot was stored. The zero time means
// the cache is empty.
func (c *Cache[T]) StoredAt() time.Time {
	ns := c.storedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
