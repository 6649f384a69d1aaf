package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/julianshen/rhobot/internal/logging"
)

// Versioned snapshots report the upstream application version.
type Versioned interface {
	Version() string
}

// Refresher fills a Cache from a Source, once on Prime and then on every
// tick of Run.
type Refresher[T any] struct {
	cache    *Cache[T]
	source   Source[T]
	interval time.Duration
	logger   *zap.Logger
}

// NewRefresher wires cache to source. A nil logger discards output.
func NewRefresher[T any](cache *Cache[T], source Source[T], interval time.Duration, logger *zap.Logger) *Refresher[T] {
	return &Refresher[T]{
		cache:    cache,
		source:   source,
		interval: interval,
		logger:   logging.OrNop(logger).With(zap.String("corpus", cache.Name())),
	}
}

// Cache returns the cache being refreshed.
func (r *Refresher[T]) Cache() *Cache[T] { return r.cache }

// Prime performs the blocking first fetch.
func (r *Refresher[T]) Prime(ctx context.Context) error {
	if err := r.fetch(ctx); err != nil {
		return fmt.Errorf("priming %s: %w", r.cache.Name(), err)
	}
	return nil
}

// Refresh runs one cycle. On failure the previous snapshot stays in place
// and the error is logged and returned.
func (r *Refresher[T]) Refresh(ctx context.Context) error {
	if err := r.fetch(ctx); err != nil {
		r.logger.Warn("refresh failed, keeping previous snapshot", zap.Error(err))
		return err
	}
	return nil
}

// Run refreshes on every interval until ctx is cancelled.
func (r *Refresher[T]) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.Refresh(ctx)
		}
	}
}

func (r *Refresher[T]) fetch(ctx context.Context) error {
	next, err := r.source(ctx)
	if err != nil {
		return err
	}
	if next == nil {
		return fmt.Errorf("source returned no snapshot")
	}
	prev := r.cache.Store(next)
	r.logVersion(prev, next)
	return nil
}

func (r *Refresher[T]) logVersion(prev, next *T) {
	nv, ok := any(next).(Versioned)
	if !ok {
		r.logger.Debug("snapshot stored")
		return
	}
	if prev == nil {
		r.logger.Info("snapshot loaded", zap.String("version", nv.Version()))
		return
	}
	pv := any(prev).(Versioned)
	if pv.Version() == nv.Version() {
		r.logger.Debug("snapshot refreshed", zap.String("version", nv.Version()))
		return
	}

	from, errFrom := semver.NewVersion(pv.Version())
	to, errTo := semver.NewVersion(nv.Version())
	fields := []zap.Field{zap.String("from", pv.Version()), zap.String("to", nv.Version())}
	switch {
	case errFrom != nil || errTo != nil:
		r.logger.Info("snapshot version changed", fields...)
	case to.LessThan(from):
		r.logger.Warn("snapshot version went backwards", fields...)
	default:
		r.logger.Info("snapshot version upgraded", fields...)
	}
}

// Primer is anything with a blocking first fetch.
type Primer interface {
	Prime(ctx context.Context) error
}

// PrimeAll primes every primer concurrently and waits for all of them. The
// first failure cancels the others.
func PrimeAll(ctx context.Context, primers ...Primer) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()
	for _, pr := range primers {
		p.Go(func(ctx context.Context) error {
			return pr.Prime(ctx)
		})
	}
	return p.Wait()
}
