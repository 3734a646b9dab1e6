// Package adapter exposes a set of configured stores and the cache manager
// that fronts them through the client contract a caching framework expects.
//
// Reads and writes are forwarded to the manager. Key listing and bulk
// invalidation fan out across every store: each store is asked for the
// candidates of a pattern in its own query dialect, the candidates are moved
// out of the store's namespace and filtered with the caller's pattern, and
// the results are concatenated in store order.
package adapter

import (
	"context"
	"time"

	"github.com/agentuity/go-cacheadapter/cache"
	"github.com/agentuity/go-cacheadapter/logger"
	"github.com/agentuity/go-cacheadapter/pattern"
	"github.com/agentuity/go-cacheadapter/store"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "@agentuity/go-cacheadapter/adapter"

var (
	// ErrNilManager is returned by New when no cache manager is given.
	ErrNilManager = errors.New("cache manager is nil")
	// ErrNoStores is returned by New when no store is configured.
	ErrNoStores = errors.New("no stores configured")
)

// Client is the contract a caching framework drives.
type Client interface {
	// Get returns the value for key. An absent key is (nil, false, nil).
	Get(ctx context.Context, key string) (any, bool, error)
	// Set stores value under key and returns it. A ttl <= 0 uses the
	// backend default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) (any, error)
	// Del removes keys.
	Del(ctx context.Context, keys ...string) error
	// DelHash removes every key matching any of the tokens.
	DelHash(ctx context.Context, tokens ...string) error
	// Keys returns the keys matching pattern across all stores.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// ClientTTL is the TTL the framework should apply by default.
	ClientTTL() time.Duration
}

// Adapter implements Client over a cache manager and its stores.
type Adapter struct {
	manager cache.Cache
	stores  []*store.Store
	logger  logger.Logger
	tracer  trace.Tracer
}

var _ Client = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithTracer sets the tracer used for key listing and invalidation spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Adapter) { a.tracer = t }
}

// New returns an Adapter. The stores are referenced, not owned: closing the
// backends stays with the caller.
func New(manager cache.Cache, stores []*store.Store, opts ...Option) (*Adapter, error) {
	if manager == nil {
		return nil, ErrNilManager
	}
	if len(stores) == 0 {
		return nil, ErrNoStores
	}
	a := &Adapter{
		manager: manager,
		stores:  stores,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.NewNoopLogger()
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(tracerName)
	}
	a.logger = a.logger.WithPrefix("[adapter]")
	return a, nil
}

// Stores returns the configured stores in order.
func (a *Adapter) Stores() []*store.Store {
	return a.stores
}

func (a *Adapter) Get(ctx context.Context, key string) (any, bool, error) {
	found, val, err := a.manager.Get(ctx, key)
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %q", key)
	}
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

func (a *Adapter) Set(ctx context.Context, key string, value any, ttl time.Duration) (any, error) {
	if err := a.manager.Set(ctx, key, value, ttl); err != nil {
		return nil, errors.Wrapf(err, "set %q", key)
	}
	return value, nil
}

// ClientTTL is always zero: TTLs are decided by the stores.
func (a *Adapter) ClientTTL() time.Duration {
	return 0
}

// Keys queries every store concurrently. A store that fails, including one
// that cannot enumerate its keys, fails the whole call.
func (a *Adapter) Keys(ctx context.Context, p string) ([]string, error) {
	ctx, span := a.tracer.Start(ctx, "Keys", trace.WithAttributes(
		attribute.String("cache.pattern", p),
		attribute.Int("cache.stores", len(a.stores)),
	))
	defer span.End()

	m := pattern.Compile(p)
	results := make([][]string, len(a.stores))
	var g errgroup.Group
	for i, s := range a.stores {
		g.Go(func() error {
			keys, err := s.Keys(ctx, m)
			if err != nil {
				return err
			}
			results[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, errors.Wrapf(err, "keys %q", p)
	}

	var total int
	for _, keys := range results {
		total += len(keys)
	}
	keys := make([]string, 0, total)
	for _, r := range results {
		keys = append(keys, r...)
	}
	span.SetAttributes(attribute.Int("cache.keys", len(keys)))
	a.logger.Trace("pattern %q matched %d keys", p, len(keys))
	return keys, nil
}
