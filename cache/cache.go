package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache is a single key/value store. Every backend in this package and the
// composite that chains them implement it.
type Cache interface {
	// Get retrieves a value. A missing or expired key is (false, nil, nil).
	Get(ctx context.Context, key string) (bool, any, error)
	// Set stores a value with a TTL. If expires <= 0, the cache's configured
	// default TTL is used.
	Set(ctx context.Context, key string, val any, expires time.Duration) error
	// Hits returns the number of times a key has been read.
	Hits(ctx context.Context, key string) (bool, int)
	// Expire removes a key from the cache.
	Expire(ctx context.Context, key string) (bool, error)
	// Close shuts down the cache.
	Close() error
}

// BatchExpirer is implemented by caches that can remove many keys in one
// round trip. It returns the number of entries removed.
type BatchExpirer interface {
	ExpireMany(ctx context.Context, keys ...string) (int, error)
}

type value struct {
	object  any
	expires time.Time
	hits    int
}

// Decode converts a value returned by Cache.Get into T. In-memory values
// are type asserted; serialized backends return msgpack encoded []byte.
func Decode[T any](val any) (T, error) {
	var zero T
	if typed, ok := val.(T); ok {
		return typed, nil
	}
	if data, ok := val.([]byte); ok {
		var result T
		if err := msgpack.Unmarshal(data, &result); err != nil {
			return zero, errors.Wrap(err, "cache: failed to unmarshal value")
		}
		return result, nil
	}
	return zero, errors.Newf("cache: cannot convert value of type %T to %T", val, zero)
}

// Get retrieves a typed value from the cache.
func Get[T any](ctx context.Context, c Cache, key string) (bool, T, error) {
	found, val, err := c.Get(ctx, key)
	if !found || err != nil {
		var zero T
		return false, zero, err
	}
	result, err := Decode[T](val)
	if err != nil {
		return false, result, err
	}
	return true, result, nil
}

// HashKey builds a deterministic key "<prefix>:<hash>" from args. Args are
// msgpack encoded, so any value msgpack can serialize may be used.
func HashKey(prefix string, args ...any) (string, error) {
	data, err := msgpack.Marshal(args)
	if err != nil {
		return "", errors.Wrap(err, "cache: failed to hash key arguments")
	}
	sum := fmt.Sprintf("%016x", xxhash.Sum64(data))
	if prefix == "" {
		return sum, nil
	}
	return prefix + ":" + sum, nil
}

// DefaultExpires is the default TTL used when Set is called with expires <= 0.
const DefaultExpires = 5 * time.Minute

// DefaultQueryTimeout is the per-operation timeout for cache backends that
// perform I/O (SQLite, Redis).
const DefaultQueryTimeout = 5 * time.Second

// config holds the resolved configuration for a cache implementation.
type config struct {
	defaultExpires time.Duration
	queryTimeout   time.Duration
	expiryCheck    time.Duration
	prefix         string
}

// Option configures a Cache implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		defaultExpires: DefaultExpires,
		queryTimeout:   DefaultQueryTimeout,
		expiryCheck:    time.Minute,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.expiryCheck <= 0 {
		cfg.expiryCheck = time.Minute
	}
	return cfg
}

func (c config) expires(d time.Duration) time.Duration {
	if d <= 0 {
		return c.defaultExpires
	}
	return d
}

func (c config) prefixKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// WithExpires sets the default TTL for cached values. This is used when
// Set is called with expires <= 0. Defaults to DefaultExpires (5 minutes).
func WithExpires(d time.Duration) Option {
	return func(c *config) { c.defaultExpires = d }
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed caches
// (SQLite, Redis). Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithExpiryCheck sets the interval for background expired entry cleanup.
// Applies to InMemory and SQLite backends. Defaults to 1 minute.
func WithExpiryCheck(d time.Duration) Option {
	return func(c *config) { c.expiryCheck = d }
}

// WithPrefix sets the namespace for cache keys. Keys are stored as
// "<prefix>:<key>" by every backend.
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}
