package adapter

import (
	"context"
	"time"

	"github.com/agentuity/go-cacheadapter/cache"
	"github.com/cockroachdb/errors"
)

// Clients supplies the primary and fallback clients. Registry implements it.
type Clients interface {
	Client() Client
	FallbackClient() Client
}

// CacheConfig configures Exec.
type CacheConfig struct {
	// Key is the cache key, or the key prefix when Args is set.
	Key string
	// Args, when set, are hashed into the key with cache.HashKey.
	Args []any
	// TTL for cached values. Zero uses the backend default.
	TTL time.Duration
}

func (c CacheConfig) key() (string, error) {
	if len(c.Args) == 0 {
		if c.Key == "" {
			return "", errors.New("cache key is required")
		}
		return c.Key, nil
	}
	return cache.HashKey(c.Key, c.Args...)
}

// Invoker produces a value of type T. Returning found=false skips caching.
type Invoker[T any] func(ctx context.Context) (T, bool, error)

// Exec is a cache-aside helper over the registered clients. It reads from
// the primary client and, when that read fails, from the fallback client.
// On a miss, invoke is called and a found result is written back to the
// client that served the read. A failed write is ignored since the value
// was produced.
func Exec[T any](ctx context.Context, clients Clients, config CacheConfig, invoke Invoker[T]) (bool, T, error) {
	var zero T
	key, err := config.key()
	if err != nil {
		return false, zero, err
	}

	client, val, found, err := read(ctx, clients, key)
	if err != nil {
		return false, zero, err
	}
	if found {
		result, err := cache.Decode[T](val)
		if err != nil {
			return false, zero, err
		}
		return true, result, nil
	}

	result, ok, err := invoke(ctx)
	if err != nil {
		return false, zero, err
	}
	if !ok {
		return false, zero, nil
	}
	if client != nil {
		_, _ = client.Set(ctx, key, result, config.TTL)
	}
	return true, result, nil
}

// read returns the client that answered along with its result. A nil
// client means none is registered.
func read(ctx context.Context, clients Clients, key string) (Client, any, bool, error) {
	primary, fallback := clients.Client(), clients.FallbackClient()
	if primary != nil {
		val, found, err := primary.Get(ctx, key)
		if err == nil {
			return primary, val, found, nil
		}
		if fallback == nil {
			return nil, nil, false, err
		}
	}
	if fallback == nil {
		return nil, nil, false, nil
	}
	val, found, err := fallback.Get(ctx, key)
	if err != nil {
		return nil, nil, false, err
	}
	return fallback, val, found, nil
}
