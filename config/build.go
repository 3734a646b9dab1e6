package config

import (
	"context"

	"github.com/agentuity/go-cacheadapter/cache"
	"github.com/agentuity/go-cacheadapter/logger"
	"github.com/agentuity/go-cacheadapter/store"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Backends holds what Build created. The manager chains every cache in
// configuration order; Stores lists one handle per cache in the same order.
type Backends struct {
	Manager cache.Cache
	Stores  []*store.Store

	caches  []cache.Cache
	clients []*redis.Client
}

// Close closes every cache and redis client Build opened.
func (b *Backends) Close() error {
	var errs []error
	for _, c := range b.caches {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range b.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build opens every configured backend. On failure the backends opened so
// far are closed.
func (c *Config) Build(ctx context.Context, log logger.Logger) (*Backends, error) {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	b := &Backends{}
	for _, sc := range c.Stores {
		s, err := b.open(ctx, sc, log)
		if err != nil {
			b.Close()
			return nil, errors.Wrapf(err, "store %q", sc.Name)
		}
		b.Stores = append(b.Stores, s)
		log.Debug("opened %s store %q at %s (namespace %q)", sc.Type, sc.Name, sc.Target(), sc.Namespace)
	}
	if len(b.caches) == 0 {
		return nil, errors.New("no stores configured")
	}
	b.Manager = cache.NewComposite(b.caches...)
	return b, nil
}

func (b *Backends) open(ctx context.Context, sc Store, log logger.Logger) (*store.Store, error) {
	var opts []cache.Option
	if sc.TTL > 0 {
		opts = append(opts, cache.WithExpires(sc.TTL.Std()))
	}
	if sc.QueryTimeout > 0 {
		opts = append(opts, cache.WithQueryTimeout(sc.QueryTimeout.Std()))
	}
	if sc.Prefixed() {
		opts = append(opts, cache.WithPrefix(sc.Namespace))
	}

	storeOpts := []store.Option{
		store.WithName(sc.Name),
		store.WithNamespace(sc.Namespace),
		store.WithKeyPrefix(sc.Prefixed()),
		store.WithLogger(log),
	}

	var backend cache.Cache
	switch sc.Type {
	case TypeMemory:
		backend = cache.NewInMemory(ctx, opts...)
	case TypeSQLite:
		db, err := cache.NewSQLite(ctx, sc.Path, opts...)
		if err != nil {
			return nil, err
		}
		backend = db
	case TypeRedis:
		ropts, err := redis.ParseURL(sc.URL)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url")
		}
		client := redis.NewClient(ropts)
		b.clients = append(b.clients, client)
		backend = cache.NewRedis(client, opts...)
		scanner, ok := backend.(store.Scanner)
		if !ok {
			return nil, errors.New("redis cache does not support scanning")
		}
		storeOpts = append(storeOpts, store.WithIterator(store.ScanIterator(scanner, sc.ScanCount)))
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", sc.Type)
	}
	b.caches = append(b.caches, backend)
	return store.New(backend, storeOpts...)
}
