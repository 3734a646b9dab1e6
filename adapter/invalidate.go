package adapter

import (
	"context"
	"sync/atomic"

	"github.com/agentuity/go-cacheadapter/cache"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Del removes keys through the manager in one batch when it supports
// batching, otherwise one delete per key in parallel.
func (a *Adapter) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	removed, err := a.expire(ctx, keys)
	if err != nil {
		return errors.Wrapf(err, "delete %d keys", len(keys))
	}
	a.logger.Debug("deleted %d of %d keys", removed, len(keys))
	return nil
}

func (a *Adapter) expire(ctx context.Context, keys []string) (int, error) {
	if be, ok := a.manager.(cache.BatchExpirer); ok {
		return be.ExpireMany(ctx, keys...)
	}
	var removed atomic.Int64
	var g errgroup.Group
	for _, key := range keys {
		g.Go(func() error {
			found, err := a.manager.Expire(ctx, key)
			if found {
				removed.Add(1)
			}
			return err
		})
	}
	err := g.Wait()
	return int(removed.Load()), err
}

// DelHash resolves each token to its matching keys and deletes them. Tokens
// are handled concurrently; every token runs to completion and the first
// error is returned.
func (a *Adapter) DelHash(ctx context.Context, tokens ...string) error {
	ctx, span := a.tracer.Start(ctx, "DelHash", trace.WithAttributes(
		attribute.StringSlice("cache.tokens", tokens),
	))
	defer span.End()

	var g errgroup.Group
	for _, token := range tokens {
		g.Go(func() error {
			keys, err := a.Keys(ctx, token)
			if err != nil {
				return err
			}
			return a.Del(ctx, keys...)
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return errors.Wrap(err, "invalidate")
	}
	span.SetStatus(codes.Ok, "invalidated")
	return nil
}
