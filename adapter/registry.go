package adapter

import (
	"sync"

	"github.com/agentuity/go-cacheadapter/cache"
	"github.com/agentuity/go-cacheadapter/store"
)

// Registrar receives the clients a caching framework will use. Callers
// pass their framework's registrar to Use instead of relying on package
// level state.
type Registrar interface {
	SetClient(c Client)
	SetFallbackClient(c Client)
	SetOptions(opts any)
}

// Registry is a Registrar for composition roots that have no framework of
// their own. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	client   Client
	fallback Client
	options  any
}

var _ Registrar = (*Registry)(nil)

func (r *Registry) SetClient(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.client = c
}

func (r *Registry) SetFallbackClient(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = c
}

func (r *Registry) SetOptions(opts any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.options = opts
}

// Client returns the primary client or nil.
func (r *Registry) Client() Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// FallbackClient returns the fallback client or nil.
func (r *Registry) FallbackClient() Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Options returns the framework options last registered.
func (r *Registry) Options() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.options
}

type useConfig struct {
	fallback    bool
	options     any
	adapterOpts []Option
}

// UseOption configures Use.
type UseOption func(*useConfig)

// AsFallback registers the adapter as the fallback client.
func AsFallback() UseOption {
	return func(c *useConfig) { c.fallback = true }
}

// WithFrameworkOptions passes opts through to the registrar.
func WithFrameworkOptions(opts any) UseOption {
	return func(c *useConfig) { c.options = opts }
}

// WithAdapterOptions configures the adapter built by Use.
func WithAdapterOptions(opts ...Option) UseOption {
	return func(c *useConfig) { c.adapterOpts = append(c.adapterOpts, opts...) }
}

// Use builds an Adapter and registers it with r, as the primary client
// unless AsFallback is given. Framework options are forwarded only when set.
func Use(r Registrar, manager cache.Cache, stores []*store.Store, opts ...UseOption) (*Adapter, error) {
	var cfg useConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	a, err := New(manager, stores, cfg.adapterOpts...)
	if err != nil {
		return nil, err
	}
	if cfg.fallback {
		r.SetFallbackClient(a)
	} else {
		r.SetClient(a)
	}
	if cfg.options != nil {
		r.SetOptions(cfg.options)
	}
	return a, nil
}
