// Package store classifies configured cache backends by how they list their
// keys and enumerates candidate keys from them.
//
// A backend is any value. [New] inspects it once and records a single
// [Capability]; every later enumeration dispatches on that value instead of
// inspecting the backend again. Backends that list nothing the package
// understands are still accepted, but enumerating them fails with
// [ErrUnsupportedStore] so an incomplete key listing is never mistaken for
// an empty one.
package store

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/agentuity/go-cacheadapter/logger"
	"github.com/agentuity/go-cacheadapter/pattern"
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsupportedStore is returned when a store exposes no known way to
	// enumerate its keys.
	ErrUnsupportedStore = errors.New("key enumeration not implemented for store")
	// ErrNilBackend is returned by New when neither a backend nor an
	// iterator is given.
	ErrNilBackend = errors.New("store backend is nil")
)

// Store is a handle on one configured backend. The handle references the
// backend but does not own it.
type Store struct {
	name       string
	namespace  string
	usePrefix  bool
	backend    any
	iterator   Iterator
	capability Capability
	target     any
	logger     logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithName sets the name used in logs and errors.
func WithName(name string) Option {
	return func(s *Store) { s.name = name }
}

// WithNamespace sets the key namespace the backend prefixes keys with and
// enables prefix handling.
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		s.namespace = namespace
		s.usePrefix = namespace != ""
	}
}

// WithKeyPrefix toggles namespace prefix handling independently of the
// namespace itself.
func WithKeyPrefix(enabled bool) Option {
	return func(s *Store) { s.usePrefix = enabled }
}

// WithIterator attaches a wrapper-level iterator, used when the backend
// itself exposes no enumeration capability.
func WithIterator(it Iterator) Option {
	return func(s *Store) { s.iterator = it }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a handle for backend and classifies it.
func New(backend any, opts ...Option) (*Store, error) {
	s := &Store{backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	if backend == nil && s.iterator == nil {
		return nil, ErrNilBackend
	}
	if s.name == "" {
		s.name = fmt.Sprintf("%T", backend)
	}
	if s.logger == nil {
		s.logger = logger.NewNoopLogger()
	}
	s.logger = s.logger.WithPrefix("[store]").With(map[string]interface{}{"store": s.name})
	s.capability, s.target = s.resolve()
	if s.capability == CapabilityUnsupported {
		s.logger.Warn("store exposes no key enumeration capability")
	} else {
		s.logger.Debug("classified store as %s", s.capability)
	}
	return s, nil
}

const maxUnwrapDepth = 8

// resolve walks from the innermost wrapped backend outwards and returns the
// first capability found, falling back to the handle's iterator.
func (s *Store) resolve() (Capability, any) {
	var chain []any
	for b := s.backend; b != nil && len(chain) < maxUnwrapDepth; {
		chain = append(chain, b)
		u, ok := b.(Unwrapper)
		if !ok {
			break
		}
		b = u.Unwrap()
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if c := classify(chain[i]); c != CapabilityUnsupported {
			return c, chain[i]
		}
	}
	if s.iterator != nil {
		return CapabilityCursor, nil
	}
	return CapabilityUnsupported, nil
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Namespace returns the key namespace.
func (s *Store) Namespace() string { return s.namespace }

// UsesKeyPrefix reports whether keys are stored as "<namespace>:<key>".
func (s *Store) UsesKeyPrefix() bool { return s.usePrefix }

// Capability returns the enumeration strategy chosen for the store.
func (s *Store) Capability() Capability { return s.capability }

// Backend returns the backend the handle was built with.
func (s *Store) Backend() any { return s.backend }

// Dialect returns the query dialect of the store's capability.
func (s *Store) Dialect() pattern.Dialect {
	switch s.capability {
	case CapabilitySQL:
		return pattern.DialectSQL
	case CapabilityCursor:
		return pattern.DialectGlob
	default:
		return pattern.DialectRaw
	}
}

// Query translates a caller pattern into the query sent to the backend.
func (s *Store) Query(p string) string {
	return pattern.Translate(p, s.namespace, s.usePrefix, s.Dialect())
}

// Normalize moves a raw backend key into the caller's namespace.
func (s *Store) Normalize(key string) string {
	return pattern.StripPrefix(key, s.namespace, s.usePrefix)
}

// Keys returns the keys of this store that match m, with the namespace
// prefix removed. Backend-side filtering only narrows the candidates; m is
// always applied to the normalized key.
func (s *Store) Keys(ctx context.Context, m *pattern.Matcher) ([]string, error) {
	query := s.Query(m.Pattern())
	raw, err := s.Enumerate(ctx, query)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for _, key := range raw {
		key = s.Normalize(key)
		if m.Match(key) {
			keys = append(keys, key)
		}
	}
	s.logger.Trace("pattern %q matched %d of %d candidates (query %q)", m.Pattern(), len(keys), len(raw), query)
	return keys, nil
}

// Enumerate returns the raw candidate keys for query using the store's
// capability. Keys are not filtered and keep any namespace prefix.
func (s *Store) Enumerate(ctx context.Context, query string) ([]string, error) {
	var (
		keys []string
		err  error
	)
	switch s.capability {
	case CapabilitySnapshot:
		keys = snapshotKeys(s.target.(Snapshotter))
	case CapabilityAsyncSequence:
		keys, err = streamKeys(ctx, s.target.(Streamer), query)
	case CapabilitySequence:
		keys = slices.Collect(s.target.(Sequencer).IterKeys(query))
	case CapabilityAsyncBatch:
		keys, err = s.target.(Fetcher).FetchKeys(ctx, query)
	case CapabilityBatch:
		keys = slices.Clone(s.target.(Lister).KeyList())
	case CapabilitySQL:
		keys, err = querySQLKeys(ctx, s.target.(SQLBackend), query)
	case CapabilityCursor:
		keys, err = iterateKeys(ctx, s.iterator, query)
	default:
		return nil, errors.Wrapf(ErrUnsupportedStore, "store %q", s.name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "store %q: enumerate %s", s.name, s.capability)
	}
	return keys, nil
}

// snapshotKeys sorts the snapshot so repeated calls return the same order.
func snapshotKeys(s Snapshotter) []string {
	snapshot := s.SnapshotKeys()
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func streamKeys(ctx context.Context, s Streamer, query string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch, errc := s.StreamKeys(ctx, query)
	var keys []string
	for {
		select {
		case key, ok := <-ch:
			if !ok {
				if errc == nil {
					return keys, nil
				}
				select {
				case err := <-errc:
					if err != nil {
						return nil, err
					}
					return keys, nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			keys = append(keys, key)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func iterateKeys(ctx context.Context, it Iterator, query string) ([]string, error) {
	var keys []string
	for entry, err := range it(ctx, query) {
		if err != nil {
			return nil, err
		}
		keys = append(keys, entry.Key)
	}
	return keys, nil
}
