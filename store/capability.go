package store

import (
	"context"
	"database/sql"
	"iter"
)

// Capability is the key enumeration strategy a store supports. A store is
// classified once, when its handle is built; the first capability in the
// order below that the backend exposes wins.
type Capability int

const (
	// CapabilityUnsupported marks a store that cannot list its keys.
	CapabilityUnsupported Capability = iota
	// CapabilitySnapshot reads a materialized key set (Snapshotter).
	CapabilitySnapshot
	// CapabilityAsyncSequence drains a channel fed by another goroutine (Streamer).
	CapabilityAsyncSequence
	// CapabilitySequence ranges over a lazy sequence (Sequencer).
	CapabilitySequence
	// CapabilityAsyncBatch fetches all keys in one call (Fetcher).
	CapabilityAsyncBatch
	// CapabilityBatch copies a materialized slice (Lister).
	CapabilityBatch
	// CapabilitySQL runs a parameterized LIKE query (SQLBackend).
	CapabilitySQL
	// CapabilityCursor walks the Iterator attached to the handle.
	CapabilityCursor
)

func (c Capability) String() string {
	switch c {
	case CapabilitySnapshot:
		return "snapshot"
	case CapabilityAsyncSequence:
		return "async-sequence"
	case CapabilitySequence:
		return "sequence"
	case CapabilityAsyncBatch:
		return "async-batch"
	case CapabilityBatch:
		return "batch"
	case CapabilitySQL:
		return "sql"
	case CapabilityCursor:
		return "cursor"
	default:
		return "unsupported"
	}
}

// Snapshotter exposes a finite, already materialized key space.
type Snapshotter interface {
	SnapshotKeys() map[string]struct{}
}

// Streamer produces keys lazily from another goroutine. The keys channel
// is closed when production ends; the error channel then either delivers
// one error or is closed. An error channel left open blocks the consumer
// until ctx is done. Producers must stop when ctx is cancelled.
type Streamer interface {
	StreamKeys(ctx context.Context, pattern string) (<-chan string, <-chan error)
}

// Sequencer produces keys lazily on the caller's goroutine.
type Sequencer interface {
	IterKeys(pattern string) iter.Seq[string]
}

// Fetcher returns every candidate key in one round trip.
type Fetcher interface {
	FetchKeys(ctx context.Context, pattern string) ([]string, error)
}

// Lister exposes an already materialized batch of keys.
type Lister interface {
	KeyList() []string
}

// SQLBackend is a database whose keys live in a single column. The
// enumerator builds a parameterized LIKE query for the reported dialect.
type SQLBackend interface {
	SQLDialect() string
	KeyTable() (schema, table, column string)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Unwrapper is implemented by wrappers around another store. The wrapped
// store is inspected before the wrapper itself.
type Unwrapper interface {
	Unwrap() any
}

// StreamFunc adapts a function to a Streamer.
type StreamFunc func(ctx context.Context, pattern string) (<-chan string, <-chan error)

// StreamKeys calls f.
func (f StreamFunc) StreamKeys(ctx context.Context, pattern string) (<-chan string, <-chan error) {
	return f(ctx, pattern)
}

// SeqFunc adapts a function to a Sequencer.
type SeqFunc func(pattern string) iter.Seq[string]

// IterKeys calls f.
func (f SeqFunc) IterKeys(pattern string) iter.Seq[string] {
	return f(pattern)
}

// FetchFunc adapts a function to a Fetcher.
type FetchFunc func(ctx context.Context, pattern string) ([]string, error)

// FetchKeys calls f.
func (f FetchFunc) FetchKeys(ctx context.Context, pattern string) ([]string, error) {
	return f(ctx, pattern)
}

// Keys adapts a slice to a Lister.
type Keys []string

// KeyList returns the slice itself.
func (l Keys) KeyList() []string {
	return l
}

func classify(backend any) Capability {
	switch backend.(type) {
	case Snapshotter:
		return CapabilitySnapshot
	case Streamer:
		return CapabilityAsyncSequence
	case Sequencer:
		return CapabilitySequence
	case Fetcher:
		return CapabilityAsyncBatch
	case Lister:
		return CapabilityBatch
	case SQLBackend:
		return CapabilitySQL
	default:
		return CapabilityUnsupported
	}
}
