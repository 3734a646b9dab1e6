package store

import (
	"context"
	"iter"
)

// DefaultScanCount is the page size hint used by ScanIterator.
const DefaultScanCount = 100

// Entry is one key/value pair produced by an Iterator. Value may be nil
// when the iterator does not load values.
type Entry struct {
	Key   string
	Value any
}

// Iterator walks the entries of a store wrapper whose keys match a
// backend glob. It is attached to a handle with WithIterator and is used
// only when the backend itself exposes no enumeration capability.
type Iterator func(ctx context.Context, match string) iter.Seq2[Entry, error]

// Scanner pages through a key space with a server-side cursor, the way
// Redis SCAN does. A returned cursor of zero ends the iteration.
type Scanner interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)
}

// ScanIterator turns a Scanner into an Iterator. Values are not loaded.
func ScanIterator(s Scanner, count int64) Iterator {
	if count <= 0 {
		count = DefaultScanCount
	}
	return func(ctx context.Context, match string) iter.Seq2[Entry, error] {
		return func(yield func(Entry, error) bool) {
			var cursor uint64
			for {
				keys, next, err := s.Scan(ctx, cursor, match, count)
				if err != nil {
					yield(Entry{}, err)
					return
				}
				for _, key := range keys {
					if !yield(Entry{Key: key}, nil) {
						return
					}
				}
				if next == 0 {
					return
				}
				cursor = next
			}
		}
	}
}
