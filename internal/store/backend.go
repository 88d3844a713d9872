package store

import (
	"context"
	"fmt"
)

// Backend is an ordered byte-string key/value store.
//
// Implementations must return keys from Scan in ascending byte order and
// must not retain or mutate the slices passed to Put. Slices passed to the
// Scan callback are only valid during the call.
type Backend interface {
	// Get returns the value stored under key. ok is false if there is none.
	Get(ctx context.Context, key []byte) (value []byte, ok bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value []byte) error

	// Scan calls fn for every key starting with prefix, in key order.
	// A non-nil error from fn stops the scan and is returned.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error

	Close() error
}

// Checker is implemented by backends that can verify the consistency of
// their own file.
type Checker interface {
	Check(ctx context.Context) error
}

// Kind selects a Backend implementation.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindBolt   Kind = "bolt"
)

// ParseKind parses a --backend value.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSQLite, KindBolt:
		return k, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want %s or %s)", s, KindSQLite, KindBolt)
	}
}

// OpenBackend opens the backend of the given kind at path.
func OpenBackend(kind Kind, path string) (Backend, error) {
	switch kind {
	case KindSQLite:
		return OpenSQLite(path)
	case KindBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// prefixEnd returns the smallest key greater than every key starting with
// prefix, or nil if there is none (prefix is all 0xff bytes).
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
