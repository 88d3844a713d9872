package store

import (
	"bytes"
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var kvBucket = []byte("kv")

// BoltBackend is a Backend over a single bbolt bucket.
type BoltBackend struct {
	db *bolt.DB
}

// OpenBolt creates or opens a bbolt file at path.
func OpenBolt(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kvBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltBackend{db: db}, nil
}

// Close closes the database file.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}

// Get implements Backend. The returned slice is a copy.
func (b *BoltBackend) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(kvBucket).Get(key); v != nil {
			value = bytes.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, false, storageErr("get", key, err)
	}
	return value, value != nil, nil
}

// Put implements Backend.
func (b *BoltBackend) Put(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Put(key, value)
	})
	if err != nil {
		return storageErr("put", key, err)
	}
	return nil
}

// Scan implements Backend by seeking a cursor to prefix. fn runs inside a
// read transaction, so it must not call Put on the same backend.
func (b *BoltBackend) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	var fnErr error
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(kvBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				fnErr = err
				return nil
			}
			if err := fn(k, v); err != nil {
				fnErr = err
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("scan", prefix, err)
	}
	return fnErr
}

// Check implements Checker by running bbolt's page consistency check over
// the whole file. It returns the first problem found.
func (b *BoltBackend) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(tx *bolt.Tx) error {
		var first error
		for err := range tx.Check() {
			if first == nil {
				first = err
			}
		}
		return first
	})
}
