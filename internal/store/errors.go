package store

import "fmt"

// StorageError reports a failure of the backing store or undecodable
// stored data.
type StorageError struct {
	// Op names the failed operation ("get", "put", "scan", "decode row", ...).
	Op string

	// Key is the store key involved, if any.
	Key string

	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, key []byte, err error) error {
	return &StorageError{Op: op, Key: string(key), Err: err}
}
