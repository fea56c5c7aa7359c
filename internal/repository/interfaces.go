package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by BlobStore.Get when the key has never been written.
var ErrNotFound = errors.New("repository: key not found")

// BlobStore is a key/value store of whole documents. A slot is a key inside a
// BlobStore.
type BlobStore interface {
	// Kind names the backend (file, sqlite, redis, ...).
	Kind() string

	// Get returns the bytes stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites key with data.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Slot is one named redundant storage location.
type Slot struct {
	Key   string
	Store BlobStore
}

// Name returns the slot label used in logs, e.g. "sqlite:alkozay_backup_2".
func (s Slot) Name() string {
	return s.Store.Kind() + ":" + s.Key
}
