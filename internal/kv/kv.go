// Package kv defines the string-keyed byte store interface implemented by concrete backends.
package kv

import "context"

// Store is the persistence boundary for the collection store. A key maps to
// an opaque JSON document; the layers above decide its shape.
type Store interface {
	// Get returns the value stored at key, or errs.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the value at key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
