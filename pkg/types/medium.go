package types

import "context"

// Medium is a flat key to bytes store. Each collection is one key holding a
// JSON array.
type Medium interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Keys lists every key present in the medium.
	Keys(ctx context.Context) ([]string, error)

	// Close releases the medium's resources.
	Close() error
}
