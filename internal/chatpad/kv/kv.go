// Package kv defines the key-value interface the local stores persist through,
// with an in-memory implementation and a directory-of-files implementation.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Store is a durable key-value store. Implementations must be safe for
// concurrent use. A Put is visible to any Get that starts after it returns.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// List returns every key in the store in no particular order.
	List(ctx context.Context) ([]string, error)
}
