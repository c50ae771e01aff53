package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set or was deleted.
var ErrNotFound = errors.New("not found")

// Store is a flat string key/value store. It is the only place session
// credentials live between process runs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key starting with prefix. An empty prefix clears the store.
	Clear(ctx context.Context, prefix string) error
	Close() error
}
