package store

import (
	"context"

	"skillswap/internal/config"
)

// Open returns the namespaced store selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (*Namespaced, error) {
	if cfg.Path == config.MemoryStorage {
		return NewNamespaced(NewMemory(), cfg.Namespace), nil
	}

	db, err := OpenSQLite(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	return NewNamespaced(db, cfg.Namespace), nil
}
