package store

import (
	"context"
	"fmt"
)

// Config selects and configures a Store backend.
type Config struct {
	Backend string // "memory" or "minio"
	Minio   MinioConfig
}

// New creates a Store for the configured backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "minio":
		return NewMinioStore(ctx, cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown recording store backend %q", cfg.Backend)
	}
}
