package cache

import (
	"fmt"
	"strings"
)

// New creates a Cache for the configured backend.
func New(cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return NewLocalCache(cfg.Local), nil
	case "redis":
		return NewRedisCache(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
