// Package cache provides a small string cache facade with local and
// redis backends. The service uses it to serve saved-phrase reads
// without a directory round trip.
package cache

import (
	"context"
	"time"
)

// Cache stores string values with per-entry expiration.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value with the given expiration.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a cache backend.
type Config struct {
	Backend string // "local" or "redis"
	Local   LocalConfig
	Redis   RedisConfig
}

// LocalConfig configures the in-process backend.
type LocalConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}
