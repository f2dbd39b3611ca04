package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type localCache struct {
	cache *gocache.Cache
}

// NewLocalCache creates an in-process cache backed by go-cache.
func NewLocalCache(cfg LocalConfig) Cache {
	if cfg.DefaultExpiration == 0 {
		cfg.DefaultExpiration = time.Hour
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	return &localCache{cache: gocache.New(cfg.DefaultExpiration, cfg.CleanupInterval)}
}

func (lc *localCache) Get(_ context.Context, key string) (string, bool) {
	v, found := lc.cache.Get(key)
	if !found {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return s, true
}

func (lc *localCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	lc.cache.Set(key, value, expiration)
	return nil
}

func (lc *localCache) Delete(_ context.Context, key string) error {
	lc.cache.Delete(key)
	return nil
}

func (lc *localCache) Clear(_ context.Context) error {
	lc.cache.Flush()
	return nil
}

func (lc *localCache) Close() error {
	lc.cache.Flush()
	return nil
}
