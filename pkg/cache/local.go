package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache wraps go-cache for single-process deployments.
type LocalCache struct {
	c *gocache.Cache
}

func NewLocalCache(config LocalConfig) *LocalCache {
	if config.DefaultExpiration == 0 {
		config.DefaultExpiration = 5 * time.Minute
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 10 * time.Minute
	}
	return &LocalCache{c: gocache.New(config.DefaultExpiration, config.CleanupInterval)}
}

func (l *LocalCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	l.c.Set(key, value, expiration)
	return nil
}

func (l *LocalCache) Get(_ context.Context, key string) (interface{}, bool) {
	return l.c.Get(key)
}

func (l *LocalCache) Delete(_ context.Context, key string) error {
	l.c.Delete(key)
	return nil
}

func (l *LocalCache) Close() error { return nil }
