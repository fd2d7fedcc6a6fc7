package cache

import (
	"context"
	"time"
)

// Cache is the shared cache abstraction. Values are opaque; callers
// that need cross-process sharing must store serializable values.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (interface{}, bool)
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Type  string // local | redis
	Local LocalConfig
	Redis RedisConfig
}

type LocalConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}
