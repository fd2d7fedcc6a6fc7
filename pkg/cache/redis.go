package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores string-encoded values in redis. Non-string values
// are rejected at Set time rather than silently mangled.
type RedisCache struct {
	cli *redis.Client
}

func NewRedisCache(config RedisConfig) (*RedisCache, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{cli: cli}, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.cli.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	val, err := r.cli.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.cli.Del(ctx, key).Err()
}

func (r *RedisCache) Close() error { return r.cli.Close() }
