package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

// compile-time check: *Cache must satisfy port.Cache
var _ port.Cache = (*Cache)(nil)

func NewCache(addr, password string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Cache{client: rdb}
}

func (c *Cache) Get(ctx context.Context, key model.CacheKey) (string, bool, error) {
	logger.Debugf(ctx, "getting cache entry %q...", key)

	val, err := c.client.Get(ctx, key.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil // cache miss
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key model.CacheKey, value string, ttl time.Duration) error {
	logger.Debugf(ctx, "setting cache entry %q for %s...", key, ttl)

	if err := c.client.Set(ctx, key.String(), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key model.CacheKey) (bool, error) {
	logger.Infof(ctx, "deleting cache entry %q...", key)

	n, err := c.client.Del(ctx, key.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redis del failed: %w", err)
	}
	return n > 0, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
