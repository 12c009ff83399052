package cache

import (
	"context"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

// NoopCache is used when no Redis host is configured: every read misses.
type NoopCache struct{}

// compile-time check: *NoopCache must satisfy port.Cache
var _ port.Cache = (*NoopCache)(nil)

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) Get(ctx context.Context, key model.CacheKey) (string, bool, error) {
	return "", false, nil // always cache miss
}

func (n *NoopCache) Set(ctx context.Context, key model.CacheKey, value string, ttl time.Duration) error {
	return nil
}

func (n *NoopCache) Delete(ctx context.Context, key model.CacheKey) (bool, error) {
	return false, nil
}
