package port

import (
	"context"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/model"
)

// Cache is a text key-value store with per-key expiry.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key model.CacheKey) (string, bool, error)
	Set(ctx context.Context, key model.CacheKey, value string, ttl time.Duration) error
	// Delete reports whether an entry was actually removed.
	Delete(ctx context.Context, key model.CacheKey) (bool, error)
}
