package vod

import (
	"context"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

type cacheInvalidatorSrv struct {
	cache port.Cache
}

// compile-time check: *cacheInvalidatorSrv must satisfy port.CacheInvalidator
var _ port.CacheInvalidator = (*cacheInvalidatorSrv)(nil)

func NewCacheInvalidator(cache port.Cache) port.CacheInvalidator {
	return &cacheInvalidatorSrv{cache}
}

func (s *cacheInvalidatorSrv) InvalidatePlaylist(ctx context.Context, videoName string) port.InvalidationOutcome {
	return s.invalidate(ctx, model.PlaylistKey(videoName))
}

func (s *cacheInvalidatorSrv) InvalidateThumbnail(ctx context.Context, imgPath string) port.InvalidationOutcome {
	return s.invalidate(ctx, model.ThumbnailKey(imgPath))
}

// InvalidateStream drops both playlists an asset may be cached under: the one
// served by its stream route and the one served by its video name.
func (s *cacheInvalidatorSrv) InvalidateStream(ctx context.Context, asset model.Asset) port.InvalidationOutcome {
	outcome := port.InvalidationNotCached
	for _, key := range []model.CacheKey{model.PlaylistKey(asset.String()), model.PlaylistKey(asset.VideoName())} {
		switch s.invalidate(ctx, key) {
		case port.InvalidationDegraded:
			outcome = port.InvalidationDegraded
		case port.InvalidationCleared:
			if outcome != port.InvalidationDegraded {
				outcome = port.InvalidationCleared
			}
		}
	}
	return outcome
}

// invalidate never fails: an unreachable cache is reported as degraded.
func (s *cacheInvalidatorSrv) invalidate(ctx context.Context, key model.CacheKey) port.InvalidationOutcome {
	removed, err := s.cache.Delete(ctx, key)
	if err != nil {
		logger.Errorf(ctx, "❌ failed to invalidate %q: %v", key, err)
		return port.InvalidationDegraded
	}
	if !removed {
		return port.InvalidationNotCached
	}
	return port.InvalidationCleared
}
