package vod

import (
	"context"
	"errors"
	"fmt"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

type streamDeleterSrv struct {
	strg  port.Storage
	cache port.Cache
	cfg   Config
}

// compile-time check: *streamDeleterSrv must satisfy port.StreamDeleter
var _ port.StreamDeleter = (*streamDeleterSrv)(nil)

func NewStreamDeleter(strg port.Storage, cache port.Cache, cfg Config) port.StreamDeleter {
	return &streamDeleterSrv{strg, cache, cfg}
}

// DeleteStream removes every object under "{video_name}/" in the VOD bucket
// and drops the cached playlists of the asset. Objects removed before a
// failure stay removed.
func (s *streamDeleterSrv) DeleteStream(ctx context.Context, asset model.Asset) (port.DeleteStreamOutput, error) {
	videoName := asset.VideoName()
	if videoName == "" {
		return port.DeleteStreamOutput{}, ErrObjectNotFound
	}

	keys, err := s.strg.ListFiles(ctx, s.cfg.VODBucket, model.StreamPrefix(videoName))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return port.DeleteStreamOutput{}, ErrObjectNotFound
		}
		return port.DeleteStreamOutput{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(keys) == 0 {
		return port.DeleteStreamOutput{}, ErrObjectNotFound
	}

	results := s.strg.RemoveFiles(ctx, s.cfg.VODBucket, keys)
	s.invalidate(ctx, model.PlaylistKey(asset.String()), model.PlaylistKey(videoName))

	out := port.DeleteStreamOutput{Video: videoName}
	var failed []string
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			logger.Errorf(ctx, "❌ failed to delete %q: %v", r.Key, r.Err)
			failed = append(failed, r.Key)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		out.Deleted = append(out.Deleted, r.Key)
	}
	if len(failed) > 0 {
		return out, &PartialDeleteError{Failed: failed, Err: firstErr}
	}

	logger.Infof(ctx, "✅ deleted %d object(s) of stream %q", len(out.Deleted), videoName)
	return out, nil
}

func (s *streamDeleterSrv) invalidate(ctx context.Context, keys ...model.CacheKey) {
	for _, k := range keys {
		if _, err := s.cache.Delete(ctx, k); err != nil {
			logger.Warnf(ctx, "failed to invalidate %q: %v", k, err)
		}
	}
}
