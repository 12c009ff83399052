package vod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/metrics"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

const (
	pollAttempts = 10
	pollInterval = time.Second
)

// routeVariant lists what differs between the playlist routes.
type routeVariant struct {
	// multiBucketKey keys the cache by "bucket/object_path" instead of the video name
	multiBucketKey bool
	// lazyTranscode submits a job when no playlist exists yet
	lazyTranscode bool
	// reencode honours the reencode flag of the request
	reencode bool
}

var routeVariants = map[port.Route]routeVariant{
	port.RouteVideo:  {},
	port.RouteStream: {multiBucketKey: true, lazyTranscode: true, reencode: true},
}

func (v routeVariant) videoName(a model.Asset) string {
	if v.multiBucketKey {
		return a.VideoName()
	}
	// the video route already receives the stored video name
	return a.ObjectPath
}

func (v routeVariant) cacheKey(a model.Asset, videoName string) model.CacheKey {
	if v.multiBucketKey {
		return model.PlaylistKey(a.String())
	}
	return model.PlaylistKey(videoName)
}

type playlistResolverSrv struct {
	strg      port.Storage
	cache     port.Cache
	submitter port.TranscodeSubmitter
	cfg       Config
	metrics   *metrics.Metrics
	sleep     func(time.Duration)
}

// compile-time check: *playlistResolverSrv must satisfy port.PlaylistResolver
var _ port.PlaylistResolver = (*playlistResolverSrv)(nil)

// NewPlaylistResolver constructs a cache-aside PlaylistResolver.
func NewPlaylistResolver(strg port.Storage, cache port.Cache, submitter port.TranscodeSubmitter, cfg Config, m *metrics.Metrics) port.PlaylistResolver {
	return &playlistResolverSrv{
		strg:      strg,
		cache:     cache,
		submitter: submitter,
		cfg:       cfg,
		metrics:   m,
		sleep:     time.Sleep,
	}
}

func (s *playlistResolverSrv) ResolvePlaylist(ctx context.Context, in port.ResolvePlaylistInput) (string, error) {
	v, ok := routeVariants[in.Route]
	if !ok {
		return "", fmt.Errorf("unknown playlist route %q", in.Route)
	}
	videoName := v.videoName(in.Asset)
	if videoName == "" {
		return "", ErrObjectNotFound
	}
	key := v.cacheKey(in.Asset, videoName)

	if cached, hit := s.lookup(ctx, key); hit {
		return cached, nil
	}

	raw, err := s.readPlaylist(ctx, videoName)
	if errors.Is(err, ErrObjectNotFound) && v.lazyTranscode {
		raw, err = s.transcodeAndWait(ctx, port.TranscodeInput{
			Bucket:   in.Asset.Bucket,
			Object:   in.Asset.ObjectPath,
			Reencode: v.reencode && in.Reencode,
		}, videoName)
	}
	if err != nil {
		return "", err
	}

	signed, err := SignPlaylist(ctx, s.strg, raw, s.cfg.VODBucket, videoName, s.cfg.SignedURLTTL)
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, key, signed, s.cfg.CacheTTL); err != nil {
		logger.Warnf(ctx, "failed to cache playlist %q: %v", key, err)
	}
	return signed, nil
}

// lookup treats an unreachable cache as a miss.
func (s *playlistResolverSrv) lookup(ctx context.Context, key model.CacheKey) (string, bool) {
	ns := string(key.Namespace())
	cached, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warnf(ctx, "cache lookup for %q failed, continuing without cache: %v", key, err)
		s.metrics.ObserveCacheLookup(ns, "error")
		return "", false
	}
	if !hit {
		s.metrics.ObserveCacheLookup(ns, "miss")
		return "", false
	}
	s.metrics.ObserveCacheLookup(ns, "hit")
	return cached, true
}

func (s *playlistResolverSrv) readPlaylist(ctx context.Context, videoName string) (string, error) {
	data, err := s.strg.ReadFile(ctx, s.cfg.VODBucket, model.PlaylistObjectKey(videoName))
	if errors.Is(err, ErrObjectNotFound) {
		return "", ErrObjectNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return string(data), nil
}

// transcodeAndWait submits a job and checks the store until its playlist
// shows up. The wait runs to completion unless the store becomes unreachable,
// which is reported at once as ErrStoreUnavailable.
func (s *playlistResolverSrv) transcodeAndWait(ctx context.Context, job port.TranscodeInput, videoName string) (string, error) {
	logger.Infof(ctx, "no playlist for %s/%s, requesting a transcode", job.Bucket, job.Object)

	if err := s.submitter.SubmitTranscode(ctx, job); err != nil {
		s.metrics.IncLazyTranscode("submit_failure")
		return "", fmt.Errorf("%w: %v", ErrTranscodeUnavailable, err)
	}

	var lastErr error
	for attempt := 1; attempt <= pollAttempts; attempt++ {
		if attempt > 1 {
			s.sleep(pollInterval)
		}
		s.metrics.IncPollAttempts()

		raw, err := s.readPlaylist(ctx, videoName)
		if err == nil {
			logger.Infof(ctx, "✅ playlist for %q available after %d check(s)", videoName, attempt)
			s.metrics.IncLazyTranscode("ready")
			return raw, nil
		}
		if errors.Is(err, ErrStoreUnavailable) {
			logger.Warnf(ctx, "playlist check %d for %q failed: %v", attempt, videoName, err)
			s.metrics.IncLazyTranscode("store_unavailable")
			return "", err
		}
		lastErr = err
	}

	logger.Warnf(ctx, "playlist for %q still missing after %d checks: %v", videoName, pollAttempts, lastErr)
	s.metrics.IncLazyTranscode("deadline_exceeded")
	return "", ErrDeadlineExceeded
}
