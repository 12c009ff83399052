package vod

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/metrics"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

const defaultThumbnailContentType = "image/jpeg"

type thumbnailSrv struct {
	strg    port.Storage
	cache   port.Cache
	client  *http.Client
	cfg     Config
	metrics *metrics.Metrics
}

// compile-time check: *thumbnailSrv must satisfy port.ThumbnailSigner
var _ port.ThumbnailSigner = (*thumbnailSrv)(nil)

// NewThumbnailSigner constructs a ThumbnailSigner. client is used to fetch
// images through their signed URL; nil means http.DefaultClient.
func NewThumbnailSigner(strg port.Storage, cache port.Cache, client *http.Client, cfg Config, m *metrics.Metrics) port.ThumbnailSigner {
	if client == nil {
		client = http.DefaultClient
	}
	return &thumbnailSrv{strg: strg, cache: cache, client: client, cfg: cfg, metrics: m}
}

// SignThumbnail returns a signed URL to the image, cached under the
// thumbnail namespace.
func (s *thumbnailSrv) SignThumbnail(ctx context.Context, asset model.Asset) (string, error) {
	key := model.ThumbnailKey(asset.String())
	ns := string(key.Namespace())

	cached, hit, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warnf(ctx, "cache lookup for %q failed, continuing without cache: %v", key, err)
		s.metrics.ObserveCacheLookup(ns, "error")
	case hit:
		s.metrics.ObserveCacheLookup(ns, "hit")
		return cached, nil
	default:
		s.metrics.ObserveCacheLookup(ns, "miss")
	}

	u, err := s.strg.GeneratePresignedDownloadURL(ctx, asset.Bucket, asset.ObjectPath, s.cfg.SignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: sign thumbnail %s: %v", ErrObjectNotFound, asset, err)
	}

	if err := s.cache.Set(ctx, key, u, s.cfg.CacheTTL); err != nil {
		logger.Warnf(ctx, "failed to cache thumbnail URL %q: %v", key, err)
	}
	return u, nil
}

// FetchThumbnail streams the image bytes through its signed URL.
func (s *thumbnailSrv) FetchThumbnail(ctx context.Context, asset model.Asset) (port.Thumbnail, error) {
	u, err := s.SignThumbnail(ctx, asset)
	if err != nil {
		return port.Thumbnail{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return port.Thumbnail{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return port.Thumbnail{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return port.Thumbnail{}, fmt.Errorf("%w: object store answered %d for %s", ErrUpstreamFailure, resp.StatusCode, asset)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultThumbnailContentType
	}
	return port.Thumbnail{Body: resp.Body, ContentType: ct}, nil
}
