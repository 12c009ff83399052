package port

import (
	"context"
	"io"

	"github.com/fhuszti/vod-ms-go/internal/model"
)

// Route selects the resolver variant serving a playlist request.
type Route string

const (
	// RouteVideo serves already transcoded videos from the VOD bucket by name.
	RouteVideo Route = "video"
	// RouteStream serves any bucket/path and transcodes lazily when needed.
	RouteStream Route = "stream"
)

// PlaylistResolver returns a playlist whose segments are signed URLs.
type PlaylistResolver interface {
	ResolvePlaylist(ctx context.Context, in ResolvePlaylistInput) (string, error)
}
type ResolvePlaylistInput struct {
	Route    Route
	Asset    model.Asset
	Reencode bool
}

// TranscodeRunner downloads, transcodes and uploads one asset.
type TranscodeRunner interface {
	RunTranscode(ctx context.Context, in TranscodeInput) (TranscodeOutput, error)
}

// ThumbnailSigner returns a cached signed URL to an image object, or the
// image itself fetched through that URL.
type ThumbnailSigner interface {
	SignThumbnail(ctx context.Context, asset model.Asset) (string, error)
	FetchThumbnail(ctx context.Context, asset model.Asset) (Thumbnail, error)
}

// Thumbnail is an image body streamed from the object store. The caller
// closes Body.
type Thumbnail struct {
	Body        io.ReadCloser
	ContentType string
}

// InvalidationOutcome tells what happened to a cache entry on deletion.
type InvalidationOutcome string

const (
	InvalidationCleared   InvalidationOutcome = "cleared"
	InvalidationNotCached InvalidationOutcome = "not_cached"
	InvalidationDegraded  InvalidationOutcome = "degraded"
)

// CacheInvalidator removes cache entries without touching stored objects.
type CacheInvalidator interface {
	InvalidatePlaylist(ctx context.Context, videoName string) InvalidationOutcome
	InvalidateThumbnail(ctx context.Context, imgPath string) InvalidationOutcome
	InvalidateStream(ctx context.Context, asset model.Asset) InvalidationOutcome
}

// StreamDeleter removes every stored HLS file of an asset.
type StreamDeleter interface {
	DeleteStream(ctx context.Context, asset model.Asset) (DeleteStreamOutput, error)
}
type DeleteStreamOutput struct {
	Video   string   `json:"video"`
	Deleted []string `json:"deleted"`
}

// BacklogTranscoder submits jobs for source videos that have no playlist yet.
type BacklogTranscoder interface {
	TranscodeBacklog(ctx context.Context, sourceBucket string) (int, error)
}
