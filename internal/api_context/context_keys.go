package api_context

import (
	"context"

	"github.com/fhuszti/vod-ms-go/internal/model"
)

type ctxKey string

const (
	AssetKey     ctxKey = "asset"
	ResourceKey  ctxKey = "resource"
	VideoNameKey ctxKey = "videoName"
	ImagePathKey ctxKey = "imagePath"
)

func AssetFromContext(ctx context.Context) (model.Asset, bool) {
	a, ok := ctx.Value(AssetKey).(model.Asset)
	return a, ok
}

// ResourceFromContext returns the trailing resource of an asset URL,
// e.g. "playlist.m3u8" or "thumbnail".
func ResourceFromContext(ctx context.Context) (string, bool) {
	r, ok := ctx.Value(ResourceKey).(string)
	return r, ok
}

func VideoNameFromContext(ctx context.Context) (string, bool) {
	n, ok := ctx.Value(VideoNameKey).(string)
	return n, ok
}

func ImagePathFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(ImagePathKey).(string)
	return p, ok
}
