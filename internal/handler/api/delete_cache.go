package api

import (
	"net/http"

	"github.com/fhuszti/vod-ms-go/internal/api_context"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

type InvalidationResponse struct {
	Outcome port.InvalidationOutcome `json:"outcome"`
}

// DeleteVideoCacheHandler drops the cached playlist of a video.
func DeleteVideoCacheHandler(svc port.CacheInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := api_context.VideoNameFromContext(r.Context())
		if !ok {
			WriteError(r.Context(), w, http.StatusBadRequest, "video name is required", nil)
			return
		}

		outcome := svc.InvalidatePlaylist(r.Context(), name)
		RespondJSON(w, http.StatusOK, InvalidationResponse{Outcome: outcome})
		logger.Infof(r.Context(), "✅  Playlist cache of video %q: %s", name, outcome)
	}
}

// DeleteImageCacheHandler drops the cached signed URL of an image.
func DeleteImageCacheHandler(svc port.CacheInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := api_context.ImagePathFromContext(r.Context())
		if !ok {
			WriteError(r.Context(), w, http.StatusBadRequest, "image path is required", nil)
			return
		}

		outcome := svc.InvalidateThumbnail(r.Context(), p)
		RespondJSON(w, http.StatusOK, InvalidationResponse{Outcome: outcome})
		logger.Infof(r.Context(), "✅  Thumbnail cache of %q: %s", p, outcome)
	}
}

// DeleteStreamCacheHandler drops the cached playlists of a stored asset.
func DeleteStreamCacheHandler(svc port.CacheInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, ok := api_context.AssetFromContext(r.Context())
		if !ok {
			WriteError(r.Context(), w, http.StatusBadRequest, "asset is required", nil)
			return
		}

		outcome := svc.InvalidateStream(r.Context(), asset)
		RespondJSON(w, http.StatusOK, InvalidationResponse{Outcome: outcome})
		logger.Infof(r.Context(), "✅  Playlist cache of stream %q: %s", asset.String(), outcome)
	}
}
