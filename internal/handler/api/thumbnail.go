package api

import (
	"io"
	"net/http"

	"github.com/fhuszti/vod-ms-go/internal/api_context"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

// GetThumbnailURLHandler answers with a signed URL to the image as plain text.
func GetThumbnailURLHandler(svc port.ThumbnailSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, ok := api_context.AssetFromContext(r.Context())
		if !ok {
			WriteError(r.Context(), w, http.StatusBadRequest, "asset is required", nil)
			return
		}

		url, err := svc.SignThumbnail(r.Context(), asset)
		if err != nil {
			WriteUsecaseError(r.Context(), w, "Could not sign thumbnail", err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		RespondRaw(w, http.StatusOK, "text/plain; charset=utf-8", []byte(url))
		logger.Infof(r.Context(), "✅  Successfully signed thumbnail %s", asset)
	}
}

// GetThumbnailHandler streams the image itself.
func GetThumbnailHandler(svc port.ThumbnailSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, ok := api_context.AssetFromContext(r.Context())
		if !ok {
			WriteError(r.Context(), w, http.StatusBadRequest, "asset is required", nil)
			return
		}

		thumb, err := svc.FetchThumbnail(r.Context(), asset)
		if err != nil {
			WriteUsecaseError(r.Context(), w, "Could not fetch thumbnail", err)
			return
		}
		defer thumb.Body.Close()

		w.Header().Set("Content-Type", thumb.ContentType)
		w.Header().Set("Cache-Control", "private, max-age=300")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, thumb.Body); err != nil {
			logger.Errorf(r.Context(), "❌  Failed to stream thumbnail %s: %v", asset, err)
			return
		}
		logger.Infof(r.Context(), "✅  Successfully streamed thumbnail %s", asset)
	}
}
