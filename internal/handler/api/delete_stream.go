package api

import (
	"net/http"

	"github.com/fhuszti/vod-ms-go/internal/api_context"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

// DeleteStreamHandler removes every HLS file of an asset.
func DeleteStreamHandler(svc port.StreamDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, ok := api_context.AssetFromContext(r.Context())
		if !ok {
			WriteError(r.Context(), w, http.StatusBadRequest, "asset is required", nil)
			return
		}

		out, err := svc.DeleteStream(r.Context(), asset)
		if err != nil {
			WriteUsecaseError(r.Context(), w, "Failed to delete stream", err)
			return
		}

		RespondJSON(w, http.StatusOK, out)
		logger.Infof(r.Context(), "✅  Successfully deleted %d files of video %q", len(out.Deleted), out.Video)
	}
}
