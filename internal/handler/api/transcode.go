package api

import (
	"encoding/json"
	"net/http"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/validation"
)

type TranscodeRequest struct {
	AssetBucket string `json:"asset_bucket" validate:"required,bucketname"`
	AssetObject string `json:"asset_object" validate:"required,objectpath"`
	Reencode    bool   `json:"reencode"`
}

type TranscodeResponse struct {
	Status string   `json:"status"`
	Video  string   `json:"video"`
	Files  []string `json:"files"`
}

// TranscodeHandler runs a transcode job synchronously.
func TranscodeHandler(svc port.TranscodeRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TranscodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(r.Context(), w, http.StatusBadRequest, "invalid request payload", err)
			return
		}

		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(r.Context(), w, http.StatusInternalServerError, "failed to encode validation errors", err)
				return
			}
			RespondRaw(w, http.StatusBadRequest, "application/json", []byte(errsJSON))
			logger.Errorf(r.Context(), "❌  Validation failed: %s", errsJSON)
			return
		}

		in := port.TranscodeInput{Bucket: req.AssetBucket, Object: req.AssetObject, Reencode: req.Reencode}
		out, err := svc.RunTranscode(r.Context(), in)
		if err != nil {
			WriteUsecaseError(r.Context(), w, "Transcode failed", err)
			return
		}

		RespondJSON(w, http.StatusOK, TranscodeResponse{Status: "success", Video: out.Video, Files: out.Files})
		logger.Infof(r.Context(), "✅  Successfully transcoded %s/%s into %d files", in.Bucket, in.Object, len(out.Files))
	}
}
