package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// ClassifyError maps a use case error to its HTTP status and error kind.
func ClassifyError(err error) (int, string) {
	var pErr *vod.PartialDeleteError
	switch {
	case errors.As(err, &pErr):
		return http.StatusInternalServerError, "partial_delete"
	case errors.Is(err, vod.ErrObjectNotFound), errors.Is(err, vod.ErrBucketNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, vod.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, vod.ErrTranscodeFailure):
		return http.StatusInternalServerError, "transcode_failure"
	case errors.Is(err, vod.ErrTranscodeUnavailable):
		return http.StatusInternalServerError, "transcode_unavailable"
	case errors.Is(err, vod.ErrDeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded"
	case errors.Is(err, vod.ErrSigningFailure):
		return http.StatusInternalServerError, "signing_failure"
	case errors.Is(err, vod.ErrUpstreamFailure):
		return http.StatusBadGateway, "upstream_failure"
	case errors.Is(err, vod.ErrStoreUnavailable), errors.Is(err, vod.ErrInternal), errors.Is(err, vod.ErrStorageDenied):
		return http.StatusInternalServerError, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusForbidden:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "internal"
	}
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	writeError(ctx, w, status, kindForStatus(status), msg, err)
}

// WriteUsecaseError answers with the status and kind matching err.
func WriteUsecaseError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status, kind := ClassifyError(err)
	writeError(ctx, w, status, kind, msg, err)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, kind, msg string, err error) {
	resp := ErrorResponse{Error: msg, Kind: kind}
	if err != nil {
		logger.Errorf(ctx, "❌  %s: %v", msg, err)
		resp.Detail = err.Error()
	} else {
		logger.Error(ctx, "❌  "+msg)
	}
	w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
	RespondJSON(w, status, resp)
}

func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to encode JSON response: %v", err)
	}
}

func RespondRaw(w http.ResponseWriter, status int, contentType string, raw []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to write response: %v", err)
	}
}
