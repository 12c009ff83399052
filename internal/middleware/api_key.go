package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/fhuszti/vod-ms-go/internal/handler/api"
	"github.com/fhuszti/vod-ms-go/internal/task"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
)

// WithAPIKey rejects requests whose x-api-key header does not match secret.
// An empty secret rejects every request.
func WithAPIKey(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(task.APIKeyHeader)
			if secret == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				api.WriteUsecaseError(r.Context(), w, "Unauthorized", vod.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
