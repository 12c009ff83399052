package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/fhuszti/vod-ms-go/internal/api_context"
	"github.com/fhuszti/vod-ms-go/internal/handler/api"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/go-chi/chi/v5"
)

// WithAsset reads "/{bucket}/*" routes where the wildcard is
// "{object_path}/{resource}" and resource is one of resources. Object paths
// may contain slashes.
func WithAsset(resources ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bucket, err := url.PathUnescape(chi.URLParam(r, "bucket"))
			if err != nil || bucket == "" {
				api.WriteError(r.Context(), w, http.StatusBadRequest, "bucket is required", nil)
				return
			}
			rest, err := url.PathUnescape(chi.URLParam(r, "*"))
			if err != nil {
				api.WriteError(r.Context(), w, http.StatusBadRequest, "invalid object path", err)
				return
			}

			i := strings.LastIndex(rest, "/")
			if i <= 0 {
				api.NotFoundHandler()(w, r)
				return
			}
			objectPath, resource := rest[:i], rest[i+1:]
			if _, ok := allowed[resource]; !ok {
				api.NotFoundHandler()(w, r)
				return
			}

			// stash it in context and call the real handler
			ctx := context.WithValue(r.Context(), api_context.AssetKey, model.Asset{Bucket: bucket, ObjectPath: objectPath})
			ctx = context.WithValue(ctx, api_context.ResourceKey, resource)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithVideoName() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, err := url.PathUnescape(chi.URLParam(r, "name"))
			if err != nil || name == "" {
				api.WriteError(r.Context(), w, http.StatusBadRequest, "video name is required", nil)
				return
			}

			ctx := context.WithValue(r.Context(), api_context.VideoNameKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithImagePath reads the "bucket/path" wildcard of image cache routes.
func WithImagePath() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := url.PathUnescape(chi.URLParam(r, "*"))
			p = strings.Trim(p, "/")
			if err != nil || p == "" {
				api.WriteError(r.Context(), w, http.StatusBadRequest, "image path is required", nil)
				return
			}

			ctx := context.WithValue(r.Context(), api_context.ImagePathKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
