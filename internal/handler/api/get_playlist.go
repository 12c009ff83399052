package api

import (
	"net/http"
	"strconv"

	"github.com/fhuszti/vod-ms-go/internal/api_context"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/playlist"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

const (
	PlaylistResource  = "playlist.m3u8"
	ThumbnailResource = "thumbnail"
)

// GetVideoPlaylistHandler serves the playlist of an already transcoded video
// of the VOD bucket.
func GetVideoPlaylistHandler(renderer port.HTTPRenderer, svc port.PlaylistResolver, vodBucket string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := api_context.VideoNameFromContext(r.Context())
		if !ok {
			WriteError(r.Context(), w, http.StatusBadRequest, "video name is required", nil)
			return
		}

		servePlaylist(w, r, renderer, svc, port.ResolvePlaylistInput{
			Route: port.RouteVideo,
			Asset: model.Asset{Bucket: vodBucket, ObjectPath: name},
		})
	}
}

// GetStreamPlaylistHandler serves the playlist of any stored video,
// transcoding it first when no playlist exists yet.
func GetStreamPlaylistHandler(renderer port.HTTPRenderer, svc port.PlaylistResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, ok := api_context.AssetFromContext(r.Context())
		if !ok {
			WriteError(r.Context(), w, http.StatusBadRequest, "asset is required", nil)
			return
		}

		reencode := false
		if q := r.URL.Query().Get("reencode"); q != "" {
			v, err := strconv.ParseBool(q)
			if err != nil {
				WriteError(r.Context(), w, http.StatusBadRequest, "reencode must be a boolean", err)
				return
			}
			reencode = v
		}

		servePlaylist(w, r, renderer, svc, port.ResolvePlaylistInput{
			Route:    port.RouteStream,
			Asset:    asset,
			Reencode: reencode,
		})
	}
}

func servePlaylist(w http.ResponseWriter, r *http.Request, renderer port.HTTPRenderer, svc port.PlaylistResolver, in port.ResolvePlaylistInput) {
	raw, etag, err := renderer.RenderPlaylist(r.Context(), svc, in)
	if err != nil {
		WriteUsecaseError(r.Context(), w, "Could not get playlist", err)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=60")
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		logger.Infof(r.Context(), "✅  Returning cached playlist of %s", in.Asset)
		return
	}

	RespondRaw(w, http.StatusOK, playlist.ContentType, raw)
	logger.Infof(r.Context(), "✅  Successfully returned playlist of %s", in.Asset)
}

// ResourceHandler dispatches asset routes on their trailing resource.
func ResourceHandler(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, _ := api_context.ResourceFromContext(r.Context())
		h, ok := handlers[resource]
		if !ok {
			NotFoundHandler()(w, r)
			return
		}
		h(w, r)
	}
}
