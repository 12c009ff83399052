package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fhuszti/vod-ms-go/internal/api_context"
	"github.com/fhuszti/vod-ms-go/internal/mock"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
)

func withAsset(r *http.Request, a model.Asset) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), api_context.AssetKey, a))
}

func TestGetThumbnailURLHandler(t *testing.T) {
	asset := model.Asset{Bucket: "images", ObjectPath: "posters/intro.jpg"}

	tests := []struct {
		name       string
		withAsset  bool
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "missing asset", wantStatus: http.StatusBadRequest},
		{name: "happy path", withAsset: true, wantStatus: http.StatusOK, wantBody: "https://signed.example.com/images/posters/intro.jpg"},
		{name: "signing failure", withAsset: true, svcErr: fmt.Errorf("%w: presign", vod.ErrObjectNotFound), wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mock.ThumbnailSigner{URL: "https://signed.example.com/images/posters/intro.jpg", Err: tc.svcErr}
			req := httptest.NewRequest(http.MethodGet, "/asset/images/posters/intro.jpg/thumbnail", nil)
			if tc.withAsset {
				req = withAsset(req, asset)
			}
			rec := httptest.NewRecorder()
			GetThumbnailURLHandler(svc)(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if !tc.withAsset {
				if svc.SignCalled {
					t.Error("signer should not be called")
				}
				return
			}
			if svc.Asset != asset {
				t.Errorf("signer asset = %+v; want %+v", svc.Asset, asset)
			}
			if tc.wantBody != "" {
				if rec.Body.String() != tc.wantBody {
					t.Errorf("body = %q; want %q", rec.Body.String(), tc.wantBody)
				}
				if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
					t.Errorf("Content-Type = %q", ct)
				}
			}
		})
	}
}

func TestGetThumbnailHandler(t *testing.T) {
	asset := model.Asset{Bucket: "images", ObjectPath: "posters/intro.png"}

	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "streams image", wantStatus: http.StatusOK, wantBody: "PNGDATA"},
		{name: "upstream failure", svcErr: vod.ErrUpstreamFailure, wantStatus: http.StatusBadGateway},
		{name: "not found", svcErr: vod.ErrObjectNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mock.ThumbnailSigner{Body: "PNGDATA", ContentType: "image/png", Err: tc.svcErr}
			req := withAsset(httptest.NewRequest(http.MethodGet, "/stream/images/posters/intro.png/thumbnail", nil), asset)
			rec := httptest.NewRecorder()
			GetThumbnailHandler(svc)(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if !svc.FetchCalled {
				t.Fatal("expected FetchThumbnail to be called")
			}
			if tc.wantBody == "" {
				return
			}
			if rec.Body.String() != tc.wantBody {
				t.Errorf("body = %q; want %q", rec.Body.String(), tc.wantBody)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q; want image/png", ct)
			}
		})
	}
}
