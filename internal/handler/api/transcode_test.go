package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fhuszti/vod-ms-go/internal/mock"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
)

func TestTranscodeHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		svcErr         error
		wantStatus     int
		wantCalled     bool
		wantIn         port.TranscodeInput
		wantBodySubstr string
	}{
		{
			name:           "invalid json",
			body:           `{"asset_bucket":`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid request payload",
		},
		{
			name:           "missing fields",
			body:           `{}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: `"asset_bucket":"required"`,
		},
		{
			name:           "path traversal",
			body:           `{"asset_bucket":"raw","asset_object":"../etc/passwd"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: `"asset_object":"objectpath"`,
		},
		{
			name:           "transcode failure",
			body:           `{"asset_bucket":"raw","asset_object":"movies/intro.mp4"}`,
			svcErr:         fmt.Errorf("%w: exit status 1", vod.ErrTranscodeFailure),
			wantStatus:     http.StatusInternalServerError,
			wantCalled:     true,
			wantIn:         port.TranscodeInput{Bucket: "raw", Object: "movies/intro.mp4"},
			wantBodySubstr: `"kind":"transcode_failure"`,
		},
		{
			name:           "source missing",
			body:           `{"asset_bucket":"raw","asset_object":"movies/intro.mp4"}`,
			svcErr:         vod.ErrObjectNotFound,
			wantStatus:     http.StatusNotFound,
			wantCalled:     true,
			wantIn:         port.TranscodeInput{Bucket: "raw", Object: "movies/intro.mp4"},
			wantBodySubstr: `"kind":"not_found"`,
		},
		{
			name:       "happy path",
			body:       `{"asset_bucket":"raw","asset_object":"movies/intro.mp4","reencode":true}`,
			wantStatus: http.StatusOK,
			wantCalled: true,
			wantIn:     port.TranscodeInput{Bucket: "raw", Object: "movies/intro.mp4", Reencode: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mock.TranscodeRunner{
				Out: port.TranscodeOutput{Video: "intro", Files: []string{"intro/index.m3u8", "intro/index0.ts"}},
				Err: tc.svcErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/transcode", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			TranscodeHandler(svc)(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d (body %q)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if svc.Called != tc.wantCalled {
				t.Fatalf("runner called = %v; want %v", svc.Called, tc.wantCalled)
			}
			if tc.wantCalled && svc.In != tc.wantIn {
				t.Errorf("runner input = %+v; want %+v", svc.In, tc.wantIn)
			}
			if tc.wantBodySubstr != "" {
				if !strings.Contains(rec.Body.String(), tc.wantBodySubstr) {
					t.Errorf("body = %q; want it to contain %q", rec.Body.String(), tc.wantBodySubstr)
				}
				return
			}

			var resp TranscodeResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != "success" || resp.Video != "intro" || len(resp.Files) != 2 {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
