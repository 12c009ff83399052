package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fhuszti/vod-ms-go/internal/cache"
	"github.com/fhuszti/vod-ms-go/internal/handler/api"
	cMiddleware "github.com/fhuszti/vod-ms-go/internal/middleware"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/playlist"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/renderer"
	"github.com/fhuszti/vod-ms-go/internal/task"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
	"github.com/fhuszti/vod-ms-go/test/testutil"
)

const (
	apiKey    = "s3cret"
	vodBucket = "vod"
	rawBucket = "raw"
)

// newServers wires the transcoder and the VOD API the way their binaries do,
// with the API submitting lazy transcodes over HTTP.
func newServers(t *testing.T, tc port.Transcoder) (apiURL string, ca *cache.Cache) {
	t.Helper()
	cfg := vod.Config{
		VODBucket:    vodBucket,
		CacheTTL:     45 * time.Minute,
		SignedURLTTL: time.Hour,
		WorkDir:      t.TempDir(),
	}

	tr := chi.NewRouter()
	tr.Use(middleware.RequestID)
	tr.With(cMiddleware.WithAPIKey(apiKey)).
		Post("/transcode", api.TranscodeHandler(vod.NewTranscodeRunner(GlobalMinioClient, tc, cfg, nil)))
	transcoderSrv := httptest.NewServer(tr)
	t.Cleanup(transcoderSrv.Close)

	ca = cache.NewCache(GlobalRedisAddr, "", 0)
	t.Cleanup(func() { _ = ca.Close() })

	submitter := task.NewHTTPSubmitter(transcoderSrv.URL+"/transcode", apiKey, &http.Client{Timeout: 30 * time.Second})
	resolverSvc := vod.NewPlaylistResolver(GlobalMinioClient, ca, submitter, cfg, nil)
	rendererSvc := renderer.NewHTTPRenderer()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.NotFound(api.NotFoundHandler())
	r.With(cMiddleware.WithVideoName()).
		Get("/video/{name}/playlist.m3u8", api.GetVideoPlaylistHandler(rendererSvc, resolverSvc, vodBucket))
	r.With(cMiddleware.WithAsset(api.PlaylistResource)).
		Get("/stream/{bucket}/*", api.ResourceHandler(map[string]http.HandlerFunc{
			api.PlaylistResource: api.GetStreamPlaylistHandler(rendererSvc, resolverSvc),
		}))
	r.Group(func(r chi.Router) {
		r.Use(cMiddleware.WithAPIKey(apiKey))
		r.With(cMiddleware.WithVideoName()).
			Delete("/cache/video/{name}", api.DeleteVideoCacheHandler(vod.NewCacheInvalidator(ca)))
		r.With(cMiddleware.WithAsset(api.PlaylistResource)).
			Delete("/cache/stream/{bucket}/*", api.DeleteStreamCacheHandler(vod.NewCacheInvalidator(ca)))
		r.With(cMiddleware.WithAsset(api.PlaylistResource)).
			Delete("/stream/{bucket}/*", api.DeleteStreamHandler(vod.NewStreamDeleter(GlobalMinioClient, ca, cfg)))
	})
	apiSrv := httptest.NewServer(r)
	t.Cleanup(apiSrv.Close)

	return apiSrv.URL, ca
}

func do(t *testing.T, method, url string, withKey bool) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if withKey {
		req.Header.Set(task.APIKeyHeader, apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestStreamLifecycleE2E(t *testing.T) {
	ctx := context.Background()
	tb, err := testutil.SetupTestBuckets(GlobalMinioEndpoint, vodBucket, rawBucket)
	if err != nil {
		t.Fatalf("setup buckets: %v", err)
	}
	defer func() {
		if err := tb.Cleanup(); err != nil {
			t.Fatalf("cleanup buckets: %v", err)
		}
	}()
	if err := testutil.FlushRedis(ctx, GlobalRedisAddr); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	if err := tb.PutObject(ctx, rawBucket, "movies/intro.mp4", []byte("fake mp4"), "video/mp4"); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	tc := &testutil.FakeTranscoder{Segments: 2}
	apiURL, ca := newServers(t, tc)

	// first request transcodes lazily
	resp, body := do(t, http.MethodGet, apiURL+"/stream/raw/movies/intro.mp4/playlist.m3u8", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream playlist status = %d; body %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != playlist.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(body, "intro/index0.ts") || !strings.Contains(body, "X-Amz-Signature") {
		t.Errorf("segments not signed: %s", body)
	}
	etag := resp.Header.Get("ETag")

	// the transcoded video is now served by name as well
	resp, body = do(t, http.MethodGet, apiURL+"/video/intro/playlist.m3u8", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("video playlist status = %d; body %s", resp.StatusCode, body)
	}

	// cached stream playlist keeps its ETag
	req, _ := http.NewRequest(http.MethodGet, apiURL+"/stream/raw/movies/intro.mp4/playlist.m3u8", nil)
	req.Header.Set("If-None-Match", etag)
	cachedResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional request: %v", err)
	}
	cachedResp.Body.Close()
	if cachedResp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional status = %d; want 304", cachedResp.StatusCode)
	}
	if tc.Calls() != 1 {
		t.Errorf("transcoder ran %d times; want 1", tc.Calls())
	}

	// invalidation requires the API key
	resp, _ = do(t, http.MethodDelete, apiURL+"/cache/video/intro", false)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("unauthenticated invalidation status = %d; want 403", resp.StatusCode)
	}
	resp, body = do(t, http.MethodDelete, apiURL+"/cache/video/intro", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("invalidation status = %d; body %s", resp.StatusCode, body)
	}
	var inv api.InvalidationResponse
	if err := json.Unmarshal([]byte(body), &inv); err != nil {
		t.Fatalf("decode invalidation: %v", err)
	}
	if inv.Outcome != port.InvalidationCleared {
		t.Errorf("outcome = %q; want cleared", inv.Outcome)
	}

	// the stream route entry has its own key
	resp, body = do(t, http.MethodDelete, apiURL+"/cache/stream/raw/movies/intro.mp4/playlist.m3u8", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream invalidation status = %d; body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal([]byte(body), &inv); err != nil {
		t.Fatalf("decode stream invalidation: %v", err)
	}
	if inv.Outcome != port.InvalidationCleared {
		t.Errorf("stream outcome = %q; want cleared", inv.Outcome)
	}
	for _, key := range []model.CacheKey{model.PlaylistKey("raw/movies/intro.mp4"), model.PlaylistKey("intro")} {
		if _, ok, _ := ca.Get(ctx, key); ok {
			t.Errorf("%q still cached after invalidation", key)
		}
	}

	// stream deletion removes every HLS file
	resp, body = do(t, http.MethodDelete, apiURL+"/stream/raw/movies/intro.mp4/playlist.m3u8", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete stream status = %d; body %s", resp.StatusCode, body)
	}
	var out port.DeleteStreamOutput
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode delete output: %v", err)
	}
	if out.Video != "intro" || len(out.Deleted) != 3 {
		t.Errorf("delete output = %+v", out)
	}
	left, err := tb.Keys(ctx, vodBucket, "intro/")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("objects left after delete: %v", left)
	}

	resp, _ = do(t, http.MethodGet, apiURL+"/video/intro/playlist.m3u8", false)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("video playlist after delete status = %d; want 404", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodDelete, apiURL+"/stream/raw/movies/intro.mp4/playlist.m3u8", true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d; want 404", resp.StatusCode)
	}
}
