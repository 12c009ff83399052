package integration

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/cache"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/task"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
	"github.com/fhuszti/vod-ms-go/test/testutil"
)

func vodConfig(t *testing.T) vod.Config {
	return vod.Config{
		VODBucket:    vodBucket,
		CacheTTL:     45 * time.Minute,
		SignedURLTTL: time.Hour,
		WorkDir:      t.TempDir(),
	}
}

func TestTranscodeQueue_WorkerUploadsStream(t *testing.T) {
	ctx := context.Background()
	tb := setupBuckets(t)
	if err := testutil.FlushRedis(ctx, GlobalRedisAddr); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	if err := tb.PutObject(ctx, rawBucket, "movies/intro.mp4", []byte("fake mp4"), "video/mp4"); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	tc := &testutil.FakeTranscoder{Segments: 3}
	runner := vod.NewTranscodeRunner(GlobalMinioClient, tc, vodConfig(t), nil)
	stop := testutil.StartWorker(runner, GlobalRedisAddr)
	defer stop()

	d := task.NewDispatcher(GlobalRedisAddr, "", 0)
	defer d.Close()
	in := port.TranscodeInput{Bucket: rawBucket, Object: "movies/intro.mp4"}
	if err := d.SubmitTranscode(ctx, in); err != nil {
		t.Fatalf("SubmitTranscode: %v", err)
	}
	// same job while the first one is queued or running
	if err := d.SubmitTranscode(ctx, in); err != nil {
		t.Fatalf("duplicate SubmitTranscode: %v", err)
	}

	var keys []string
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		keys, _ = tb.Keys(ctx, vodBucket, "intro/")
		if slices.Contains(keys, "intro/index.m3u8") {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	slices.Sort(keys)
	want := []string{"intro/index.m3u8", "intro/index0.ts", "intro/index1.ts", "intro/index2.ts"}
	if !slices.Equal(keys, want) {
		t.Fatalf("uploaded keys = %v; want %v", keys, want)
	}
	if tc.Calls() != 1 {
		t.Errorf("transcoder ran %d times; want 1", tc.Calls())
	}
}

func TestResolvePlaylist_LazyTranscodeThroughQueue(t *testing.T) {
	ctx := context.Background()
	tb := setupBuckets(t)
	if err := testutil.FlushRedis(ctx, GlobalRedisAddr); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	if err := tb.PutObject(ctx, rawBucket, "movies/outro.mov", []byte("fake mov"), "video/quicktime"); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	cfg := vodConfig(t)
	runner := vod.NewTranscodeRunner(GlobalMinioClient, &testutil.FakeTranscoder{Segments: 2}, cfg, nil)
	stop := testutil.StartWorker(runner, GlobalRedisAddr)
	defer stop()

	d := task.NewDispatcher(GlobalRedisAddr, "", 0)
	defer d.Close()
	ca := cache.NewCache(GlobalRedisAddr, "", 0)
	defer ca.Close()

	resolver := vod.NewPlaylistResolver(GlobalMinioClient, ca, d, cfg, nil)
	asset := model.Asset{Bucket: rawBucket, ObjectPath: "movies/outro.mov"}
	in := port.ResolvePlaylistInput{Route: port.RouteStream, Asset: asset}

	first, err := resolver.ResolvePlaylist(ctx, in)
	if err != nil {
		t.Fatalf("ResolvePlaylist: %v", err)
	}
	if !strings.HasPrefix(first, "#EXTM3U") {
		t.Errorf("playlist does not start with #EXTM3U: %q", first)
	}
	for _, seg := range []string{"outro/index0.ts", "outro/index1.ts"} {
		if !strings.Contains(first, seg) || !strings.Contains(first, "X-Amz-Signature") {
			t.Errorf("segment %s not signed in %q", seg, first)
		}
	}

	cached, ok, err := ca.Get(ctx, model.PlaylistKey(asset.String()))
	if err != nil || !ok {
		t.Fatalf("playlist not cached: ok=%v err=%v", ok, err)
	}
	if cached != first {
		t.Error("cached playlist differs from the returned one")
	}

	second, err := resolver.ResolvePlaylist(ctx, in)
	if err != nil {
		t.Fatalf("second ResolvePlaylist: %v", err)
	}
	if second != first {
		t.Error("cache hit must return the cached text verbatim")
	}
}
