package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// FakeTranscoder writes a small HLS output without calling ffmpeg.
type FakeTranscoder struct {
	Segments int
	calls    atomic.Int32
}

func (f *FakeTranscoder) Run(ctx context.Context, inputPath, outputDir string, reencode bool) (string, error) {
	f.calls.Add(1)
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("source missing: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	lines := []string{"#EXTM3U", "#EXT-X-VERSION:3", "#EXT-X-TARGETDURATION:10"}
	for i := 0; i < f.Segments; i++ {
		seg := fmt.Sprintf("index%d.ts", i)
		if err := os.WriteFile(filepath.Join(outputDir, seg), []byte("segment"), 0o644); err != nil {
			return "", err
		}
		lines = append(lines, "#EXTINF:10.0,", seg)
	}
	lines = append(lines, "#EXT-X-ENDLIST")

	playlistPath := filepath.Join(outputDir, "index.m3u8")
	if err := os.WriteFile(playlistPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return "", err
	}
	return playlistPath, nil
}

// Calls returns how many times Run was invoked.
func (f *FakeTranscoder) Calls() int {
	return int(f.calls.Load())
}
