// Package transcoder produces HLS renditions by running ffmpeg.
package transcoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

const (
	segmentSeconds = "10"
	maxDiagnostics = 4096
)

// Error carries the tool output of a failed run.
type Error struct {
	Diagnostics string
	Err         error
}

func (e *Error) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("ffmpeg: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg: %v: %s", e.Err, e.Diagnostics)
}

func (e *Error) Unwrap() error { return e.Err }

type FFmpeg struct {
	path string
	run  commandRunner
}

// compile-time check: *FFmpeg must satisfy port.Transcoder
var _ port.Transcoder = (*FFmpeg)(nil)

func New(ffmpegPath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpeg{path: ffmpegPath, run: execRunner}
}

// Run writes index.m3u8 and its numbered .ts segments into outputDir and
// returns the playlist path.
func (f *FFmpeg) Run(ctx context.Context, inputPath, outputDir string, reencode bool) (string, error) {
	if err := os.MkdirAll(outputDir, 0o700); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	playlistPath := filepath.Join(outputDir, model.PlaylistFile)

	args := buildArgs(inputPath, playlistPath, reencode)
	logger.Infof(ctx, "running %s %s", f.path, strings.Join(args, " "))

	out, err := f.run(ctx, f.path, args...)
	if err != nil {
		return "", &Error{Diagnostics: tail(string(out)), Err: err}
	}
	if _, err := os.Stat(playlistPath); err != nil {
		return "", &Error{Diagnostics: tail(string(out)), Err: fmt.Errorf("no playlist produced: %w", err)}
	}
	return playlistPath, nil
}

func buildArgs(inputPath, playlistPath string, reencode bool) []string {
	args := []string{"-y", "-i", inputPath}
	if reencode {
		args = append(args,
			"-c:v", "libx264", "-preset", "veryfast", "-crf", "23",
			"-c:a", "aac", "-b:a", "128k",
		)
	} else {
		args = append(args, "-codec", "copy", "-start_number", "0")
	}
	return append(args,
		"-f", "hls",
		"-hls_time", segmentSeconds,
		"-hls_list_size", "0",
		playlistPath,
	)
}

// tail keeps the end of the output, where ffmpeg prints the actual error.
func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDiagnostics {
		return s
	}
	return s[len(s)-maxDiagnostics:]
}
