package vod

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/metrics"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/playlist"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/google/uuid"
)

var uploadContentTypes = map[string]string{
	".m3u8": playlist.ContentType,
	".ts":   "video/mp2t",
}

func uploadContentType(name string) string {
	if ct, ok := uploadContentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

type transcodeRunnerSrv struct {
	strg    port.Storage
	tc      port.Transcoder
	cfg     Config
	metrics *metrics.Metrics
}

// compile-time check: *transcodeRunnerSrv must satisfy port.TranscodeRunner
var _ port.TranscodeRunner = (*transcodeRunnerSrv)(nil)

// NewTranscodeRunner constructs a TranscodeRunner writing to cfg.VODBucket.
func NewTranscodeRunner(strg port.Storage, tc port.Transcoder, cfg Config, m *metrics.Metrics) port.TranscodeRunner {
	return &transcodeRunnerSrv{strg: strg, tc: tc, cfg: cfg, metrics: m}
}

// RunTranscode downloads the source object, converts it to HLS and uploads
// the playlist and segments under "{video_name}/". The workspace is removed
// whatever the outcome.
func (s *transcodeRunnerSrv) RunTranscode(ctx context.Context, in port.TranscodeInput) (out port.TranscodeOutput, err error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		s.metrics.ObserveTranscodeJob(outcome, time.Since(start))
	}()

	videoName := model.VideoName(in.Object)
	if in.Bucket == "" || videoName == "" {
		outcome = "invalid_input"
		return port.TranscodeOutput{}, fmt.Errorf("%w: %q in bucket %q", ErrObjectNotFound, in.Object, in.Bucket)
	}

	workspace, err := s.createWorkspace()
	if err != nil {
		outcome = "workspace_failure"
		return port.TranscodeOutput{}, err
	}
	defer func() {
		if rmErr := os.RemoveAll(workspace); rmErr != nil {
			logger.Warnf(ctx, "failed to remove workspace %q: %v", workspace, rmErr)
		}
	}()

	// an extensionless source is named like its output directory
	srcDir := filepath.Join(workspace, "src")
	if err := os.Mkdir(srcDir, 0o700); err != nil {
		outcome = "workspace_failure"
		return port.TranscodeOutput{}, fmt.Errorf("create workspace: %w", err)
	}
	localSource := filepath.Join(srcDir, path.Base(in.Object))
	if err := s.strg.DownloadFile(ctx, in.Bucket, in.Object, localSource); err != nil {
		outcome = "download_failure"
		return port.TranscodeOutput{}, fmt.Errorf("download %s/%s: %w", in.Bucket, in.Object, err)
	}

	outputDir := filepath.Join(workspace, "out", videoName)
	logger.Infof(ctx, "🚀 transcoding %s/%s (reencode=%t)", in.Bucket, in.Object, in.Reencode)
	playlistPath, err := s.tc.Run(ctx, localSource, outputDir, in.Reencode)
	if err == nil {
		err = checkOutput(playlistPath, outputDir)
	}
	if err != nil {
		outcome = "transcode_failure"
		return port.TranscodeOutput{}, fmt.Errorf("%w: %w", ErrTranscodeFailure, err)
	}

	files, err := s.uploadOutput(ctx, outputDir, videoName)
	if err != nil {
		outcome = "upload_failure"
		return port.TranscodeOutput{}, err
	}

	logger.Infof(ctx, "✅ transcoded %s/%s into %d file(s) under %q", in.Bucket, in.Object, len(files), videoName+"/")
	return port.TranscodeOutput{Video: videoName, Files: files}, nil
}

// createWorkspace makes a fresh directory and fails if it already exists.
func (s *transcodeRunnerSrv) createWorkspace() (string, error) {
	parent := s.cfg.WorkDir
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "tmp_"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// checkOutput fails when the playlist lists a segment missing from outputDir.
func checkOutput(playlistPath, outputDir string) error {
	raw, err := os.ReadFile(playlistPath)
	if err != nil {
		return fmt.Errorf("read playlist: %w", err)
	}
	for _, seg := range playlist.Segments(string(raw)) {
		if _, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(seg))); err != nil {
			return fmt.Errorf("playlist references missing segment %q", seg)
		}
	}
	return nil
}

func (s *transcodeRunnerSrv) uploadOutput(ctx context.Context, outputDir, videoName string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}
		key := videoName + "/" + filepath.ToSlash(rel)
		if err := s.strg.UploadFile(ctx, s.cfg.VODBucket, key, p, uploadContentType(p)); err != nil {
			return fmt.Errorf("upload %q: %w", key, err)
		}
		files = append(files, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("transcoder produced no files")
	}
	return files, nil
}
