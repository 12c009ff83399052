package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fhuszti/vod-ms-go/internal/config"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/storage"
	"github.com/fhuszti/vod-ms-go/internal/task"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	bucket := flag.String("bucket", cfg.BacklogSourceBucket, "bucket holding the source videos")
	dryRun := flag.Bool("dry-run", false, "log the jobs instead of submitting them")
	flag.Parse()

	logger.Init("vod-transcode-backlog")

	if *bucket == "" {
		logger.Error(ctx, "❌  No source bucket: set BACKLOG_SOURCE_BUCKET or pass -bucket")
		os.Exit(1)
	}
	if !*dryRun {
		if err := cfg.ValidateSubmitter(); err != nil {
			logger.Errorf(ctx, "❌  Configuration error: %v", err)
			os.Exit(1)
		}
	}

	strg, err := storage.NewStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	submitter, closeFn := initSubmitter(cfg, *dryRun)
	defer closeFn()

	backlogSvc := vod.NewBacklogTranscoder(strg, submitter, vod.Config{VODBucket: cfg.VODBucket})
	n, err := backlogSvc.TranscodeBacklog(ctx, *bucket)
	if err != nil {
		logger.Errorf(ctx, "❌  Backlog transcoding failed: %v", err)
		closeFn()
		os.Exit(1)
	}
	logger.Infof(ctx, "✅  Backlog transcoding completed, %d jobs submitted", n)
}

func initSubmitter(cfg *config.Settings, dryRun bool) (port.TranscodeSubmitter, func()) {
	switch {
	case dryRun:
		return task.NewNoopSubmitter(), func() {}
	case cfg.TranscodeMode == config.TranscodeModeQueue:
		d := task.NewDispatcher(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		return d, func() { _ = d.Close() }
	default:
		client := &http.Client{Timeout: cfg.TranscodeTimeout}
		return task.NewHTTPSubmitter(cfg.TranscodeAPIURL, cfg.TranscodeAPIKey, client), func() {}
	}
}
