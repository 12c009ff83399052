package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fhuszti/vod-ms-go/internal/config"
	workerHandler "github.com/fhuszti/vod-ms-go/internal/handler/worker"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/storage"
	"github.com/fhuszti/vod-ms-go/internal/task"
	"github.com/fhuszti/vod-ms-go/internal/transcoder"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
	"github.com/hibiken/asynq"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if !cfg.RedisEnabled() {
		logger.Error(ctx, "⚠️  REDIS_HOST must be set to run the worker")
		os.Exit(1)
	}

	logger.Init("vod-worker")

	strg := initStorage(cfg)
	if err := strg.InitBucket(cfg.VODBucket); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.VODBucket, err)
		os.Exit(1)
	}

	// no metrics endpoint on the worker
	runnerSvc := vod.NewTranscodeRunner(strg, transcoder.New(cfg.FFmpegPath), vod.Config{
		VODBucket:    cfg.VODBucket,
		CacheTTL:     cfg.CacheTTL,
		SignedURLTTL: cfg.SignedURLTTL,
		WorkDir:      cfg.TranscodeWorkDir,
	}, nil)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeTranscodeAsset, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseTranscodeAssetPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.TranscodeAssetHandler(ctx, p, runnerSvc)
	})

	runWorker(ctx, mux, cfg)
}

func initStorage(cfg *config.Settings) port.Storage {
	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(context.Background(), "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return strg
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings) {
	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency:     cfg.WorkerConcurrency,
		ShutdownTimeout: cfg.TranscodeTimeout,
	})

	if err := srv.Start(mux); err != nil {
		logger.Errorf(ctx, "❌  Worker failed: %v", err)
		os.Exit(1)
	}
	logger.Infof(ctx, "🚀 Worker started with %d slots", cfg.WorkerConcurrency)

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// stop accepting new tasks, finish in-flight ones within ShutdownTimeout
	srv.Shutdown()
	logger.Info(ctx, "✅  Worker gracefully stopped")
}
