package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fhuszti/vod-ms-go/internal/config"
	"github.com/fhuszti/vod-ms-go/internal/handler/api"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/metrics"
	cMiddleware "github.com/fhuszti/vod-ms-go/internal/middleware"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/storage"
	"github.com/fhuszti/vod-ms-go/internal/transcoder"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init("vod-transcoder")

	m := metrics.New()
	r := initRouter(ctx, m)

	strg := initStorage(ctx, cfg)
	if err := strg.InitBucket(cfg.VODBucket); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.VODBucket, err)
		os.Exit(1)
	}

	runnerSvc := vod.NewTranscodeRunner(strg, transcoder.New(cfg.FFmpegPath), vod.Config{
		VODBucket:    cfg.VODBucket,
		CacheTTL:     cfg.CacheTTL,
		SignedURLTTL: cfg.SignedURLTTL,
		WorkDir:      cfg.TranscodeWorkDir,
	}, m)

	r.With(cMiddleware.WithAPIKey(cfg.TranscodeAPIKey)).
		Post("/transcode", api.TranscodeHandler(runnerSvc))

	listenRouter(ctx, r, cfg)
}

func initRouter(ctx context.Context, m *metrics.Metrics) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.RequestMiddleware(m))

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	r.Get("/health", api.HealthHandler())
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return strg
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 Transcoder listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// in-flight jobs get the whole transcode timeout to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.TranscodeTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")
}
