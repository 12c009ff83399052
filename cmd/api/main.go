package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/cache"
	"github.com/fhuszti/vod-ms-go/internal/config"
	"github.com/fhuszti/vod-ms-go/internal/handler/api"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/metrics"
	cMiddleware "github.com/fhuszti/vod-ms-go/internal/middleware"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/renderer"
	"github.com/fhuszti/vod-ms-go/internal/storage"
	"github.com/fhuszti/vod-ms-go/internal/task"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateSubmitter()
	}
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init("vod-api")

	m := metrics.New()
	r := initRouter(ctx, cfg, m)

	strg := initStorage(ctx, cfg)
	if err := strg.InitBucket(cfg.VODBucket); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.VODBucket, err)
		os.Exit(1)
	}

	var closers []io.Closer
	var ca port.Cache
	if cfg.RedisEnabled() {
		c := cache.NewCache(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, c)
		ca = c
		logger.Info(ctx, "✅  Redis cache enabled")
	} else {
		ca = cache.NewNoop()
		logger.Warn(ctx, "⚠️  Redis not configured, caching is disabled")
	}

	submitter, closer := initSubmitter(ctx, cfg)
	if closer != nil {
		closers = append(closers, closer)
	}

	vodCfg := vod.Config{
		VODBucket:    cfg.VODBucket,
		CacheTTL:     cfg.CacheTTL,
		SignedURLTTL: cfg.SignedURLTTL,
		WorkDir:      cfg.TranscodeWorkDir,
	}

	resolverSvc := vod.NewPlaylistResolver(strg, ca, submitter, vodCfg, m)
	rendererSvc := renderer.NewHTTPRenderer()
	thumbnailSvc := vod.NewThumbnailSigner(strg, ca, &http.Client{Timeout: 30 * time.Second}, vodCfg, m)

	r.With(cMiddleware.WithVideoName()).
		Get("/video/{name}/playlist.m3u8", api.GetVideoPlaylistHandler(rendererSvc, resolverSvc, cfg.VODBucket))
	r.With(cMiddleware.WithAsset(api.PlaylistResource, api.ThumbnailResource)).
		Get("/stream/{bucket}/*", api.ResourceHandler(map[string]http.HandlerFunc{
			api.PlaylistResource:  api.GetStreamPlaylistHandler(rendererSvc, resolverSvc),
			api.ThumbnailResource: api.GetThumbnailHandler(thumbnailSvc),
		}))
	r.With(cMiddleware.WithAsset(api.ThumbnailResource)).
		Get("/asset/{bucket}/*", api.GetThumbnailURLHandler(thumbnailSvc))

	invalidatorSvc := vod.NewCacheInvalidator(ca)
	deleterSvc := vod.NewStreamDeleter(strg, ca, vodCfg)
	r.Group(func(r chi.Router) {
		r.Use(cMiddleware.WithAPIKey(cfg.TranscodeAPIKey))

		r.With(cMiddleware.WithVideoName()).
			Delete("/cache/video/{name}", api.DeleteVideoCacheHandler(invalidatorSvc))
		r.With(cMiddleware.WithImagePath()).
			Delete("/cache/img/*", api.DeleteImageCacheHandler(invalidatorSvc))
		r.With(cMiddleware.WithAsset(api.PlaylistResource)).
			Delete("/cache/stream/{bucket}/*", api.DeleteStreamCacheHandler(invalidatorSvc))
		r.With(cMiddleware.WithAsset(api.PlaylistResource)).
			Delete("/stream/{bucket}/*", api.DeleteStreamHandler(deleterSvc))
	})

	listenRouter(ctx, r, cfg, closers)
}

func initRouter(ctx context.Context, cfg *config.Settings, m *metrics.Metrics) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match", task.APIKeyHeader},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         300,
	}))
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

// initSubmitter picks how lazy transcodes reach the transcode runner.
func initSubmitter(ctx context.Context, cfg *config.Settings) (port.TranscodeSubmitter, io.Closer) {
	if cfg.TranscodeMode == config.TranscodeModeQueue {
		d := task.NewDispatcher(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		logger.Info(ctx, "✅  Lazy transcodes go through the job queue")
		return d, d
	}

	client := &http.Client{Timeout: cfg.TranscodeTimeout}
	logger.Infof(ctx, "✅  Lazy transcodes go to %s", cfg.TranscodeAPIURL)
	return task.NewHTTPSubmitter(cfg.TranscodeAPIURL, cfg.TranscodeAPIKey, client), nil
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, closers []io.Closer) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
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

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warnf(ctx, "Client close error: %v", err)
		}
	}
}
