package testutil

import (
	"context"

	workerHandler "github.com/fhuszti/vod-ms-go/internal/handler/worker"
	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/task"
	"github.com/hibiken/asynq"
)

// StartWorker starts an asynq worker processing transcode tasks.
// It returns a function to gracefully shut down the worker.
func StartWorker(runner port.TranscodeRunner, redisAddr string) func() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeTranscodeAsset, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseTranscodeAssetPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.TranscodeAssetHandler(ctx, p, runner)
	})

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 2})
	if err := srv.Start(mux); err != nil {
		logger.Errorf(context.Background(), "worker stopped: %v", err)
	}

	return func() {
		srv.Shutdown()
	}
}
