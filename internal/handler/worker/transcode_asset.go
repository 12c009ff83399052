package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/task"
	"github.com/hibiken/asynq"
)

// TranscodeAssetHandler handles a transcode-asset task.
// It converts the incoming task payload to the input expected by
// the transcode runner and delegates the call. Failures are never retried.
func TranscodeAssetHandler(ctx context.Context, p task.TranscodeAssetPayload, svc port.TranscodeRunner) error {
	if p.AssetBucket == "" || p.AssetObject == "" {
		err := fmt.Errorf("invalid transcode payload %+v", p)
		logger.Errorf(ctx, "❌  %v", err)
		return errors.Join(err, asynq.SkipRetry)
	}

	in := p.Input()
	out, err := svc.RunTranscode(ctx, in)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to transcode %s/%s: %v", in.Bucket, in.Object, err)
		return errors.Join(err, asynq.SkipRetry)
	}

	logger.Infof(ctx, "✅  Successfully transcoded %s/%s into %d files of video %q", in.Bucket, in.Object, len(out.Files), out.Video)
	return nil
}
