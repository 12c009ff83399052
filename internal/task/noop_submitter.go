package task

import (
	"context"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

// NoopSubmitter only logs the jobs it receives.
type NoopSubmitter struct{}

var _ port.TranscodeSubmitter = (*NoopSubmitter)(nil)

func NewNoopSubmitter() *NoopSubmitter { return &NoopSubmitter{} }

func (d *NoopSubmitter) SubmitTranscode(ctx context.Context, in port.TranscodeInput) error {
	logger.Infof(ctx, "dry run: would transcode %s/%s", in.Bucket, in.Object)
	return nil
}
