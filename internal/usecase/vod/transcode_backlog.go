package vod

import (
	"context"
	"path"
	"strings"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

// SourceExtensions are the object extensions picked up by the backlog scan.
var SourceExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

func isSourceVideo(key string) bool {
	return SourceExtensions[strings.ToLower(path.Ext(key))]
}

type backlogTranscoderSrv struct {
	strg      port.Storage
	submitter port.TranscodeSubmitter
	cfg       Config
}

// compile-time check: *backlogTranscoderSrv must satisfy port.BacklogTranscoder
var _ port.BacklogTranscoder = (*backlogTranscoderSrv)(nil)

// NewBacklogTranscoder constructs a BacklogTranscoder implementation.
func NewBacklogTranscoder(strg port.Storage, submitter port.TranscodeSubmitter, cfg Config) port.BacklogTranscoder {
	return &backlogTranscoderSrv{strg, submitter, cfg}
}

// TranscodeBacklog looks for source videos in sourceBucket that have no
// playlist in the VOD bucket yet and submits a transcode job for each of
// them. It returns the number of jobs submitted.
func (s *backlogTranscoderSrv) TranscodeBacklog(ctx context.Context, sourceBucket string) (int, error) {
	keys, err := s.strg.ListFiles(ctx, sourceBucket, "")
	if err != nil {
		return 0, err
	}

	submitted := 0
	for _, key := range keys {
		if !isSourceVideo(key) {
			continue
		}
		asset := model.Asset{Bucket: sourceBucket, ObjectPath: key}
		exists, err := s.strg.FileExists(ctx, s.cfg.VODBucket, asset.PlaylistObjectKey())
		if err != nil {
			logger.Warnf(ctx, "failed to check playlist of %q: %v", key, err)
			continue
		}
		if exists {
			continue
		}

		logger.Infof(ctx, "starting transcode for %s/%s", sourceBucket, key)
		if err := s.submitter.SubmitTranscode(ctx, port.TranscodeInput{Bucket: sourceBucket, Object: key}); err != nil {
			logger.Warnf(ctx, "failed to submit transcode for %s/%s: %v", sourceBucket, key, err)
			continue
		}
		submitted++
	}

	if submitted == 0 {
		logger.Info(ctx, "no videos found to transcode")
	}
	return submitted, nil
}
