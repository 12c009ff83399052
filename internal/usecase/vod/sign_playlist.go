package vod

import (
	"context"
	"fmt"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/playlist"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

// SignPlaylist replaces every segment reference of raw with a presigned GET
// URL for "{videoName}/{segment}" in bucket. Either every segment is signed
// or an ErrSigningFailure is returned.
func SignPlaylist(ctx context.Context, strg port.Storage, raw, bucket, videoName string, ttl time.Duration) (string, error) {
	signed, err := playlist.Rewrite(raw, func(segment string) (string, error) {
		key := videoName + "/" + segment
		u, err := strg.GeneratePresignedDownloadURL(ctx, bucket, key, ttl)
		if err != nil {
			return "", fmt.Errorf("sign %q: %w", key, err)
		}
		return u, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailure, err)
	}
	return signed, nil
}
