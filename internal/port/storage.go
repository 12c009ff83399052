package port

import (
	"context"
	"time"
)

// RemoveResult reports the outcome of deleting one object in a batch.
type RemoveResult struct {
	Key string
	Err error
}

// Storage defines object storage operations.
type Storage interface {
	InitBucket(bucket string) error
	GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error)
	FileExists(ctx context.Context, bucket, fileKey string) (bool, error)
	ReadFile(ctx context.Context, bucket, fileKey string) ([]byte, error)
	DownloadFile(ctx context.Context, bucket, fileKey, localPath string) error
	UploadFile(ctx context.Context, bucket, fileKey, localPath, contentType string) error
	ListFiles(ctx context.Context, bucket, prefix string) ([]string, error)
	RemoveFiles(ctx context.Context, bucket string, fileKeys []string) []RemoveResult
}
