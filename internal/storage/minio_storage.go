package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Strg struct {
	client minioClient
	read   objectReader
}

// compile-time check: *Strg must satisfy port.Storage
var _ port.Storage = (*Strg)(nil)

func NewStorage(endpoint, accessKey, secretKey string, useSSL bool) (*Strg, error) {
	logger.Info(context.Background(), "initialising minio client...")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return newStrg(client), nil
}

func newStrg(client minioClient) *Strg {
	s := &Strg{client: client}
	s.read = func(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
		obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, err
		}
		return obj, nil
	}
	return s
}

func (s *Strg) InitBucket(bucket string) error {
	ctx := context.Background()
	ok, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return mapMinioErr(err)
	}
	if !ok {
		logger.Infof(ctx, "bucket %q does not exist, creating it...", bucket)
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return mapMinioErr(err)
		}
	}
	return nil
}

func (s *Strg) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	logger.Debugf(ctx, "generating a presigned download link for file %q in bucket %q...", fileKey, bucket)

	presignedURL, err := s.client.PresignedGetObject(ctx, bucket, fileKey, expiry, url.Values{})
	if err != nil {
		return "", mapMinioErr(err)
	}
	return presignedURL.String(), nil
}

func (s *Strg) FileExists(ctx context.Context, bucket, fileKey string) (bool, error) {
	logger.Debugf(ctx, "checking if file %q exists in bucket %q...", fileKey, bucket)

	_, err := s.client.StatObject(ctx, bucket, fileKey, minio.StatObjectOptions{})
	err = mapMinioErr(err)
	if errors.Is(err, vod.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReadFile returns the whole content of an object. minio fetches objects
// lazily, so a missing key only surfaces while reading.
func (s *Strg) ReadFile(ctx context.Context, bucket, fileKey string) ([]byte, error) {
	logger.Debugf(ctx, "reading file %q from bucket %q...", fileKey, bucket)

	rc, err := s.read(ctx, bucket, fileKey)
	if err != nil {
		return nil, mapMinioErr(err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return data, nil
}

func (s *Strg) DownloadFile(ctx context.Context, bucket, fileKey, localPath string) error {
	logger.Infof(ctx, "downloading file %q from bucket %q to %q...", fileKey, bucket, localPath)

	return mapMinioErr(s.client.FGetObject(ctx, bucket, fileKey, localPath, minio.GetObjectOptions{}))
}

func (s *Strg) UploadFile(ctx context.Context, bucket, fileKey, localPath, contentType string) error {
	logger.Debugf(ctx, "uploading %q to minio://%s/%s...", localPath, bucket, fileKey)

	putOpts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.FPutObject(ctx, bucket, fileKey, localPath, putOpts); err != nil {
		return mapMinioErr(err)
	}
	return nil
}

func (s *Strg) ListFiles(ctx context.Context, bucket, prefix string) ([]string, error) {
	logger.Debugf(ctx, "listing files under %q in bucket %q...", prefix, bucket)

	var keys []string
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, mapMinioErr(obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// RemoveFiles deletes keys in one batch and returns one result per key, in
// the order given.
func (s *Strg) RemoveFiles(ctx context.Context, bucket string, fileKeys []string) []port.RemoveResult {
	logger.Infof(ctx, "removing %d file(s) from bucket %q...", len(fileKeys), bucket)

	objectsCh := make(chan minio.ObjectInfo, len(fileKeys))
	for _, k := range fileKeys {
		objectsCh <- minio.ObjectInfo{Key: k}
	}
	close(objectsCh)

	failed := make(map[string]error)
	for rErr := range s.client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed[rErr.ObjectName] = mapMinioErr(rErr.Err)
	}

	results := make([]port.RemoveResult, 0, len(fileKeys))
	for _, k := range fileKeys {
		results = append(results, port.RemoveResult{Key: k, Err: failed[k]})
	}
	return results
}
