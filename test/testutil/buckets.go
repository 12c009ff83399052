package testutil

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
)

type TestBuckets struct {
	Client  *minio.Client
	Cleanup func() error
}

func SetupTestBuckets(endpoint string, buckets ...string) (*TestBuckets, error) {
	ctx := context.Background()
	client, err := NewMinioClient(endpoint)
	if err != nil {
		return nil, err
	}

	// (re)create each bucket
	for _, b := range buckets {
		// ignore any errors here (e.g., bucket not found)
		_ = client.RemoveBucket(ctx, b)
		if err := client.MakeBucket(ctx, b, minio.MakeBucketOptions{}); err != nil {
			// if it already exists, skip; otherwise fail
			exists, err2 := client.BucketExists(ctx, b)
			if err2 != nil || !exists {
				return nil, fmt.Errorf("could not create bucket %q: %w", b, err)
			}
		}
	}

	cleanup := func() error {
		// remove all objects and then the buckets themselves
		for _, b := range buckets {
			for obj := range client.ListObjects(ctx, b, minio.ListObjectsOptions{Recursive: true}) {
				if obj.Err != nil {
					continue
				}
				_ = client.RemoveObject(ctx, b, obj.Key, minio.RemoveObjectOptions{})
			}
			if err := client.RemoveBucket(ctx, b); err != nil {
				return fmt.Errorf("could not remove bucket %q: %w", b, err)
			}
		}
		return nil
	}

	return &TestBuckets{
		Client:  client,
		Cleanup: cleanup,
	}, nil
}

// PutObject stores content under bucket/key.
func (tb *TestBuckets) PutObject(ctx context.Context, bucket, key string, content []byte, contentType string) error {
	_, err := tb.Client.PutObject(ctx, bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Keys lists every object key under prefix.
func (tb *TestBuckets) Keys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	for obj := range tb.Client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
