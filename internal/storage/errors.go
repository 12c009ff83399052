package storage

import (
	"fmt"

	"github.com/fhuszti/vod-ms-go/internal/usecase/vod"
	"github.com/minio/minio-go/v7"
)

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchObject":
		return vod.ErrObjectNotFound
	case "NoSuchBucket":
		return vod.ErrBucketNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return vod.ErrStorageDenied
	default:
		// catch everything else
		return fmt.Errorf("%w: %v", vod.ErrInternal, err)
	}
}
