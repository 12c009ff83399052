package vod

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound = errors.New("storage: object not found")
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrStorageDenied  = errors.New("storage: access denied")
	ErrInternal       = errors.New("storage: internal error")

	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrTranscodeUnavailable = errors.New("transcoding unavailable")
	ErrTranscodeFailure     = errors.New("transcoding failed")
	ErrDeadlineExceeded     = errors.New("playlist still not available after transcoding")
	ErrSigningFailure       = errors.New("could not sign playlist")
	ErrUpstreamFailure      = errors.New("upstream fetch failed")
)

// PartialDeleteError is returned when some objects of a stream could not be
// removed. The objects deleted before the failure stay deleted.
type PartialDeleteError struct {
	Failed []string
	Err    error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("failed to delete %d object(s): %s", len(e.Failed), strings.Join(e.Failed, ", "))
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }
