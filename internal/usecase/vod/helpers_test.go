package vod

import (
	"testing"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/mock"
)

const vodBucket = "vod"

func testConfig(t *testing.T) Config {
	return Config{
		VODBucket:    vodBucket,
		CacheTTL:     45 * time.Minute,
		SignedURLTTL: time.Hour,
		WorkDir:      t.TempDir(),
	}
}

func newStore() *mock.Storage {
	return &mock.Storage{NotFoundErr: ErrObjectNotFound}
}
