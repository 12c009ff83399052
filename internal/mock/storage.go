package mock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/port"
)

// Storage is an in-memory object store for tests. It is safe for concurrent use.
type Storage struct {
	mu sync.Mutex

	// stored values, keyed by "bucket/key"
	Objects map[string][]byte

	// returned for absent objects; tests usually set the usecase sentinel
	NotFoundErr error

	// captured inputs
	ObjectKey   string
	TTL         time.Duration
	Uploaded    map[string]string // "bucket/key" -> content type
	RemovedKeys []string

	// errors
	InitBucketErr    error
	PresignErr       error
	PresignErrForKey string // fail only this key when set
	FileExistsErr    error
	ReadErr          error
	DownloadErr      error
	UploadErr        error
	ListErr          error
	RemoveErrs       map[string]error

	// call counters
	InitBucketCalled bool
	PresignCalls     int
	FileExistsCalls  int
	ReadCalls        int
	DownloadCalls    int
	UploadCalls      int
	ListCalls        int
	RemoveCalls      int
}

// Put stores an object.
func (m *Storage) Put(bucket, key, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Objects == nil {
		m.Objects = map[string][]byte{}
	}
	m.Objects[bucket+"/"+key] = []byte(content)
}

func (m *Storage) notFound(bucket, key string) error {
	if m.NotFoundErr != nil {
		return m.NotFoundErr
	}
	return fmt.Errorf("object %s/%s not found", bucket, key)
}

func (m *Storage) InitBucket(bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitBucketCalled = true
	return m.InitBucketErr
}

func (m *Storage) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PresignCalls++
	m.ObjectKey = fileKey
	m.TTL = expiry
	if m.PresignErr != nil && (m.PresignErrForKey == "" || m.PresignErrForKey == fileKey) {
		return "", m.PresignErr
	}
	return fmt.Sprintf("https://signed.example.com/%s/%s?expires=%d", bucket, fileKey, int(expiry.Seconds())), nil
}

func (m *Storage) FileExists(ctx context.Context, bucket, fileKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FileExistsCalls++
	if m.FileExistsErr != nil {
		return false, m.FileExistsErr
	}
	_, ok := m.Objects[bucket+"/"+fileKey]
	return ok, nil
}

func (m *Storage) ReadFile(ctx context.Context, bucket, fileKey string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadCalls++
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	data, ok := m.Objects[bucket+"/"+fileKey]
	if !ok {
		return nil, m.notFound(bucket, fileKey)
	}
	return append([]byte(nil), data...), nil
}

func (m *Storage) DownloadFile(ctx context.Context, bucket, fileKey, localPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DownloadCalls++
	if m.DownloadErr != nil {
		return m.DownloadErr
	}
	data, ok := m.Objects[bucket+"/"+fileKey]
	if !ok {
		return m.notFound(bucket, fileKey)
	}
	return os.WriteFile(localPath, data, 0o600)
}

func (m *Storage) UploadFile(ctx context.Context, bucket, fileKey, localPath, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UploadCalls++
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	if m.Objects == nil {
		m.Objects = map[string][]byte{}
	}
	if m.Uploaded == nil {
		m.Uploaded = map[string]string{}
	}
	m.Objects[bucket+"/"+fileKey] = data
	m.Uploaded[bucket+"/"+fileKey] = contentType
	return nil
}

func (m *Storage) ListFiles(ctx context.Context, bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var keys []string
	for full := range m.Objects {
		key, ok := strings.CutPrefix(full, bucket+"/")
		if ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *Storage) RemoveFiles(ctx context.Context, bucket string, fileKeys []string) []port.RemoveResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls++
	results := make([]port.RemoveResult, 0, len(fileKeys))
	for _, k := range fileKeys {
		if err := m.RemoveErrs[k]; err != nil {
			results = append(results, port.RemoveResult{Key: k, Err: err})
			continue
		}
		if _, ok := m.Objects[bucket+"/"+k]; !ok {
			results = append(results, port.RemoveResult{Key: k, Err: errors.New("no such object")})
			continue
		}
		delete(m.Objects, bucket+"/"+k)
		m.RemovedKeys = append(m.RemovedKeys, k)
		results = append(results, port.RemoveResult{Key: k})
	}
	return results
}

// Has reports whether an object is stored.
func (m *Storage) Has(bucket, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[bucket+"/"+key]
	return ok
}
