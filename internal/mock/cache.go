package mock

import (
	"context"
	"sync"
	"time"

	"github.com/fhuszti/vod-ms-go/internal/model"
)

// Cache is an in-memory port.Cache for tests. It is safe for concurrent use.
type Cache struct {
	mu sync.Mutex

	// stored values, keyed by the full cache key
	Entries map[string]string
	TTLs    map[string]time.Duration

	// errors
	GetErr    error
	SetErr    error
	DeleteErr error

	// call counters
	GetCalls    int
	SetCalls    int
	DeleteCalls int
}

func (m *Cache) Get(ctx context.Context, key model.CacheKey) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.Entries[key.String()]
	return v, ok, nil
}

func (m *Cache) Set(ctx context.Context, key model.CacheKey, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Entries == nil {
		m.Entries = map[string]string{}
		m.TTLs = map[string]time.Duration{}
	}
	m.Entries[key.String()] = value
	m.TTLs[key.String()] = ttl
	return nil
}

func (m *Cache) Delete(ctx context.Context, key model.CacheKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return false, m.DeleteErr
	}
	_, ok := m.Entries[key.String()]
	delete(m.Entries, key.String())
	return ok, nil
}

// Value returns a stored entry.
func (m *Cache) Value(key model.CacheKey) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Entries[key.String()]
	return v, ok
}
