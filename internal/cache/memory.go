package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store used when redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time

	// Statistics (accessed atomically)
	hits   uint64
	misses uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !m.now().Before(e.expiresAt) {
		atomic.AddUint64(&m.misses, 1)
		if ok {
			m.mu.Lock()
			// re-check: a concurrent Set may have refreshed the entry
			if cur, still := m.entries[key]; still && !m.now().Before(cur.expiresAt) {
				delete(m.entries, key)
			}
			m.mu.Unlock()
		}
		return "", false, nil
	}
	atomic.AddUint64(&m.hits, 1)
	return e.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// Stats returns hit and miss counters.
func (m *MemoryStore) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&m.hits), atomic.LoadUint64(&m.misses)
}
