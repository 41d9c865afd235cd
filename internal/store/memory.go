package store

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is the number of writes between opportunistic sweeps of
// expired entries. Sweeping on writes keeps reads cheap and bounds memory
// without a background goroutine.
const sweepEvery = 1000

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Store. It is safe for concurrent use.
//
// The clock is injectable for tests; production code uses time.Now.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	writes  int
	now     func() time.Time
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Store. Expired entries are removed on access.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl <= 0 {
		delete(m.entries, key)
		return nil
	}

	// Sweep expired entries before the write so a long-idle store does not
	// accumulate dead keys. Counter-based, same as the idle-bucket eviction
	// in the HTTP edge limiter.
	m.writes++
	if m.writes >= sweepEvery {
		now := m.now()
		for k, e := range m.entries {
			if !now.Before(e.expiresAt) {
				delete(m.entries, k)
			}
		}
		m.writes = 0
	}

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
