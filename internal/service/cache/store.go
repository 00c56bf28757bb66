// Package cache provides the session-scoped memoization store for the scout
// pipeline. Keys are stable input-derived strings; there is no invalidation
// policy beyond process lifetime. The default backend is an in-process map; a
// Redis backend is available when results should be shared across processes.
package cache

import (
	"context"
	"encoding/json"
	"sync"
)

// Store maps cache keys to JSON-encodable results. Get reports found=false on
// a miss; a decode failure is an error, not a miss.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Close() error
}

// MemoryStore is the session-default backend. Values are kept JSON-encoded so
// both backends round-trip identically.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	data, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error {
	return nil
}
