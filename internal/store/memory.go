package store

import (
	"context"
	"sync"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/record"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[record.Kind][]record.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[record.Kind][]record.Record)}
}

func (m *MemoryStore) Name() string { return config.StorageMemory }

func (m *MemoryStore) Read(_ context.Context, kind record.Kind) ([]record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(kind, m.collections[kind]), nil
}

func (m *MemoryStore) Write(_ context.Context, kind record.Kind, records []record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[kind] = cloneAll(kind, records)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, kinds []record.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range kinds {
		delete(m.collections, k)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
