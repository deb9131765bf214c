// Package cache implements the cache backends of processed assets.
package cache

import (
	"context"
	"sync"

	"go.trai.ch/csspost/internal/core/domain"
)

type entryKey struct {
	scope string
	key   string
	etag  string
}

type record struct {
	Scope string            `json:"scope"`
	Key   string            `json:"key"`
	Etag  string            `json:"etag"`
	Entry domain.CacheEntry `json:"entry"`
}

// Memory implements ports.Cache with an in-process map.
type Memory struct {
	mu      sync.RWMutex
	entries map[entryKey]record
}

// NewMemory creates an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[entryKey]record)}
}

// Get returns the entry stored for (scope, key, etag).
func (m *Memory) Get(_ context.Context, scope, key, etag string) (*domain.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.entries[entryKey{scope: scope, key: key, etag: etag}]
	if !ok {
		return nil, nil
	}
	entry := r.Entry
	return &entry, nil
}

// Store saves the entry for (scope, key, etag). Entries under other etags are kept.
func (m *Memory) Store(_ context.Context, scope, key, etag string, entry domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entryKey{scope: scope, key: key, etag: etag}] = record{Scope: scope, Key: key, Etag: etag, Entry: entry}
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
