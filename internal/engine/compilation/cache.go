package compilation

import (
	"context"
	"sync"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
)

// Cache fronts a cache backend with an in-process layer that lives as long as the Compiler,
// so rebuilds in watch mode avoid backend round trips for unchanged sources.
type Cache struct {
	backend ports.Cache

	mu     sync.RWMutex
	memory map[itemKey]domain.CacheEntry
}

type itemKey struct {
	scope string
	key   string
	etag  string
}

// NewCache creates a facade over backend. A nil backend disables caching.
func NewCache(backend ports.Cache) *Cache {
	return &Cache{
		backend: backend,
		memory:  make(map[itemKey]domain.CacheEntry),
	}
}

// Etag is the lazily computed content hash of a source.
type Etag struct {
	source *domain.Source
}

// LazyEtag returns the etag of src. The hash is computed on first use and memoised on the source.
func (c *Cache) LazyEtag(src *domain.Source) Etag {
	return Etag{source: src}
}

// String returns the hash.
func (e Etag) String() string {
	return e.source.Hash()
}

// ItemCache addresses one cache entry.
type ItemCache struct {
	cache *Cache
	scope string
	key   string
	etag  Etag
}

// Item returns the entry handle for (scope, key) under etag.
func (c *Cache) Item(scope, key string, etag Etag) *ItemCache {
	return &ItemCache{cache: c, scope: scope, key: key, etag: etag}
}

func (i *ItemCache) memoryKey() itemKey {
	return itemKey{scope: i.scope, key: i.key, etag: i.etag.String()}
}

// Get returns the stored entry, or nil on a miss.
func (i *ItemCache) Get(ctx context.Context) (*domain.CacheEntry, error) {
	c := i.cache
	if c.backend == nil {
		return nil, nil
	}
	k := i.memoryKey()

	c.mu.RLock()
	m, ok := c.memory[k]
	c.mu.RUnlock()
	if ok {
		return &m, nil
	}

	entry, err := c.backend.Get(ctx, k.scope, k.key, k.etag)
	if err != nil || entry == nil {
		return nil, err
	}
	c.remember(k, *entry)
	return entry, nil
}

// Store saves entry under the handle's etag.
func (i *ItemCache) Store(ctx context.Context, entry domain.CacheEntry) error {
	c := i.cache
	if c.backend == nil {
		return nil
	}
	k := i.memoryKey()
	if err := c.backend.Store(ctx, k.scope, k.key, k.etag, entry); err != nil {
		return err
	}
	c.remember(k, entry)
	return nil
}

func (c *Cache) remember(key itemKey, entry domain.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory[key] = entry
}
