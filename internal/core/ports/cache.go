package ports

import (
	"context"

	"go.trai.ch/csspost/internal/core/domain"
)

// Cache is a content-addressed store of transformed assets.
// Entries are addressed by (scope, key, etag), so several etags of one key may be stored at once.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type Cache interface {
	// Get returns the entry stored for (scope, key) under etag.
	// Returns nil, nil on a miss.
	Get(ctx context.Context, scope, key, etag string) (*domain.CacheEntry, error)

	// Store saves entry for (scope, key) under etag. Entries under other etags are kept.
	Store(ctx context.Context, scope, key, etag string, entry domain.CacheEntry) error
}
