package cache

import (
	"context"

	"go.trai.ch/csspost/internal/core/domain"
)

// None implements ports.Cache without storing anything.
type None struct{}

// Get always misses.
func (None) Get(context.Context, string, string, string) (*domain.CacheEntry, error) {
	return nil, nil
}

// Store discards the entry.
func (None) Store(context.Context, string, string, string, domain.CacheEntry) error {
	return nil
}
