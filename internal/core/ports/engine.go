// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/csspost/internal/core/domain"
)

// Plugin is one step of a transformation chain.
//
//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks
type Plugin interface {
	// Name identifies the plugin. It participates in the cache scope of a processor.
	Name() string
	// Transform rewrites a stylesheet.
	Transform(ctx context.Context, css []byte) ([]byte, error)
}

// CacheKeyer is implemented by plugins whose output depends on their options.
// The key replaces the plugin name in cache scopes.
type CacheKeyer interface {
	CacheKey() string
}

// MapOptions enables source map generation.
type MapOptions struct {
	// Prev is the map of the input, chained into the generated map.
	Prev *domain.SourceMap
}

// ProcessOptions are passed to the engine for one stylesheet.
type ProcessOptions struct {
	// Map is nil when source maps are disabled.
	Map *MapOptions
	// From is the name of the input asset.
	From string
	// To is the name of the output asset.
	To string
}

// Result is the output of a transformation chain.
type Result struct {
	CSS []byte
	// Map is nil unless ProcessOptions.Map was set.
	Map *domain.SourceMap
}

// Engine executes a plugin chain against a stylesheet.
type Engine interface {
	Process(ctx context.Context, plugins []Plugin, css []byte, opts ProcessOptions) (*Result, error)
}
