package ports

import (
	"context"
	"io"

	"go.trai.ch/csspost/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records units of work of a build.
type Telemetry interface {
	// Record starts a vertex for a unit of work.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes the recording session.
	Close() error
}

// Vertex is one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer for informational output of the vertex.
	Stdout() io.Writer
	// Log records a message at the given level.
	Log(level domain.LogLevel, msg string)
	// Cached marks the vertex as satisfied from cache.
	Cached()
	// Complete ends the vertex, failed if err is non-nil.
	Complete(err error)
}

// Metrics counts post-processing outcomes.
type Metrics interface {
	// AssetProcessed counts a transformed asset for the scope.
	AssetProcessed(scope string, seconds float64)
	// CacheHit counts an asset restored from cache.
	CacheHit(scope string)
	// CacheMiss counts an asset not found in cache.
	CacheMiss(scope string)
	// AssetSkipped counts an asset skipped because it had no content.
	AssetSkipped(scope string)
	// AssetFailed counts an asset the engine failed on.
	AssetFailed(scope string)
}
