package domain

import "time"

// CacheBackend names a cache implementation.
type CacheBackend string

const (
	// CacheNone disables caching.
	CacheNone CacheBackend = "none"
	// CacheMemory keeps entries for the lifetime of the process.
	CacheMemory CacheBackend = "memory"
	// CacheDisk persists entries under the state directory.
	CacheDisk CacheBackend = "disk"
	// CacheRedis stores entries in a Redis server.
	CacheRedis CacheBackend = "redis"
)

// CacheSettings configures the cache backend.
type CacheSettings struct {
	Backend CacheBackend
	// Path is the directory of the disk backend.
	Path string
	// RedisAddr is the host:port of the redis backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// TTL bounds the lifetime of redis entries. Zero keeps them forever.
	TTL time.Duration
}

// ProjectSettings are the build-wide settings of a csspost project.
type ProjectSettings struct {
	// Input is the directory assets are read from.
	Input string
	// Output is the directory processed assets are written to.
	Output string
	// SourceMaps enables reading, carrying and writing source maps.
	SourceMaps bool
	Cache      CacheSettings
}

// DefaultProjectSettings returns the settings used for keys missing from the config file.
func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{
		Input:  "dist",
		Output: "dist",
		Cache: CacheSettings{
			Backend: CacheDisk,
			Path:    DefaultCachePath(),
		},
	}
}
