package cache

import (
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

// New creates the backend selected by s.
func New(s domain.CacheSettings) (ports.Cache, error) {
	switch s.Backend {
	case domain.CacheNone:
		return None{}, nil
	case domain.CacheMemory:
		return NewMemory(), nil
	case "", domain.CacheDisk:
		dir := s.Path
		if dir == "" {
			dir = domain.DefaultCachePath()
		}
		return NewDisk(dir), nil
	case domain.CacheRedis:
		if s.RedisAddr == "" {
			return nil, zerr.With(zerr.New("redis address is required"), "backend", string(s.Backend))
		}
		return NewRedis(s), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownCacheBackend, "cannot create cache"), "backend", string(s.Backend))
	}
}

// Factory creates a cache backend once the project settings are known.
type Factory func(s domain.CacheSettings) (ports.Cache, error)
