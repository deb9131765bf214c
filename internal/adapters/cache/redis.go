package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/zerr"
)

// KeyPrefix namespaces every key written by the Redis backend.
const KeyPrefix = "csspost"

// Redis implements ports.Cache on a Redis server. Values are JSON records.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis cache from settings. The connection is established lazily.
func NewRedis(s domain.CacheSettings) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       s.RedisDB,
	}), s.TTL)
}

// NewRedisWithClient creates a Redis cache on an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Key returns the Redis key of (scope, key, etag).
func Key(scope, key, etag string) string {
	return KeyPrefix + ":" + scope + ":" + key + ":" + etag
}

// Get returns the entry stored for (scope, key, etag).
func (r *Redis) Get(ctx context.Context, scope, key, etag string) (*domain.CacheEntry, error) {
	k := Key(scope, key, etag)
	val, err := r.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "key", k)
	}

	var rec record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheUnmarshalFailed.Error()), "key", k)
	}
	if rec.Scope != scope || rec.Key != key || rec.Etag != etag {
		return nil, nil
	}
	return &rec.Entry, nil
}

// Store writes the entry for (scope, key, etag) with the configured TTL.
func (r *Redis) Store(ctx context.Context, scope, key, etag string, entry domain.CacheEntry) error {
	data, err := json.Marshal(record{Scope: scope, Key: key, Etag: etag, Entry: entry})
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheMarshalFailed.Error())
	}

	k := Key(scope, key, etag)
	if err := r.client.Set(ctx, k, data, r.ttl).Err(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "key", k)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
