package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a string-keyed cache the services depend on. The in-memory
// implementation serves a single instance; the Redis one lets several
// instances share entries and invalidations.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// memoryStore adapts TTLCache to Store.
type memoryStore[V any] struct {
	c *TTLCache[string, V]
}

// NewMemoryStore returns a Store backed by a TTLCache.
func NewMemoryStore[V any](defaultTTL, cleanupInterval time.Duration) Store[V] {
	return &memoryStore[V]{c: New[string, V](defaultTTL, cleanupInterval)}
}

func (s *memoryStore[V]) Get(_ context.Context, key string) (V, bool, error) {
	v, ok := s.c.Get(key)
	return v, ok, nil
}

func (s *memoryStore[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	s.c.SetWithTTL(key, value, ttl)
	return nil
}

func (s *memoryStore[V]) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

func (s *memoryStore[V]) Close() error {
	s.c.Close()
	return nil
}

// redisStore keeps JSON-encoded values under prefix+key.
type redisStore[V any] struct {
	rdb    *redis.Client
	prefix string
}

// ConnectRedis parses url, connects and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// NewRedisStore returns a Store keeping entries in Redis under prefix.
func NewRedisStore[V any](rdb *redis.Client, prefix string) Store[V] {
	return &redisStore[V]{rdb: rdb, prefix: prefix}
}

func (s *redisStore[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V

	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("redis get: %w", err)
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("decode cached value: %w", err)
	}
	return v, true, nil
}

func (s *redisStore[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore[V]) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *redisStore[V]) Close() error {
	return s.rdb.Close()
}
