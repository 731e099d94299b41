package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/budgetpilot/budgetpilot/pkg/metrics"
)

// RedisStore is the Redis-backed Store implementation. Expiry is delegated
// to Redis TTLs, which gives the same valid-iff-younger-than-TTL semantics
// as the in-memory store while surviving process restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore wraps client as a market-data cache with the provided TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: "market:",
	}
}

// Get fetches and decodes the cached value if present.
func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheLookup(false)
			return false, nil
		}
		return false, fmt.Errorf("get cached value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached value for %q: %w", key, err)
	}

	metrics.RecordCacheLookup(true)
	return true, nil
}

// Set stores the value with the store TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	if s == nil || s.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}

	if err := s.client.Set(ctx, s.prefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("set cached value: %w", err)
	}

	return nil
}

var _ Store = (*RedisStore)(nil)
