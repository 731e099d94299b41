package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/budgetpilot/budgetpilot/pkg/metrics"
)

type entry struct {
	payload  []byte
	storedAt time.Time
}

// MemoryStore is the in-process Store implementation. Values are kept as
// JSON payloads so Get behaves identically to the Redis-backed store.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry

	// now is swappable for TTL tests.
	now func() time.Time
}

// NewMemoryStore creates an in-memory store with the provided TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value if one exists and has not expired. Expired
// entries stay in the map; the time check on read is the whole policy.
func (s *MemoryStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.now().Sub(e.storedAt) >= s.ttl {
		metrics.RecordCacheLookup(false)
		return false, nil
	}

	if err := json.Unmarshal(e.payload, dest); err != nil {
		return false, fmt.Errorf("decode cached value for %q: %w", key, err)
	}

	metrics.RecordCacheLookup(true)
	return true, nil
}

// Set stores value under key, replacing any previous entry.
func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}

	s.mu.Lock()
	s.entries[key] = entry{payload: payload, storedAt: s.now()}
	s.mu.Unlock()

	return nil
}

var _ Store = (*MemoryStore)(nil)
