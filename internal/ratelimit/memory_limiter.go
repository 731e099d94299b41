package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter is the process-local fallback backend. Each caller key owns
// a slice of request stamps trimmed to the active window on every check.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	log     *slog.Logger
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		log:     log,
	}
}

// Check trims the caller's window and admits the request when capacity
// remains. Rejection is reported through the Result, not as an error.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	stamps := trimBefore(m.windows[key], windowStart)

	allowed := len(stamps) < limit
	if allowed {
		stamps = append(stamps, now)
	}
	m.windows[key] = stamps

	remaining := limit - len(stamps)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   windowStart.Add(window),
	}, nil
}

// Cleanup drops caller keys whose latest request is older than maxAge.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, stamps := range m.windows {
		if len(stamps) == 0 || stamps[len(stamps)-1].Before(cutoff) {
			delete(m.windows, key)
			removed++
		}
	}

	if removed > 0 {
		m.log.Debug("idle quota windows dropped", slog.Int("keys", removed))
	}
}

// trimBefore keeps stamps at or after windowStart, reusing the backing
// array.
func trimBefore(stamps []time.Time, windowStart time.Time) []time.Time {
	drop := 0
	for drop < len(stamps) && stamps[drop].Before(windowStart) {
		drop++
	}

	if drop == 0 {
		return stamps
	}

	copy(stamps, stamps[drop:])
	return stamps[:len(stamps)-drop]
}
