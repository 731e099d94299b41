// Package cache provides the time-bounded store that sits in front of every
// external market-data source. Entries are valid for a fixed TTL; expired
// entries are treated as absent and never actively evicted.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the cache validity window applied when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Store is the capability handed to fetchers. Implementations must be safe
// for concurrent use; last-writer-wins on racing Sets is acceptable.
type Store interface {
	// Get unmarshals the cached value for key into dest and reports whether
	// a valid (non-expired) entry was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key, stamping it with the current time.
	Set(ctx context.Context, key string, value any) error
}
