package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idle quota keys expire through Redis TTLs eventually; the cleaner just
// reclaims them sooner so SCAN passes stay short on busy deployments.
const staleAfter = 5 * time.Minute

// Cleaner sweeps stale quota state on a fixed interval: emptied sorted sets
// in Redis and idle caller windows in the fallback limiter.
type Cleaner struct {
	client   *redis.Client
	fallback *MemoryLimiter
	log      *slog.Logger
	interval time.Duration
}

func NewCleaner(client *redis.Client, fallback *MemoryLimiter, log *slog.Logger, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		client:   client,
		fallback: fallback,
		log:      log,
		interval: interval,
	}
}

// Run loops until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("quota cleaner stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			if c.fallback != nil {
				c.fallback.Cleanup(staleAfter)
			}
			if c.client != nil {
				c.sweepRedis(ctx)
			}
		}
	}
}

func (c *Cleaner) sweepRedis(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	const scanCount = 100

	cutoff := time.Now().Add(-staleAfter)
	var cursor uint64
	removed := 0

	for {
		keys, next, err := c.client.Scan(ctx, cursor, redisKeyPrefix+"*", scanCount).Result()
		if err != nil {
			c.log.Error("quota key scan failed", slog.Any("error", err))
			return
		}

		for _, key := range keys {
			if c.sweepKey(ctx, key, cutoff) {
				removed++
			}
		}

		if next == 0 {
			break
		}
		cursor = next
	}

	if removed > 0 {
		c.log.Info("stale quota keys removed", slog.Int("keys", removed))
	}
}

// sweepKey trims stamps older than the cutoff and deletes the key once its
// sorted set is empty. Reports whether the key was deleted.
func (c *Cleaner) sweepKey(ctx context.Context, key string, cutoff time.Time) bool {
	pipe := c.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+formatMillis(cutoff))
	cardCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("quota key trim failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	count, err := cardCmd.Result()
	if err != nil || count > 0 {
		return false
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("quota key delete failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	return true
}
