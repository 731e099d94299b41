package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotaChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_quota_checks_total",
			Help: "API quota checks labeled by backend and decision",
		},
		[]string{"backend", "decision"},
	)
	quotaRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_quota_rejected_total",
			Help: "API requests rejected by the quota, per backend",
		},
		[]string{"backend"},
	)
	quotaBackendErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_quota_redis_errors_total",
			Help: "Redis failures that pushed quota checks onto the in-memory backend",
		},
	)
)

// AdaptiveLimiter runs checks against Redis and degrades to the in-memory
// limiter when Redis is unreachable. Memory windows are per replica, so the
// degraded quota is halved to keep the fleet-wide rate roughly level.
type AdaptiveLimiter struct {
	primary  Limiter
	fallback Limiter
	log      *slog.Logger
}

func NewAdaptiveLimiter(primary, fallback Limiter, log *slog.Logger) Limiter {
	if log == nil {
		log = slog.Default()
	}

	return &AdaptiveLimiter{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Check evaluates the caller's quota. A rejection returns ErrLimitExceeded
// together with the Result; a backend failure on both limiters returns the
// backend error.
func (a *AdaptiveLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := a.primary.Check(ctx, key, limit, window)
	if err == nil {
		return recordDecision("redis", result)
	}

	quotaBackendErrorsTotal.Inc()
	a.log.Warn("redis quota check failed, degrading to in-memory",
		slog.String("key", key), slog.Any("error", err))

	degraded := limit / 2
	if degraded <= 0 {
		degraded = 1
	}

	result, err = a.fallback.Check(ctx, key, degraded, window)
	if err != nil {
		return result, err
	}

	return recordDecision("memory", result)
}

func recordDecision(backend string, result *Result) (*Result, error) {
	if result.Allowed {
		quotaChecksTotal.WithLabelValues(backend, "allowed").Inc()
		return result, nil
	}

	quotaChecksTotal.WithLabelValues(backend, "rejected").Inc()
	quotaRejectedTotal.WithLabelValues(backend).Inc()

	return result, ErrLimitExceeded
}
