package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/budgetpilot/budgetpilot/internal/auth"
	"github.com/budgetpilot/budgetpilot/internal/ratelimit"
)

// RateLimitMiddleware enforces sliding-window limits on incoming API calls.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		log:     log,
	}
}

// PerUser limits authenticated endpoints by user ID.
func (m *RateLimitMiddleware) PerUser(next http.Handler) http.Handler {
	return m.handle(next, func(r *http.Request) (string, bool) {
		userID := auth.UserIDFromContext(r.Context())
		if userID == 0 {
			return clientKey(r), false
		}

		return fmt.Sprintf("user:%d", userID), m.rules.IsWhitelisted(userID)
	}, func() (int, time.Duration, error) {
		return m.rules.GetPerUserLimit()
	})
}

// Market applies the stricter market-endpoint limit keyed by client address.
func (m *RateLimitMiddleware) Market(next http.Handler) http.Handler {
	return m.handle(next, func(r *http.Request) (string, bool) {
		return clientKey(r), false
	}, func() (int, time.Duration, error) {
		return m.rules.GetMarketLimit()
	})
}

func (m *RateLimitMiddleware) handle(
	next http.Handler,
	keyFn func(r *http.Request) (string, bool),
	ruleFn func() (int, time.Duration, error),
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil || m.rules == nil || !m.rules.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		key, whitelisted := keyFn(r)
		if whitelisted {
			next.ServeHTTP(w, r)
			return
		}

		limit, window, err := ruleFn()
		if err != nil {
			if m.log != nil {
				m.log.Error("failed to load rate limit rule", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}

		result, err := m.limiter.Check(r.Context(), key, limit, window)
		if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
			// A broken limiter backend fails open rather than blocking the API.
			next.ServeHTTP(w, r)
			return
		}

		if result != nil && !result.Allowed {
			if m.log != nil {
				m.log.Warn("rate limit exceeded", slog.String("key", key), slog.String("path", r.URL.Path))
			}
			w.Header().Set("Retry-After", result.ResetAt.UTC().Format(http.TimeFormat))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	return "addr:" + host
}
