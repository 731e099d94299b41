// Package middleware holds the HTTP middleware chain: request logging,
// per-route Prometheus metrics and the rate-limit guards.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/budgetpilot/budgetpilot/pkg/logger"
)

// New returns the request-logging middleware. Every response is logged with
// its status, latency and the correlation id stamped by logger.Middleware.
func New(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			log.Info("handled http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", recorder.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("correlation_id", logger.CorrelationIDFromContext(r.Context())),
			)
		})
	}
}
