package middleware

import (
	"net/http"
	"time"

	"github.com/budgetpilot/budgetpilot/pkg/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Metrics measures execution time and status per route, reporting them to
// Prometheus.
func Metrics(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		metrics.RecordHTTPRequest(route, r.Method, recorder.status, time.Since(start))
	})
}
