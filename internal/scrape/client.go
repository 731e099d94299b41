// Package scrape implements the cache-backed fetchers for external
// cost-of-living sources and the aggregator that combines them into one
// market snapshot. Every fetcher degrades to an explicit "unavailable"
// result instead of surfacing errors to its caller.
package scrape

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/budgetpilot/budgetpilot/pkg/metrics"
)

const userAgent = "Mozilla/5.0"

// NewHTTPClient builds the shared outbound client. Every call carries the
// bounded timeout; a timeout is handled like any other fetch failure.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &http.Client{Timeout: timeout}
}

// fetchBody performs a GET and returns the response body. Non-2xx responses
// count as failures.
func fetchBody(ctx context.Context, client *http.Client, source, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		metrics.RecordScrape(source, "error", time.Since(start))
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		metrics.RecordScrape(source, "error", time.Since(start))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordScrape(source, "error", time.Since(start))
		return nil, &statusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordScrape(source, "error", time.Since(start))
		return nil, err
	}

	metrics.RecordScrape(source, "ok", time.Since(start))
	return body, nil
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return "unexpected status " + http.StatusText(e.status)
}
