package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/cache"
	"github.com/budgetpilot/budgetpilot/pkg/metrics"
)

// gasPricePattern matches a currency-tagged decimal in a result snippet,
// e.g. "1.50 EUR", "$1.50" reversed forms excluded, "35,50 CZK".
var gasPricePattern = regexp.MustCompile(`(?i)(\d+[.,]\d{2})\s?(EUR|USD|CZK|GBP|\$|€|Kč)`)

const gasSearchResults = 3

// GasFetcher resolves the local gasoline price through a natural-language
// search API. A circuit breaker short-circuits a flapping upstream so the
// aggregator degrades to the mock table without burning the timeout every
// run.
type GasFetcher struct {
	client  *http.Client
	store   cache.Store
	breaker *apperr.CircuitBreaker
	baseURL string
	apiKey  string
	log     *slog.Logger

	// year is swappable for tests; defaults to the current year.
	year func() int
}

func NewGasFetcher(client *http.Client, store cache.Store, baseURL, apiKey string, log *slog.Logger) *GasFetcher {
	return &GasFetcher{
		client:  client,
		store:   store,
		breaker: apperr.NewCircuitBreaker(),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log,
		year:    func() int { return time.Now().Year() },
	}
}

type searchRequest struct {
	Query      string         `json:"query"`
	NumResults int            `json:"numResults"`
	Contents   searchContents `json:"contents"`
}

type searchContents struct {
	Text       bool             `json:"text"`
	Highlights searchHighlights `json:"highlights"`
}

type searchHighlights struct {
	NumSentences int    `json:"numSentences"`
	Query        string `json:"query"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Highlights []string `json:"highlights"`
}

// Price searches for the current gasoline price near city. It returns
// (0, false, false) when the search produced nothing usable; the aggregator
// falls back to the mock table. The second return reports a cache hit.
func (f *GasFetcher) Price(ctx context.Context, city, countryName string) (float64, bool, bool) {
	key := cache.GasSearchKey(countryName, city)
	var cached float64
	if found, err := f.store.Get(ctx, key, &cached); err == nil && found {
		return cached, true, true
	}

	var price float64
	var found bool
	err := f.breaker.Call(func() error {
		var callErr error
		price, found, callErr = f.search(ctx, city, countryName)
		return callErr
	})
	if err != nil {
		f.log.Warn("gas price search failed", slog.String("city", city), slog.Any("error", err))
		return 0, false, false
	}
	if !found {
		return 0, false, false
	}

	if err := f.store.Set(ctx, key, price); err != nil {
		f.log.Warn("gas price cache write failed", slog.Any("error", err))
	}

	return price, false, true
}

func (f *GasFetcher) search(ctx context.Context, city, countryName string) (float64, bool, error) {
	start := time.Now()

	query := fmt.Sprintf("current price of 1 liter of gasoline in %s %s %d", city, countryName, f.year())
	payload, err := json.Marshal(searchRequest{
		Query:      query,
		NumResults: gasSearchResults,
		Contents: searchContents{
			Text: true,
			Highlights: searchHighlights{
				NumSentences: 2,
				Query:        "price of gasoline liter",
			},
		},
	})
	if err != nil {
		return 0, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		metrics.RecordScrape("gas_search", "error", time.Since(start))
		return 0, false, err
	}
	req.Header.Set("x-api-key", f.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.RecordScrape("gas_search", "error", time.Since(start))
		return 0, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordScrape("gas_search", "error", time.Since(start))
		return 0, false, &statusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordScrape("gas_search", "error", time.Since(start))
		return 0, false, err
	}

	metrics.RecordScrape("gas_search", "ok", time.Since(start))

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, false, err
	}

	price, found := extractGasPrice(parsed.Results)
	return price, found, nil
}

// extractGasPrice scans result snippets in order and returns the first
// currency-tagged decimal.
func extractGasPrice(results []searchResult) (float64, bool) {
	for _, result := range results {
		text := result.Text
		if len(result.Highlights) > 0 && result.Highlights[0] != "" {
			text = result.Highlights[0]
		}

		match := gasPricePattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
		if err != nil {
			continue
		}

		return price, true
	}

	return 0, false
}
