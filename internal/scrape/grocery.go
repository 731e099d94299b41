package scrape

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/budgetpilot/budgetpilot/internal/cache"
	"github.com/budgetpilot/budgetpilot/internal/domain"
)

// GroceryFetcher extracts grocery unit prices from the cost-of-living site.
type GroceryFetcher struct {
	client  *http.Client
	store   cache.Store
	baseURL string
	log     *slog.Logger
}

func NewGroceryFetcher(client *http.Client, store cache.Store, baseURL string, log *slog.Logger) *GroceryFetcher {
	return &GroceryFetcher{
		client:  client,
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// Products returns the grocery line items for a city, filtered to the
// selected item set (empty selection matches all rows). Total failure yields
// an empty slice, never an error. The second return reports a cache hit.
func (f *GroceryFetcher) Products(ctx context.Context, city string, items []string) ([]domain.Product, bool) {
	if city == "" {
		return nil, false
	}

	key := cache.GroceriesKey(city, items)
	var cached []domain.Product
	if found, err := f.store.Get(ctx, key, &cached); err == nil && found {
		return cached, true
	}

	url := f.baseURL + "/cost-of-living/in/" + FormatCityPath(city)
	body, err := fetchBody(ctx, f.client, "groceries", url)
	if err != nil {
		f.log.Warn("grocery fetch failed", slog.String("city", city), slog.Any("error", err))
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.log.Warn("grocery page unparsable", slog.String("city", city), slog.Any("error", err))
		return nil, false
	}

	products := extractProducts(doc, items)
	if len(products) > 0 {
		if err := f.store.Set(ctx, key, products); err != nil {
			f.log.Warn("grocery cache write failed", slog.Any("error", err))
		}
	}

	return products, false
}

func extractProducts(doc *goquery.Document, items []string) []domain.Product {
	var products []domain.Product

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		name := strings.TrimSpace(row.Find("td").First().Text())
		priceText := strings.TrimSpace(row.Find(".priceValue").Text())
		if name == "" || priceText == "" {
			return
		}

		if !matchesSelection(name, items) {
			return
		}

		price, currency, ok := ParsePrice(priceText)
		if !ok {
			return
		}

		products = append(products, domain.Product{
			Name:     name,
			Price:    price,
			Currency: currency,
		})
	})

	return products
}

// matchesSelection reports whether a row label matches any selected item.
// Matching is a case-insensitive substring check; an empty selection matches
// everything.
func matchesSelection(name string, items []string) bool {
	if len(items) == 0 {
		return true
	}

	lowered := strings.ToLower(name)
	for _, item := range items {
		if item == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(item)) {
			return true
		}
	}

	return false
}

// FormatCityPath turns a city name into the Title_Case_Underscored path
// segment the cost-of-living site expects ("new york" -> "New_York").
func FormatCityPath(city string) string {
	words := strings.Fields(city)
	for i, word := range words {
		runes := []rune(word)
		if len(runes) == 0 {
			continue
		}
		words[i] = strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
	}

	return strings.Join(words, "_")
}
