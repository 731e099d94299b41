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

// Prague's integrated transit fare, validated against the authority page
// before being trusted.
const (
	pragueMonthlyFare = 550
	pragueOneWayFare  = 30
)

// TransitFetcher resolves public-transport fares: a dedicated
// transit-authority page for Prague, the generic cost-of-living site for
// every other city.
type TransitFetcher struct {
	client     *http.Client
	store      cache.Store
	colBaseURL string
	transitURL string
	log        *slog.Logger
}

func NewTransitFetcher(client *http.Client, store cache.Store, colBaseURL, transitURL string, log *slog.Logger) *TransitFetcher {
	return &TransitFetcher{
		client:     client,
		store:      store,
		colBaseURL: strings.TrimRight(colBaseURL, "/"),
		transitURL: transitURL,
		log:        log,
	}
}

// Fare returns the public-transport fare for a city, or nil when every
// source failed. The second return reports a cache hit.
func (f *TransitFetcher) Fare(ctx context.Context, city string) (*domain.TransportFare, bool) {
	if city == "" {
		return nil, false
	}

	key := cache.TransportKey(city)
	var cached domain.TransportFare
	if found, err := f.store.Get(ctx, key, &cached); err == nil && found {
		return &cached, true
	}

	lowered := strings.ToLower(city)
	if lowered == "prague" || lowered == "praha" {
		if fare := f.pragueFare(ctx); fare != nil {
			f.cacheFare(ctx, key, fare)
			return fare, false
		}
	}

	fare := f.costOfLivingFare(ctx, city)
	if fare != nil {
		f.cacheFare(ctx, key, fare)
	}

	return fare, false
}

// pragueFare confirms the known fixed fare is still advertised on the
// transit-authority page. If the signal is missing the generic path takes
// over.
func (f *TransitFetcher) pragueFare(ctx context.Context) *domain.TransportFare {
	body, err := fetchBody(ctx, f.client, "transit_authority", f.transitURL)
	if err != nil {
		f.log.Warn("transit authority fetch failed", slog.Any("error", err))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.log.Warn("transit authority page unparsable", slog.Any("error", err))
		return nil
	}

	confirmed := false
	doc.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if strings.Contains(cell.Text(), "550") {
			confirmed = true
			return false
		}
		return true
	})

	if !confirmed {
		return nil
	}

	return &domain.TransportFare{
		Monthly: pragueMonthlyFare,
		OneWay:  pragueOneWayFare,
		Source:  "Official (PID)",
	}
}

func (f *TransitFetcher) costOfLivingFare(ctx context.Context, city string) *domain.TransportFare {
	url := f.colBaseURL + "/cost-of-living/in/" + FormatCityPath(city)
	body, err := fetchBody(ctx, f.client, "transit", url)
	if err != nil {
		f.log.Warn("transit fare fetch failed", slog.String("city", city), slog.Any("error", err))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.log.Warn("transit fare page unparsable", slog.String("city", city), slog.Any("error", err))
		return nil
	}

	var monthly, oneWay float64
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		text := strings.TrimSpace(row.Text())
		priceText := strings.TrimSpace(row.Find(".priceValue").Text())
		if priceText == "" {
			return
		}

		price, _, ok := ParsePrice(priceText)
		if !ok {
			return
		}

		switch {
		case strings.Contains(text, "Monthly Pass (Regular Price)"):
			monthly = price
		case strings.Contains(text, "One-way Ticket (Local Transport)"):
			oneWay = price
		}
	})

	if monthly == 0 && oneWay == 0 {
		return nil
	}

	return &domain.TransportFare{
		Monthly: monthly,
		OneWay:  oneWay,
		Source:  "CostOfLiving",
	}
}

func (f *TransitFetcher) cacheFare(ctx context.Context, key string, fare *domain.TransportFare) {
	if err := f.store.Set(ctx, key, fare); err != nil {
		f.log.Warn("transit cache write failed", slog.Any("error", err))
	}
}
