package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/budgetpilot/budgetpilot/internal/cache"
	"github.com/budgetpilot/budgetpilot/internal/domain"
)

// Query radii and result caps per POI category.
const (
	storeRadiusM = 3000
	fuelRadiusM  = 5000
	petRadiusM   = 5000

	storeLimit = 5
	fuelLimit  = 3
	petLimit   = 5
)

// POIFetcher issues bounding-radius queries against the map-data service.
// The upstream rate-limits aggressively, so every cache-miss call after the
// first waits a fixed pacing interval; cache hits skip both the wait and the
// network.
type POIFetcher struct {
	client  *http.Client
	store   cache.Store
	baseURL string
	pacing  time.Duration
	log     *slog.Logger

	// sleep is swappable so tests do not wait out the pacing interval.
	sleep func(ctx context.Context, d time.Duration)
}

func NewPOIFetcher(client *http.Client, store cache.Store, baseURL string, pacing time.Duration, log *slog.Logger) *POIFetcher {
	return &POIFetcher{
		client:  client,
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		pacing:  pacing,
		log:     log,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (el *overpassElement) point() (float64, float64) {
	if el.Lat != 0 || el.Lon != 0 {
		return el.Lat, el.Lon
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon
	}

	return 0, 0
}

// NearbyStores returns up to five supermarkets within 3km. The first POI
// call of an aggregator run is never paced.
func (f *POIFetcher) NearbyStores(ctx context.Context, lat, lon float64) []domain.Place {
	selectors := []string{`node["shop"="supermarket"]`, `way["shop"="supermarket"]`, `relation["shop"="supermarket"]`}

	return f.fetchPlaces(ctx, cache.StoresKey(lat, lon), "nearby_stores", selectors, lat, lon, storeRadiusM, storeLimit, false, mapStore)
}

// NearbyGasStations returns up to three fuel stations within 5km, pacing
// before the call on a cache miss.
func (f *POIFetcher) NearbyGasStations(ctx context.Context, lat, lon float64) []domain.Place {
	selectors := []string{`node["amenity"="fuel"]`, `way["amenity"="fuel"]`, `relation["amenity"="fuel"]`}

	return f.fetchPlaces(ctx, cache.GasStationsKey(lat, lon), "nearby_fuel", selectors, lat, lon, fuelRadiusM, fuelLimit, true, mapFuel)
}

// NearbyPetStores returns up to five pet shops and veterinary clinics within
// 5km, pacing before the call on a cache miss.
func (f *POIFetcher) NearbyPetStores(ctx context.Context, lat, lon float64) []domain.Place {
	selectors := []string{
		`node["shop"="pet"]`, `way["shop"="pet"]`, `relation["shop"="pet"]`,
		`node["amenity"="veterinary"]`, `way["amenity"="veterinary"]`, `relation["amenity"="veterinary"]`,
	}

	return f.fetchPlaces(ctx, cache.PetStoresKey(lat, lon), "nearby_pet", selectors, lat, lon, petRadiusM, petLimit, true, mapPet)
}

// fetchPlaces never returns nil: fetch and parse failures yield an empty
// slice so the snapshot's place lists always serialize as arrays.
func (f *POIFetcher) fetchPlaces(ctx context.Context, key, source string, selectors []string, lat, lon float64, radius, limit int, paced bool, mapElement func(overpassElement) (string, string)) []domain.Place {
	var cached []domain.Place
	if found, err := f.store.Get(ctx, key, &cached); err == nil && found {
		return cached
	}

	if paced {
		f.sleep(ctx, f.pacing)
	}

	query := buildRadiusQuery(selectors, lat, lon, radius)
	reqURL := f.baseURL + "/api/interpreter?data=" + url.QueryEscape(query)

	body, err := fetchBody(ctx, f.client, source, reqURL)
	if err != nil {
		f.log.Warn("poi fetch failed", slog.String("source", source), slog.Any("error", err))
		return []domain.Place{}
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		f.log.Warn("poi response unparsable", slog.String("source", source), slog.Any("error", err))
		return []domain.Place{}
	}

	origin := orb.Point{lon, lat}
	places := make([]domain.Place, 0, limit)
	for _, el := range parsed.Elements {
		if len(places) >= limit {
			break
		}

		name, category := mapElement(el)
		elLat, elLon := el.point()

		places = append(places, domain.Place{
			Name:      name,
			Category:  category,
			Lat:       elLat,
			Lon:       elLon,
			DistanceM: geo.Distance(origin, orb.Point{elLon, elLat}),
		})
	}

	if len(places) > 0 {
		if err := f.store.Set(ctx, key, places); err != nil {
			f.log.Warn("poi cache write failed", slog.Any("error", err))
		}
	}

	return places
}

func buildRadiusQuery(selectors []string, lat, lon float64, radius int) string {
	var b strings.Builder
	b.WriteString("[out:json];(")
	for _, sel := range selectors {
		fmt.Fprintf(&b, "%s(around:%d, %f, %f);", sel, radius, lat, lon)
	}
	b.WriteString(");out tags center;")

	return b.String()
}

func mapStore(el overpassElement) (string, string) {
	name := el.Tags["name"]
	if name == "" {
		name = "Unknown Supermarket"
	}

	brand := el.Tags["brand"]
	if brand == "" {
		brand = el.Tags["name"]
	}

	return name, brand
}

func mapFuel(el overpassElement) (string, string) {
	name := el.Tags["name"]
	if name == "" {
		name = el.Tags["brand"]
	}
	if name == "" {
		name = "Local Station"
	}

	return name, el.Tags["brand"]
}

func mapPet(el overpassElement) (string, string) {
	if el.Tags["amenity"] == "veterinary" {
		name := el.Tags["name"]
		if name == "" {
			name = "Veterinary Clinic"
		}
		return name, "vet"
	}

	name := el.Tags["name"]
	if name == "" {
		name = "Pet Shop"
	}

	return name, "shop"
}
