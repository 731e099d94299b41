package scrape

import (
	"context"
	"log/slog"

	"github.com/budgetpilot/budgetpilot/internal/domain"
	"github.com/budgetpilot/budgetpilot/internal/reference"
)

// Params selects the location and item set for one aggregator run.
type Params struct {
	CountryCode string
	City        string
	Lat         float64
	Lon         float64
	Items       []string
}

// HasCoordinates reports whether the params carry a usable geolocation.
func (p Params) HasCoordinates() bool {
	return p.Lat != 0 || p.Lon != 0
}

// Aggregator runs every fetcher for a location and assembles one market
// snapshot. Fetches are deliberately sequential: POI calls against the map
// service are paced to stay under its rate limit, and a failure in any stage
// never aborts the stages after it.
type Aggregator struct {
	gas     *GasFetcher
	transit *TransitFetcher
	grocery *GroceryFetcher
	poi     *POIFetcher
	log     *slog.Logger
}

func NewAggregator(gas *GasFetcher, transit *TransitFetcher, grocery *GroceryFetcher, poi *POIFetcher, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}

	return &Aggregator{
		gas:     gas,
		transit: transit,
		grocery: grocery,
		poi:     poi,
		log:     log,
	}
}

// Snapshot produces the consolidated market data for a location. Every
// numeric field is guaranteed populated on return: the calculator never
// observes "missing".
func (a *Aggregator) Snapshot(ctx context.Context, p Params) *domain.MarketSnapshot {
	countryName := reference.CountryName(p.CountryCode)

	snapshot := &domain.MarketSnapshot{
		Products:          []domain.Product{},
		GroceryMultiplier: 1.0,
		NearbyStores:      []domain.Place{},
		NearbyGasStations: []domain.Place{},
		NearbyPetStores:   []domain.Place{},
		ProductSource:     domain.ProvenanceFallback,
		GasSource:         domain.ProvenanceFallback,
	}

	// 1. Gas price: search API first, mock table on failure.
	if price, cached, ok := a.gas.Price(ctx, p.City, countryName); ok {
		snapshot.GasPrice = price
		snapshot.GasSource = domain.ProvenanceLive
		if cached {
			snapshot.GasSource = domain.ProvenanceCached
		}
	} else {
		snapshot.GasPrice = reference.MockGasPrice(p.CountryCode)
		snapshot.GasSource = domain.ProvenanceFallback
	}

	// 2. Public-transport fare.
	if p.City != "" {
		if fare, _ := a.transit.Fare(ctx, p.City); fare != nil {
			snapshot.TransportFare = fare
		}
	}

	// 3. Nearby POIs. Order matters: the fuel and pet queries pace
	// themselves on cache miss so consecutive calls respect the upstream
	// rate limit.
	if p.HasCoordinates() {
		snapshot.NearbyStores = a.poi.NearbyStores(ctx, p.Lat, p.Lon)
		snapshot.GroceryMultiplier = StoreTierMultiplier(snapshot.NearbyStores)

		snapshot.NearbyGasStations = a.poi.NearbyGasStations(ctx, p.Lat, p.Lon)
		snapshot.NearbyPetStores = a.poi.NearbyPetStores(ctx, p.Lat, p.Lon)
	}

	// 4. Grocery line items, mock list when the live fetch yields nothing.
	if p.City != "" {
		products, cached := a.grocery.Products(ctx, p.City, p.Items)
		if len(products) > 0 {
			snapshot.Products = products
			snapshot.ProductSource = domain.ProvenanceLive
			if cached {
				snapshot.ProductSource = domain.ProvenanceCached
			}
		} else {
			snapshot.Products = reference.MockProducts(p.CountryCode)
			snapshot.ProductSource = domain.ProvenanceFallback
		}
	} else {
		snapshot.Products = reference.MockProducts(p.CountryCode)
		snapshot.ProductSource = domain.ProvenanceFallback
	}

	// Final safety net: the calculator must never see a zero gas price.
	if snapshot.GasPrice == 0 {
		snapshot.GasPrice = reference.DefaultGasPrice
		snapshot.GasSource = domain.ProvenanceFinal
	}

	a.log.Debug("market snapshot assembled",
		slog.String("country", p.CountryCode),
		slog.String("city", p.City),
		slog.String("gas_source", string(snapshot.GasSource)),
		slog.String("product_source", string(snapshot.ProductSource)),
		slog.Int("products", len(snapshot.Products)),
		slog.Int("nearby_stores", len(snapshot.NearbyStores)),
	)

	return snapshot
}
