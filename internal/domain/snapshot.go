package domain

// Provenance tags where a snapshot field came from.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceCached   Provenance = "cached"
	ProvenanceFallback Provenance = "fallback_mock"
	// ProvenanceFinal marks the generic default applied when both the live
	// path and the per-country mock table came up empty.
	ProvenanceFinal Provenance = "fallback_final"
)

// Product is one scraped grocery line item. Prices are unit prices, never
// budgets; the calculator only ever derives a multiplier from them.
type Product struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// Place is a nearby point of interest returned by the geo source.
type Place struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	// DistanceM is the great-circle distance from the query origin in meters.
	DistanceM float64 `json:"distanceM,omitempty"`
}

// TransportFare holds public-transport pricing for a city.
type TransportFare struct {
	Monthly float64 `json:"monthly"`
	OneWay  float64 `json:"oneWay"`
	Source  string  `json:"source"`
}

// MarketSnapshot is the consolidated output of one aggregator run. By the
// time a snapshot reaches the calculator every numeric field is populated:
// gas price falls back through the mock table to the generic default, and an
// empty product list is replaced by the per-country mock list.
type MarketSnapshot struct {
	Products          []Product      `json:"products"`
	GasPrice          float64        `json:"gasPrice"`
	TransportFare     *TransportFare `json:"transportPrice,omitempty"`
	GroceryMultiplier float64        `json:"groceryMultiplier"`

	NearbyStores      []Place `json:"nearbyStores"`
	NearbyGasStations []Place `json:"nearbyGasStations"`
	NearbyPetStores   []Place `json:"nearbyPetStores"`

	ProductSource Provenance `json:"source"`
	GasSource     Provenance `json:"gasSource"`
}
