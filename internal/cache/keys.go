package cache

import (
	"fmt"
	"strings"
)

// Key builders. Keys are deterministic functions of source plus parameters:
// coordinates are rounded to 3 decimals so nearby lookups share entries.

func StoresKey(lat, lon float64) string {
	return fmt.Sprintf("stores_%.3f_%.3f", lat, lon)
}

func GasStationsKey(lat, lon float64) string {
	return fmt.Sprintf("gas_stations_%.3f_%.3f", lat, lon)
}

func PetStoresKey(lat, lon float64) string {
	return fmt.Sprintf("pet_stores_%.3f_%.3f", lat, lon)
}

func TransportKey(city string) string {
	return "transport_" + strings.ToLower(city)
}

func GroceriesKey(city string, items []string) string {
	return "groceries_" + strings.ToLower(city) + "_" + strings.Join(items, "_")
}

func GasSearchKey(countryName, city string) string {
	if city == "" {
		city = "general"
	}

	return "gas_search_" + countryName + "_" + city
}
