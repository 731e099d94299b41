// Package reference holds the static per-country fallback tables used when
// live sources are unavailable or a profile needs derived defaults.
package reference

// Country carries the baseline cost-of-living figures for one country, in
// local currency units.
type Country struct {
	Code     string
	Name     string
	Currency string
	Unit     string

	GasPrice         float64
	GroceryPerPerson float64
	PetCare          float64
}

// countries is ordered for stable iteration; lookups go through the index.
var countries = []Country{
	{Code: "US", Name: "United States", Currency: "$", Unit: "miles", GasPrice: 3.50, GroceryPerPerson: 400, PetCare: 60},
	{Code: "GB", Name: "United Kingdom", Currency: "£", Unit: "miles", GasPrice: 6.50, GroceryPerPerson: 300, PetCare: 45},
	{Code: "CA", Name: "Canada", Currency: "CA$", Unit: "km", GasPrice: 1.60, GroceryPerPerson: 450, PetCare: 70},
	{Code: "AU", Name: "Australia", Currency: "A$", Unit: "km", GasPrice: 1.80, GroceryPerPerson: 500, PetCare: 80},
	{Code: "DE", Name: "Germany", Currency: "€", Unit: "km", GasPrice: 1.90, GroceryPerPerson: 350, PetCare: 50},
	{Code: "FR", Name: "France", Currency: "€", Unit: "km", GasPrice: 1.95, GroceryPerPerson: 380, PetCare: 55},
	{Code: "JP", Name: "Japan", Currency: "¥", Unit: "km", GasPrice: 170, GroceryPerPerson: 40000, PetCare: 6000},
	{Code: "IN", Name: "India", Currency: "₹", Unit: "km", GasPrice: 100, GroceryPerPerson: 8000, PetCare: 2000},
	{Code: "CN", Name: "China", Currency: "¥", Unit: "km", GasPrice: 8, GroceryPerPerson: 1500, PetCare: 400},
	{Code: "BR", Name: "Brazil", Currency: "R$", Unit: "km", GasPrice: 5.50, GroceryPerPerson: 1200, PetCare: 250},
	{Code: "MX", Name: "Mexico", Currency: "MX$", Unit: "km", GasPrice: 24, GroceryPerPerson: 3000, PetCare: 800},
	{Code: "IT", Name: "Italy", Currency: "€", Unit: "km", GasPrice: 1.90, GroceryPerPerson: 360, PetCare: 50},
	{Code: "ES", Name: "Spain", Currency: "€", Unit: "km", GasPrice: 1.70, GroceryPerPerson: 300, PetCare: 45},
	{Code: "NL", Name: "Netherlands", Currency: "€", Unit: "km", GasPrice: 2.10, GroceryPerPerson: 380, PetCare: 55},
	{Code: "SE", Name: "Sweden", Currency: "kr", Unit: "km", GasPrice: 20, GroceryPerPerson: 4000, PetCare: 600},
	{Code: "CH", Name: "Switzerland", Currency: "CHF", Unit: "km", GasPrice: 1.90, GroceryPerPerson: 600, PetCare: 80},
	{Code: "ZA", Name: "South Africa", Currency: "R", Unit: "km", GasPrice: 23, GroceryPerPerson: 4000, PetCare: 800},
	{Code: "NG", Name: "Nigeria", Currency: "₦", Unit: "km", GasPrice: 600, GroceryPerPerson: 100000, PetCare: 25000},
	{Code: "AR", Name: "Argentina", Currency: "$", Unit: "km", GasPrice: 300, GroceryPerPerson: 80000, PetCare: 20000},
	{Code: "CZ", Name: "Czech Republic", Currency: "Kč", Unit: "km", GasPrice: 35, GroceryPerPerson: 7000, PetCare: 1500},
	{Code: "OTHER", Name: "Other / International", Currency: "$", Unit: "km", GasPrice: 1.50, GroceryPerPerson: 300, PetCare: 50},
}

var countryIndex = func() map[string]Country {
	idx := make(map[string]Country, len(countries))
	for _, c := range countries {
		idx[c.Code] = c
	}
	return idx
}()

// CountryByCode returns the reference data for an ISO-2 code, falling back to
// the generic OTHER entry for unknown codes.
func CountryByCode(code string) Country {
	if c, ok := countryIndex[code]; ok {
		return c
	}

	return countryIndex["OTHER"]
}

// countryNames maps ISO-2 codes to the spellings the external sources use in
// search queries and page paths.
var countryNames = map[string]string{
	"CZ": "Czech Republic",
	"US": "USA",
	"GB": "United Kingdom",
	"DE": "Germany",
	"FR": "France",
	"ES": "Spain",
	"IT": "Italy",
	"PL": "Poland",
	"SK": "Slovakia",
	"AT": "Austria",
	"HU": "Hungary",
}

// CountryName resolves the display name used by the scraped sources.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}

	return CountryByCode(code).Name
}
