package reference

import "github.com/budgetpilot/budgetpilot/internal/domain"

// DefaultGasPrice is the last-resort gas price when neither the live search
// nor the per-country mock table produced a value.
const DefaultGasPrice = 1.50

// mockGasPrices are per-country placeholders in local currency per liter.
var mockGasPrices = map[string]float64{
	"CZ": 38.50,
	"US": 3.50,
	"DE": 1.85,
}

// MockGasPrice returns the fallback gas price for a country.
func MockGasPrice(code string) float64 {
	if price, ok := mockGasPrices[code]; ok {
		return price
	}

	return DefaultGasPrice
}

// mockProducts substitute for scraped grocery line items when the live fetch
// yields nothing. Only unit prices; the calculator never budgets from them.
var mockProducts = map[string][]domain.Product{
	"CZ": {
		{Name: "Mléko trvanlivé 1,5% (Lidl)", Price: 19.90, Currency: "Kč"},
		{Name: "Chléb konzumní 1200g", Price: 34.90, Currency: "Kč"},
		{Name: "Vejce M 10ks", Price: 49.90, Currency: "Kč"},
		{Name: "Máslo 250g", Price: 59.90, Currency: "Kč"},
		{Name: "Banány 1kg", Price: 29.90, Currency: "Kč"},
		{Name: "Kuřecí prsní řízky 1kg", Price: 189.00, Currency: "Kč"},
	},
}

// MockProducts returns the fallback product list for a country. Countries
// without their own list borrow the CZ reference set.
func MockProducts(code string) []domain.Product {
	if products, ok := mockProducts[code]; ok {
		return products
	}

	return mockProducts["CZ"]
}
