package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

var nonPriceChars = regexp.MustCompile(`[^0-9.,]`)

// ParsePrice normalizes a localized price string like "1.234,56 Kč" or
// "1,234.56 $" into a decimal and a currency symbol. Whether comma or dot is
// the decimal separator is decided by which appears last; the currency is
// whatever non-numeric text trails the number.
func ParsePrice(text string) (float64, string, bool) {
	numStr := nonPriceChars.ReplaceAllString(text, "")
	if numStr == "" {
		return 0, "", false
	}

	if strings.Contains(numStr, ",") {
		if strings.LastIndex(numStr, ",") > strings.LastIndex(numStr, ".") {
			// Comma-decimal locale: dots are thousands separators.
			numStr = strings.ReplaceAll(numStr, ".", "")
			numStr = strings.ReplaceAll(numStr, ",", ".")
		} else {
			// Dot-decimal locale: commas are thousands separators.
			numStr = strings.ReplaceAll(numStr, ",", "")
		}
	}

	price, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, "", false
	}

	currency := strings.TrimSpace(currencyChars.ReplaceAllString(text, ""))

	return price, currency, true
}

var currencyChars = regexp.MustCompile(`[0-9.,\s]`)
