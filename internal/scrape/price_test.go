package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		wantPrice    float64
		wantCurrency string
		wantOK       bool
	}{
		{
			name:         "comma decimal with dot thousands",
			input:        "1.234,56 Kč",
			wantPrice:    1234.56,
			wantCurrency: "Kč",
			wantOK:       true,
		},
		{
			name:         "dot decimal with comma thousands",
			input:        "1,234.56 $",
			wantPrice:    1234.56,
			wantCurrency: "$",
			wantOK:       true,
		},
		{
			name:         "plain dot decimal",
			input:        "19.90 Kč",
			wantPrice:    19.90,
			wantCurrency: "Kč",
			wantOK:       true,
		},
		{
			name:         "plain comma decimal",
			input:        "34,90 €",
			wantPrice:    34.90,
			wantCurrency: "€",
			wantOK:       true,
		},
		{
			name:         "leading symbol",
			input:        "$3.50",
			wantPrice:    3.50,
			wantCurrency: "$",
			wantOK:       true,
		},
		{
			name:         "integer price",
			input:        "550 Kč",
			wantPrice:    550,
			wantCurrency: "Kč",
			wantOK:       true,
		},
		{
			name:   "no digits",
			input:  "N/A",
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			price, currency, ok := ParsePrice(tc.input)

			assert.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				return
			}
			assert.InDelta(t, tc.wantPrice, price, 1e-9)
			assert.Equal(t, tc.wantCurrency, currency)
		})
	}
}
