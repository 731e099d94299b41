package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/budgetpilot/budgetpilot/internal/domain"
)

func TestStoreTierMultiplier(t *testing.T) {
	testCases := []struct {
		name   string
		stores []domain.Place
		want   float64
	}{
		{
			name:   "empty list is neutral",
			stores: nil,
			want:   1.0,
		},
		{
			name:   "single budget chain",
			stores: []domain.Place{{Name: "Lidl", Category: "Lidl"}},
			want:   0.85,
		},
		{
			name:   "single premium chain",
			stores: []domain.Place{{Name: "Whole Foods Market", Category: "Whole Foods"}},
			want:   1.35,
		},
		{
			name: "budget premium mix averages",
			stores: []domain.Place{
				{Name: "Aldi Süd", Category: "Aldi"},
				{Name: "Waitrose & Partners", Category: "Waitrose"},
			},
			want: 1.10,
		},
		{
			name:   "unknown store counts as standard",
			stores: []domain.Place{{Name: "Corner Grocery", Category: ""}},
			want:   1.0,
		},
		{
			name: "classification matches brand when name is generic",
			stores: []domain.Place{
				{Name: "Unknown Supermarket", Category: "penny"},
			},
			want: 0.85,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, StoreTierMultiplier(tc.stores), 1e-9)
		})
	}
}
