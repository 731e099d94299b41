package scrape

import (
	"strings"

	"github.com/budgetpilot/budgetpilot/internal/domain"
)

// Tier multipliers: discount chains pull the grocery estimate down, premium
// chains push it up.
const (
	budgetTierMultiplier   = 0.85
	premiumTierMultiplier  = 1.35
	standardTierMultiplier = 1.0
)

var budgetChains = []string{
	"lidl", "aldi", "penny", "netto", "kaufland", "biedronka",
	"dia", "winco", "save-a-lot", "grocery outlet",
}

var premiumChains = []string{
	"whole foods", "waitrose", "marks & spencer", "erewhon",
	"trader joe's", "sprouts", "wegmans", "harris teeter",
}

// StoreTierMultiplier classifies each nearby store by its name and brand and
// returns the mean price multiplier. No stores means a neutral 1.0. This is
// the only channel through which nearby store quality reaches the budget.
func StoreTierMultiplier(stores []domain.Place) float64 {
	if len(stores) == 0 {
		return standardTierMultiplier
	}

	var total float64
	for _, store := range stores {
		total += classifyStore(store)
	}

	return total / float64(len(stores))
}

func classifyStore(store domain.Place) float64 {
	combined := strings.ToLower(store.Name + " " + store.Category)

	for _, chain := range budgetChains {
		if strings.Contains(combined, chain) {
			return budgetTierMultiplier
		}
	}

	for _, chain := range premiumChains {
		if strings.Contains(combined, chain) {
			return premiumTierMultiplier
		}
	}

	return standardTierMultiplier
}
