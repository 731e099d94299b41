package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetpilot/budgetpilot/internal/domain"
)

func czProfile() *domain.UserProfile {
	return &domain.UserProfile{
		CountryCode:   "CZ",
		City:          "Prague",
		Currency:      "Kč",
		Adults:        2,
		Kids:          1,
		Rent:          15000,
		TransportMode: domain.TransportPublic,
		SavingsTarget: 60000,
		SavingsMonths: 6,
	}
}

func TestComputeFullBudget_PublicTransport(t *testing.T) {
	profile := czProfile()
	snapshot := &domain.MarketSnapshot{
		GasPrice:          38.50,
		GroceryMultiplier: 1.0,
		TransportFare:     &domain.TransportFare{Monthly: 550, OneWay: 30},
	}

	breakdown := ComputeFullBudget(profile, snapshot)

	assert.Equal(t, float64(550), breakdown.Transport)
	assert.Zero(t, breakdown.Gas)
}

func TestComputeFullBudget_PublicTransportDefaultFare(t *testing.T) {
	profile := czProfile()
	snapshot := &domain.MarketSnapshot{GasPrice: 38.50, GroceryMultiplier: 1.0}

	breakdown := ComputeFullBudget(profile, snapshot)

	assert.Equal(t, float64(50), breakdown.Transport)
}

func TestComputeFullBudget_CarByType(t *testing.T) {
	tests := []struct {
		carType domain.CarType
		wantGas float64
	}{
		{domain.CarSedan, 214},
		{domain.CarSUV, 300},
		{domain.CarTruck, 353},
		{domain.CarHybrid, 133},
		{domain.CarEV, 60},
		{domain.CarType(""), 240},
	}

	for _, tt := range tests {
		t.Run(string(tt.carType), func(t *testing.T) {
			profile := czProfile()
			profile.TransportMode = domain.TransportCar
			profile.CarType = tt.carType
			profile.CommuteDistance = 100

			snapshot := &domain.MarketSnapshot{GasPrice: 2.0, GroceryMultiplier: 1.0}
			breakdown := ComputeFullBudget(profile, snapshot)

			assert.Equal(t, tt.wantGas, breakdown.Gas)
			assert.Equal(t, tt.wantGas+carSurcharge, breakdown.Transport)
		})
	}
}

func TestComputeFullBudget_Groceries(t *testing.T) {
	profile := czProfile()
	snapshot := &domain.MarketSnapshot{GasPrice: 38.50, GroceryMultiplier: 0.925}

	breakdown := ComputeFullBudget(profile, snapshot)

	// 7000 per person, 2 adults + 1 kid at 0.6 weight, discount-tier multiplier.
	assert.Equal(t, float64(16835), breakdown.Groceries)
}

func TestComputeFullBudget_ZeroMultiplierTreatedAsNeutral(t *testing.T) {
	profile := czProfile()
	snapshot := &domain.MarketSnapshot{GasPrice: 38.50}

	breakdown := ComputeFullBudget(profile, snapshot)

	assert.Equal(t, float64(18200), breakdown.Groceries)
}

func TestComputeFullBudget_Pets(t *testing.T) {
	profile := czProfile()
	profile.Pets = domain.Pets{Dog: true, Cat: true}
	snapshot := &domain.MarketSnapshot{GasPrice: 38.50, GroceryMultiplier: 0.925}

	breakdown := ComputeFullBudget(profile, snapshot)

	// 1500 for the dog plus 60% of that for the cat, scaled by the tier.
	assert.Equal(t, float64(2220), breakdown.PetCost)
}

func TestComputeFullBudget_FixedCosts(t *testing.T) {
	profile := czProfile()
	profile.Internet = true
	profile.InternetCost = 500
	profile.MobileCost = 300
	profile.MobileCount = 2

	snapshot := &domain.MarketSnapshot{GasPrice: 38.50, GroceryMultiplier: 1.0}
	breakdown := ComputeFullBudget(profile, snapshot)

	assert.Equal(t, float64(16100), breakdown.FixedCosts)
}

func TestComputeFullBudget_InternetDisabledCostIgnored(t *testing.T) {
	profile := czProfile()
	profile.Internet = false
	profile.InternetCost = 500

	snapshot := &domain.MarketSnapshot{GasPrice: 38.50, GroceryMultiplier: 1.0}
	breakdown := ComputeFullBudget(profile, snapshot)

	assert.Equal(t, profile.Rent, breakdown.FixedCosts)
}

func TestComputeFullBudget_SavingsAndTotal(t *testing.T) {
	profile := czProfile()
	profile.Loans = 2000
	profile.Lifestyle = domain.Lifestyle{Gym: 400, Streaming: 200, Music: 150, Other: 50}

	snapshot := &domain.MarketSnapshot{
		GasPrice:          38.50,
		GroceryMultiplier: 1.0,
		TransportFare:     &domain.TransportFare{Monthly: 550},
	}
	breakdown := ComputeFullBudget(profile, snapshot)

	assert.Equal(t, float64(10000), breakdown.Savings)

	wantTotal := breakdown.FixedCosts + breakdown.Transport + breakdown.Groceries +
		breakdown.PetCost + breakdown.LoanCost + breakdown.LifestyleCost + breakdown.Savings
	assert.Equal(t, wantTotal, breakdown.Total)
}

func TestComputeFullBudget_Deterministic(t *testing.T) {
	profile := czProfile()
	profile.TransportMode = domain.TransportCar
	profile.CarType = domain.CarSedan
	profile.CommuteDistance = 40
	profile.Pets = domain.Pets{Dog: true}

	snapshot := &domain.MarketSnapshot{GasPrice: 38.50, GroceryMultiplier: 0.925}

	first := ComputeFullBudget(profile, snapshot)
	second := ComputeFullBudget(profile, snapshot)

	require.Equal(t, first, second)
}

func TestComputeVariableCosts_MatchesFullBreakdown(t *testing.T) {
	profile := czProfile()
	profile.TransportMode = domain.TransportCar
	profile.CarType = domain.CarSedan
	profile.CommuteDistance = 40
	profile.Pets = domain.Pets{Cat: true}

	snapshot := &domain.MarketSnapshot{GasPrice: 38.50, GroceryMultiplier: 0.925}

	full := ComputeFullBudget(profile, snapshot)
	variable := ComputeVariableCosts(profile, snapshot)

	assert.Equal(t, full.Gas, variable.Gas)
	assert.Equal(t, full.Groceries, variable.Groceries)
	assert.Equal(t, full.PetCost, variable.PetCost)
	assert.Equal(t, variable.Gas+variable.Groceries+variable.PetCost, variable.Total)
	assert.Equal(t, full.Variable().Total, variable.Total)
}

func TestComputeVariableCosts_PublicTransportHasNoGas(t *testing.T) {
	profile := czProfile()
	profile.CommuteDistance = 40

	snapshot := &domain.MarketSnapshot{GasPrice: 38.50, GroceryMultiplier: 1.0}
	variable := ComputeVariableCosts(profile, snapshot)

	assert.Zero(t, variable.Gas)
}
