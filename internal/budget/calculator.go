// Package budget implements the deterministic cost-calculation engine. Both
// entry points are pure: no I/O, no mutation of inputs, identical inputs
// always produce identical breakdowns.
package budget

import (
	"math"

	"github.com/budgetpilot/budgetpilot/internal/domain"
	"github.com/budgetpilot/budgetpilot/internal/reference"
	"github.com/budgetpilot/budgetpilot/pkg/metrics"
)

const (
	// carSurcharge folds insurance and maintenance into the car estimate.
	carSurcharge = 100
	// defaultTransportFare covers public transport when no fare was scraped.
	defaultTransportFare = 50
	// commuteDaysPerMonth scales the daily fuel cost to a month.
	commuteDaysPerMonth = 30
	// kidConsumptionWeight reflects lower per-child grocery consumption.
	kidConsumptionWeight = 0.6
	// catCostWeight scales the per-pet baseline down for cats.
	catCostWeight = 0.6
)

// ComputeFullBudget maps a validated profile and a complete market snapshot
// to the itemized monthly breakdown. Callers must run ValidateProfile first;
// the calculator assumes its invariants hold.
func ComputeFullBudget(profile *domain.UserProfile, snapshot *domain.MarketSnapshot) domain.BudgetBreakdown {
	metrics.RecordBudgetComputation()

	var breakdown domain.BudgetBreakdown

	breakdown.Gas = gasCost(profile, snapshot)
	if profile.TransportMode == domain.TransportCar {
		breakdown.Transport = breakdown.Gas + carSurcharge
	} else {
		breakdown.Transport = transportFare(snapshot)
	}

	breakdown.Groceries = groceryCost(profile, snapshot)

	breakdown.FixedCosts = profile.Rent
	if profile.Internet {
		breakdown.FixedCosts += profile.InternetCost
	}
	breakdown.FixedCosts += profile.MobileCost * float64(profile.MobileCount)

	breakdown.PetCost = petCost(profile, snapshot)
	breakdown.LoanCost = profile.Loans
	breakdown.LifestyleCost = profile.Lifestyle.Gym + profile.Lifestyle.Streaming +
		profile.Lifestyle.Music + profile.Lifestyle.Other
	breakdown.Savings = math.Round(profile.SavingsTarget / float64(profile.SavingsMonths))

	breakdown.Total = breakdown.FixedCosts + breakdown.Transport + breakdown.Groceries +
		breakdown.PetCost + breakdown.LoanCost + breakdown.LifestyleCost + breakdown.Savings

	return breakdown
}

// ComputeVariableCosts recomputes only the market-sensitive components with
// the identical formulas, for cheap periodic drift comparison.
func ComputeVariableCosts(profile *domain.UserProfile, snapshot *domain.MarketSnapshot) domain.VariableCosts {
	costs := domain.VariableCosts{
		Gas:       gasCost(profile, snapshot),
		Groceries: groceryCost(profile, snapshot),
		PetCost:   petCost(profile, snapshot),
	}
	costs.Total = costs.Gas + costs.Groceries + costs.PetCost

	return costs
}

// gasCost is the monthly fuel spend for car commuters, zero otherwise.
func gasCost(profile *domain.UserProfile, snapshot *domain.MarketSnapshot) float64 {
	if profile.TransportMode != domain.TransportCar {
		return 0
	}

	efficiency := reference.FuelEfficiency(profile.CarType)
	dailyCost := (profile.CommuteDistance / efficiency) * snapshot.GasPrice

	return math.Round(dailyCost * commuteDaysPerMonth)
}

// transportFare resolves the public-transport line: the scraped monthly pass
// when available, the fixed default otherwise.
func transportFare(snapshot *domain.MarketSnapshot) float64 {
	if snapshot.TransportFare != nil && snapshot.TransportFare.Monthly > 0 {
		return snapshot.TransportFare.Monthly
	}

	return defaultTransportFare
}

// groceryCost budgets from the per-country baseline, never from scraped
// absolute prices: line items only reach the estimate through the store-tier
// multiplier.
func groceryCost(profile *domain.UserProfile, snapshot *domain.MarketSnapshot) float64 {
	country := reference.CountryByCode(profile.CountryCode)
	householdSize := float64(profile.Adults) + float64(profile.Kids)*kidConsumptionWeight

	return math.Round(country.GroceryPerPerson * householdSize * groceryMultiplier(snapshot))
}

func petCost(profile *domain.UserProfile, snapshot *domain.MarketSnapshot) float64 {
	country := reference.CountryByCode(profile.CountryCode)

	var base float64
	if profile.Pets.Dog {
		base += country.PetCare
	}
	if profile.Pets.Cat {
		base += country.PetCare * catCostWeight
	}

	return math.Round(base * groceryMultiplier(snapshot))
}

func groceryMultiplier(snapshot *domain.MarketSnapshot) float64 {
	if snapshot == nil || snapshot.GroceryMultiplier == 0 {
		return 1.0
	}

	return snapshot.GroceryMultiplier
}
