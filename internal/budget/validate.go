package budget

import (
	"fmt"
	"math"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/domain"
	"github.com/budgetpilot/budgetpilot/internal/reference"
)

// NormalizeProfile fills the defaults historical records are allowed to omit.
// It mutates the profile in place and must run before ValidateProfile.
func NormalizeProfile(profile *domain.UserProfile) {
	country := reference.CountryByCode(profile.CountryCode)

	if profile.Currency == "" {
		profile.Currency = country.Currency
	}
	if profile.Unit == "" {
		profile.Unit = country.Unit
	}
	if profile.TransportMode == "" {
		profile.TransportMode = domain.TransportPublic
	}
	if profile.MobileCount == 0 && profile.MobileCost > 0 {
		profile.MobileCount = 1
	}
	// A record with no savings goal carries no horizon either. Repairing it
	// here keeps the savings division total for every profile that passes
	// validation.
	if profile.SavingsMonths == 0 && profile.SavingsTarget == 0 {
		profile.SavingsMonths = 1
	}
}

// ValidateProfile rejects profiles the calculator cannot price. All failures
// come back as validation errors carrying a user-facing message.
func ValidateProfile(profile *domain.UserProfile) error {
	if profile.Adults < 1 {
		return apperr.NewValidationError("profile needs at least one adult")
	}
	if profile.Kids < 0 {
		return apperr.NewValidationError("kids count cannot be negative")
	}
	if profile.SavingsMonths < 1 {
		return apperr.NewValidationError("savings horizon must be at least one month")
	}
	if profile.MobileCount < 0 {
		return apperr.NewValidationError("mobile line count cannot be negative")
	}

	switch profile.TransportMode {
	case domain.TransportCar, domain.TransportPublic:
	default:
		return apperr.NewValidationError(
			fmt.Sprintf("unknown transport mode %q", profile.TransportMode))
	}

	amounts := map[string]float64{
		"income":          profile.Income,
		"rent":            profile.Rent,
		"internetCost":    profile.InternetCost,
		"mobileCost":      profile.MobileCost,
		"loans":           profile.Loans,
		"commuteDistance": profile.CommuteDistance,
		"savingsTarget":   profile.SavingsTarget,
		"gym":             profile.Lifestyle.Gym,
		"streaming":       profile.Lifestyle.Streaming,
		"music":           profile.Lifestyle.Music,
		"other":           profile.Lifestyle.Other,
	}
	for field, value := range amounts {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return apperr.NewValidationError(fmt.Sprintf("%s is not a finite number", field))
		}
		if value < 0 {
			return apperr.NewValidationError(fmt.Sprintf("%s cannot be negative", field))
		}
	}

	return nil
}
