package budget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/domain"
)

func validProfile() *domain.UserProfile {
	p := czProfile()
	NormalizeProfile(p)
	return p
}

func TestValidateProfile_Valid(t *testing.T) {
	assert.NoError(t, ValidateProfile(validProfile()))
}

func TestValidateProfile_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.UserProfile)
	}{
		{"no adults", func(p *domain.UserProfile) { p.Adults = 0 }},
		{"negative kids", func(p *domain.UserProfile) { p.Kids = -1 }},
		{"zero savings months", func(p *domain.UserProfile) { p.SavingsMonths = 0 }},
		{"negative rent", func(p *domain.UserProfile) { p.Rent = -1 }},
		{"negative loans", func(p *domain.UserProfile) { p.Loans = -500 }},
		{"nan income", func(p *domain.UserProfile) { p.Income = math.NaN() }},
		{"infinite commute", func(p *domain.UserProfile) { p.CommuteDistance = math.Inf(1) }},
		{"unknown transport mode", func(p *domain.UserProfile) { p.TransportMode = "teleport" }},
		{"negative mobile count", func(p *domain.UserProfile) { p.MobileCount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := validProfile()
			tt.mutate(profile)

			err := ValidateProfile(profile)
			require.Error(t, err)

			var appErr *apperr.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "E100", appErr.Code)
			assert.False(t, appErr.Retryable)
		})
	}
}

func TestNormalizeProfile_FillsCountryDefaults(t *testing.T) {
	profile := &domain.UserProfile{CountryCode: "CZ", Adults: 1}
	NormalizeProfile(profile)

	assert.Equal(t, "Kč", profile.Currency)
	assert.Equal(t, "km", profile.Unit)
	assert.Equal(t, domain.TransportPublic, profile.TransportMode)
}

func TestNormalizeProfile_RepairsEmptySavings(t *testing.T) {
	profile := &domain.UserProfile{CountryCode: "US", Adults: 1}
	NormalizeProfile(profile)

	assert.Equal(t, 1, profile.SavingsMonths)
	assert.NoError(t, ValidateProfile(profile))
}

func TestNormalizeProfile_KeepsSavingsGoalStrict(t *testing.T) {
	// A real savings target with no horizon stays invalid; normalization
	// never invents a payoff schedule.
	profile := &domain.UserProfile{CountryCode: "US", Adults: 1, SavingsTarget: 5000}
	NormalizeProfile(profile)

	assert.Error(t, ValidateProfile(profile))
}

func TestNormalizeProfile_MobileCountDefaultsToOneLine(t *testing.T) {
	profile := &domain.UserProfile{CountryCode: "US", Adults: 1, MobileCost: 40}
	NormalizeProfile(profile)

	assert.Equal(t, 1, profile.MobileCount)
}

func TestNormalizeProfile_PreservesExplicitValues(t *testing.T) {
	profile := &domain.UserProfile{
		CountryCode:   "DE",
		Currency:      "$",
		Unit:          "miles",
		Adults:        2,
		TransportMode: domain.TransportCar,
		MobileCost:    30,
		MobileCount:   3,
	}
	NormalizeProfile(profile)

	assert.Equal(t, "$", profile.Currency)
	assert.Equal(t, "miles", profile.Unit)
	assert.Equal(t, domain.TransportCar, profile.TransportMode)
	assert.Equal(t, 3, profile.MobileCount)
}
