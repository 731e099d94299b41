package reference

import "github.com/budgetpilot/budgetpilot/internal/domain"

// fuelEfficiency maps car types to distance units per unit of fuel. One
// canonical table is used everywhere; the commute formula divides daily
// distance by this figure.
var fuelEfficiency = map[domain.CarType]float64{
	domain.CarSedan:  28,
	domain.CarSUV:    20,
	domain.CarTruck:  17,
	domain.CarHybrid: 45,
	domain.CarEV:     100,
}

// DefaultFuelEfficiency is applied when the profile carries an unknown or
// absent car type.
const DefaultFuelEfficiency = 25.0

// FuelEfficiency returns the efficiency figure for a car type.
func FuelEfficiency(carType domain.CarType) float64 {
	if eff, ok := fuelEfficiency[carType]; ok {
		return eff
	}

	return DefaultFuelEfficiency
}
