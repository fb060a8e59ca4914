package engine

import (
	"math"
	"math/rand"
	"sort"
)

// calculateCAGR converts an initial/final equity pair over a number of
// years to a compound annual growth rate in percent. It returns 0 when
// any of the inputs is nonpositive, which also absorbs curves whose
// equity went to zero or below.
func calculateCAGR(initialEquity, finalEquity, years float64) float64 {
	if initialEquity <= 0 || finalEquity <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(finalEquity/initialEquity, 1.0/years) - 1.0) * 100.0
}

// aggregateCAR25 simulates p.CurvesPerCDF equity curves at the calibrated
// fraction, converts each final equity to a CAGR, and returns the value
// at the lower quartile of the sorted list (CAR25).
//
// The quartile index is ceil(0.25*N)-1, clamped to 0. With CurvesPerCDF
// >= 1 the lookup cannot fail structurally, but it stays a checked path.
func aggregateCAR25(trades []float64, fraction float64, p Params, repetition int, rng *rand.Rand) (float64, error) {
	years := float64(p.DaysInForecast) / tradingDaysPerYear

	cars := make([]float64, 0, p.CurvesPerCDF)
	for i := 0; i < p.CurvesPerCDF; i++ {
		curve, _ := simulateEquityCurve(trades, fraction, p.TradesInForecast, p.InitialCapital, rng)
		finalEquity := curve[len(curve)-1]
		cars = append(cars, calculateCAGR(p.InitialCapital, finalEquity, years))
	}

	sort.Float64s(cars)

	index := int(math.Ceil(0.25*float64(len(cars)))) - 1
	if index < 0 {
		index = 0
	}
	if index >= len(cars) {
		return 0, &ComputationError{
			Fraction:   fraction,
			Repetition: repetition,
			Reason:     "CAR25 quartile index out of range",
		}
	}

	return cars[index], nil
}
