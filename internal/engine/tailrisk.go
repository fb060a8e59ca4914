package engine

import "math/rand"

// estimateTailRisk simulates p.CurvesPerCDF equity curves at the given
// fraction and returns the empirical probability that the maximum
// drawdown exceeds p.DrawdownTolerance.
//
// This is the dominant cost center of a run: every call consumes
// CurvesPerCDF * TradesInForecast random draws from rng.
func estimateTailRisk(trades []float64, fraction float64, p Params, rng *rand.Rand) float64 {
	exceeded := 0
	for i := 0; i < p.CurvesPerCDF; i++ {
		_, maxDD := simulateEquityCurve(trades, fraction, p.TradesInForecast, p.InitialCapital, rng)
		if maxDD > p.DrawdownTolerance {
			exceeded++
		}
	}
	return float64(exceeded) / float64(p.CurvesPerCDF)
}
