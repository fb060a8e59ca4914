package engine

import "math"

// calibrateSafeFraction finds the capital fraction whose tail risk
// matches target within convergenceTolerance, by bisection over
// [fractionLowerBound, fractionUpperBound].
//
// Precondition: estimate must be monotonically non-decreasing in the
// fraction. This is not verified at runtime; with a small number of
// curves per estimate the Monte Carlo noise can break it locally.
//
// If the cap of maxBisectionIters is reached without convergence the last
// midpoint is returned as-is, with no distinguished signal.
func calibrateSafeFraction(estimate func(fraction float64) float64, target float64) float64 {
	lower := fractionLowerBound
	upper := fractionUpperBound
	fraction := (lower + upper) / 2.0

	for iter := 0; iter < maxBisectionIters; iter++ {
		fraction = (lower + upper) / 2.0
		tailRisk := estimate(fraction)

		if math.Abs(tailRisk-target) < convergenceTolerance {
			break
		}
		if tailRisk > target {
			// Risk too high: shrink the allowed fraction.
			upper = fraction
		} else {
			lower = fraction
		}
	}

	return fraction
}
