package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalibrateSafeFraction_LinearEstimator(t *testing.T) {
	// Tail risk rising linearly with the fraction: risk(f) = f/10.
	// The root of risk(f) = 0.05 is f = 0.5.
	estimate := func(fraction float64) float64 { return fraction / 10.0 }

	fraction := calibrateSafeFraction(estimate, 0.05)

	assert.InDelta(t, 0.05, estimate(fraction), convergenceTolerance)
	assert.InDelta(t, 0.5, fraction, convergenceTolerance*10)
}

func TestCalibrateSafeFraction_SteepEstimator(t *testing.T) {
	// A sharp sigmoid around f = 2 forces many bisection steps before
	// the estimate lands inside the tolerance band.
	estimate := func(fraction float64) float64 {
		return 1.0 / (1.0 + math.Exp(-40*(fraction-2.0)))
	}

	fraction := calibrateSafeFraction(estimate, 0.05)

	assert.InDelta(t, 0.05, estimate(fraction), convergenceTolerance)
	assert.Greater(t, fraction, 0.0)
	assert.Less(t, fraction, 2.0, "5% risk sits below the sigmoid midpoint")
}

func TestCalibrateSafeFraction_NoRoot(t *testing.T) {
	// Risk constant at zero: no fraction ever reaches the target, the
	// search walks to the upper bound and reports the last midpoint.
	fraction := calibrateSafeFraction(func(float64) float64 { return 0 }, 0.05)

	assert.Greater(t, fraction, 9.9)
	assert.LessOrEqual(t, fraction, fractionUpperBound)
}

func TestCalibrateSafeFraction_AlwaysRisky(t *testing.T) {
	// Risk constant at one: the search collapses toward zero.
	fraction := calibrateSafeFraction(func(float64) float64 { return 1 }, 0.05)

	assert.GreaterOrEqual(t, fraction, fractionLowerBound)
	assert.Less(t, fraction, 0.1)
}
