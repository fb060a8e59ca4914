package engine

import "math/rand"

// simulateEquityCurve draws steps trades uniformly at random from trades
// and compounds them at the given capital fraction, starting from
// initialCapital. It returns the equity curve (length steps+1, first
// element initialCapital) and its maximum drawdown.
//
// Equity is not floored at zero: a sufficiently negative trade combined
// with a large fraction can drive it negative. Downstream CAGR conversion
// guards against nonpositive equity.
//
// Advances rng by exactly steps draws.
func simulateEquityCurve(trades []float64, fraction float64, steps int, initialCapital float64, rng *rand.Rand) ([]float64, float64) {
	curve := make([]float64, 0, steps+1)
	curve = append(curve, initialCapital)

	equity := initialCapital
	for i := 0; i < steps; i++ {
		idx := rng.Intn(len(trades))
		tradeReturn := trades[idx] * fraction * equity
		equity += tradeReturn
		curve = append(curve, equity)
	}

	return curve, maxDrawdown(curve)
}

// maxDrawdown returns the largest peak-to-trough decline of the curve as
// a proportion of the running peak, in a single pass.
func maxDrawdown(curve []float64) float64 {
	peak := curve[0]
	maxDD := 0.0
	for _, equity := range curve[1:] {
		if equity > peak {
			peak = equity
		}
		drawdown := (peak - equity) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}
