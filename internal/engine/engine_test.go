package engine

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/risknorm/internal/tradefile"
)

// testParams keeps runs fast: small curves and short forecasts are enough
// to exercise the full calibrate/aggregate path.
func testParams() Params {
	return Params{
		DaysInForecast:    100,
		TradesInForecast:  100,
		InitialCapital:    100_000,
		TailPercentile:    5.0,
		DrawdownTolerance: 0.10,
		CurvesPerCDF:      200,
		Repetitions:       3,
	}
}

// testTrades is a mildly profitable synthetic strategy.
func testTrades() []float64 {
	return tradefile.Generate(500, 0.001, 0.003, 12345)
}

func TestRunSequential(t *testing.T) {
	eng := New(nil)

	result, err := eng.RunSequential(testTrades(), testParams(), 42)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Greater(t, result.SafeFMean, 0.0)
	assert.LessOrEqual(t, result.SafeFMean, 10.0)
	assert.GreaterOrEqual(t, result.SafeFStdev, 0.0)
	assert.GreaterOrEqual(t, result.CAR25Stdev, 0.0)
}

func TestRunSequential_Deterministic(t *testing.T) {
	eng := New(nil)
	trades := testTrades()
	p := testParams()

	a, err := eng.RunSequential(trades, p, 42)
	require.NoError(t, err)
	b, err := eng.RunSequential(trades, p, 42)
	require.NoError(t, err)

	// Same trades, params and seed must reproduce bit-identical output.
	assert.Equal(t, a, b)
}

func TestRunSequential_SeedChangesOutput(t *testing.T) {
	eng := New(nil)
	trades := testTrades()
	p := testParams()

	a, err := eng.RunSequential(trades, p, 1)
	require.NoError(t, err)
	b, err := eng.RunSequential(trades, p, 2)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRunParallel(t *testing.T) {
	eng := New(nil)
	p := testParams()
	p.Workers = 2

	result, err := eng.RunParallel(testTrades(), p, 42)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Greater(t, result.SafeFMean, 0.0)
	assert.LessOrEqual(t, result.SafeFMean, 10.0)
}

func TestRunParallel_Deterministic(t *testing.T) {
	eng := New(nil)
	trades := testTrades()
	p := testParams()
	p.Workers = 1

	// With one worker results arrive in submission order, so repeated
	// runs with the same master seed are bit-identical.
	a, err := eng.RunParallel(trades, p, 42)
	require.NoError(t, err)
	b, err := eng.RunParallel(trades, p, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// More workers reorder the floating-point accumulation but each
	// trial still runs on the same derived seed.
	p.Workers = 4
	c, err := eng.RunParallel(trades, p, 42)
	require.NoError(t, err)
	assert.InDelta(t, a.SafeFMean, c.SafeFMean, 1e-9)
	assert.InDelta(t, a.CAR25Mean, c.CAR25Mean, 1e-9)
}

func TestSequentialAndParallelAgree(t *testing.T) {
	eng := New(nil)
	trades := testTrades()
	p := testParams()
	p.Repetitions = 4
	p.CurvesPerCDF = 300

	seq, err := eng.RunSequential(trades, p, 7)
	require.NoError(t, err)
	par, err := eng.RunParallel(trades, p, 7)
	require.NoError(t, err)

	// The two modes consume randomness differently, so only statistical
	// agreement is expected, not bit equality.
	require.Greater(t, seq.SafeFMean, 0.0)
	relDiff := math.Abs(seq.SafeFMean-par.SafeFMean) / seq.SafeFMean
	assert.Less(t, relDiff, 0.5, "sequential %.4f vs parallel %.4f", seq.SafeFMean, par.SafeFMean)
}

func TestRun_Progress(t *testing.T) {
	eng := New(nil)
	p := testParams()

	var mu sync.Mutex
	seen := make(map[int]bool)
	eng.OnProgress(func(rep int, safeF, car25 float64) {
		mu.Lock()
		defer mu.Unlock()
		seen[rep] = true
		assert.Greater(t, safeF, 0.0)
	})

	_, err := eng.RunSequential(testTrades(), p, 42)
	require.NoError(t, err)

	assert.Len(t, seen, p.Repetitions, "one progress call per repetition")
	for rep := 0; rep < p.Repetitions; rep++ {
		assert.True(t, seen[rep])
	}
}

func TestRun_InvalidInputs(t *testing.T) {
	eng := New(nil)
	trades := testTrades()

	cases := []struct {
		name   string
		trades []float64
		mutate func(*Params)
	}{
		{"empty trades", nil, func(p *Params) {}},
		{"zero capital", trades, func(p *Params) { p.InitialCapital = 0 }},
		{"negative capital", trades, func(p *Params) { p.InitialCapital = -1 }},
		{"zero days", trades, func(p *Params) { p.DaysInForecast = 0 }},
		{"zero trades per forecast", trades, func(p *Params) { p.TradesInForecast = 0 }},
		{"percentile too high", trades, func(p *Params) { p.TailPercentile = 100 }},
		{"percentile too low", trades, func(p *Params) { p.TailPercentile = 0 }},
		{"tolerance too high", trades, func(p *Params) { p.DrawdownTolerance = 1.0 }},
		{"tolerance too low", trades, func(p *Params) { p.DrawdownTolerance = 0 }},
		{"zero curves", trades, func(p *Params) { p.CurvesPerCDF = 0 }},
		{"zero repetitions", trades, func(p *Params) { p.Repetitions = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams()
			tc.mutate(&p)

			_, err := eng.RunSequential(tc.trades, p, 42)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)

			_, err = eng.RunParallel(tc.trades, p, 42)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	assert.Equal(t, 504, p.DaysInForecast)
	assert.Equal(t, 504, p.TradesInForecast)
	assert.Equal(t, 100_000.0, p.InitialCapital)
	assert.Equal(t, 5.0, p.TailPercentile)
	assert.Equal(t, 0.10, p.DrawdownTolerance)
	assert.Equal(t, 1000, p.CurvesPerCDF)
	assert.Equal(t, 5, p.Repetitions)
	assert.NoError(t, p.Validate())
}

func TestParams_FillDefaults(t *testing.T) {
	defaults := DefaultParams()

	filled := Params{}.FillDefaults(defaults)
	assert.Equal(t, defaults, filled)

	// Explicit fields survive
	filled = Params{InitialCapital: 50_000, Repetitions: 9}.FillDefaults(defaults)
	assert.Equal(t, 50_000.0, filled.InitialCapital)
	assert.Equal(t, 9, filled.Repetitions)
	assert.Equal(t, 504, filled.DaysInForecast)

	// TradesInForecast falls back to the forecast horizon
	filled = Params{DaysInForecast: 300}.FillDefaults(Params{})
	assert.Equal(t, 300, filled.TradesInForecast)
}

func TestComputationError(t *testing.T) {
	err := &ComputationError{Fraction: 1.25, Repetition: 3, Reason: "boom"}
	assert.Contains(t, err.Error(), "repetition 3")
	assert.Contains(t, err.Error(), "boom")
}
