package engine

// Fixed numerical constants of the calibration procedure.
// These are part of the method, not tunables.
const (
	convergenceTolerance = 0.003
	maxBisectionIters    = 1000
	fractionLowerBound   = 0.0
	fractionUpperBound   = 10.0
	tradingDaysPerYear   = 252.0
)

// Params holds the simulation parameters for one risk-normalization run.
type Params struct {
	DaysInForecast    int     `json:"days_in_forecast"`   // forecast horizon in trading days
	TradesInForecast  int     `json:"trades_in_forecast"` // trades drawn per equity curve
	InitialCapital    float64 `json:"initial_capital"`
	TailPercentile    float64 `json:"tail_percentile"`    // 5 => drawdown measured at the 95th percentile
	DrawdownTolerance float64 `json:"drawdown_tolerance"` // proportion of peak equity, in (0,1)
	CurvesPerCDF      int     `json:"curves_per_cdf"`     // equity curves per tail/percentile estimate
	Repetitions       int     `json:"repetitions"`        // independent safe-f/CAR25 trials
	Workers           int     `json:"workers,omitempty"`  // parallel mode only; 0 = NumCPU
}

// DefaultParams returns the conventional parameter set: a two year
// forecast on a $100,000 account with a 10% drawdown tolerance measured
// at the 95th percentile.
func DefaultParams() Params {
	return Params{
		DaysInForecast:    504,
		TradesInForecast:  504,
		InitialCapital:    100_000.0,
		TailPercentile:    5.0,
		DrawdownTolerance: 0.10,
		CurvesPerCDF:      1000,
		Repetitions:       5,
	}
}

// FillDefaults returns p with zero-valued fields taken from defaults.
// A missing TradesInForecast falls back to DaysInForecast (one
// marked-to-market trade per trading day).
func (p Params) FillDefaults(defaults Params) Params {
	if p.DaysInForecast == 0 {
		p.DaysInForecast = defaults.DaysInForecast
	}
	if p.InitialCapital == 0 {
		p.InitialCapital = defaults.InitialCapital
	}
	if p.TailPercentile == 0 {
		p.TailPercentile = defaults.TailPercentile
	}
	if p.DrawdownTolerance == 0 {
		p.DrawdownTolerance = defaults.DrawdownTolerance
	}
	if p.CurvesPerCDF == 0 {
		p.CurvesPerCDF = defaults.CurvesPerCDF
	}
	if p.Repetitions == 0 {
		p.Repetitions = defaults.Repetitions
	}
	if p.TradesInForecast == 0 {
		p.TradesInForecast = defaults.TradesInForecast
	}
	if p.TradesInForecast == 0 {
		p.TradesInForecast = p.DaysInForecast
	}
	return p
}

// Validate checks the caller-side preconditions. No simulation is
// attempted when any of them fails.
func (p Params) Validate() error {
	if p.DaysInForecast < 1 {
		return invalidInputf("days in forecast must be >= 1, got %d", p.DaysInForecast)
	}
	if p.TradesInForecast < 1 {
		return invalidInputf("trades in forecast must be >= 1, got %d", p.TradesInForecast)
	}
	if p.InitialCapital <= 0 {
		return invalidInputf("initial capital must be positive, got %g", p.InitialCapital)
	}
	if p.TailPercentile <= 0 || p.TailPercentile >= 100 {
		return invalidInputf("tail percentile must be in (0,100), got %g", p.TailPercentile)
	}
	if p.DrawdownTolerance <= 0 || p.DrawdownTolerance >= 1 {
		return invalidInputf("drawdown tolerance must be in (0,1), got %g", p.DrawdownTolerance)
	}
	if p.CurvesPerCDF < 1 {
		return invalidInputf("curves per CDF must be >= 1, got %d", p.CurvesPerCDF)
	}
	if p.Repetitions < 1 {
		return invalidInputf("repetitions must be >= 1, got %d", p.Repetitions)
	}
	return nil
}

// Result holds the four numbers a risk-normalization run produces:
// mean and standard deviation of safe-f and of CAR25 across repetitions.
type Result struct {
	SafeFMean  float64 `json:"safe_f_mean"`
	SafeFStdev float64 `json:"safe_f_stdev"`
	CAR25Mean  float64 `json:"car25_mean"`
	CAR25Stdev float64 `json:"car25_stdev"`
}
