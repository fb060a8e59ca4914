// Package report renders risk-normalization results for the console.
// The engine itself produces no output; everything printable lives here.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/quantlab/risknorm/internal/engine"
)

// RunMeta describes the run whose result is being reported.
type RunMeta struct {
	Source     string // trade file path, or "inline"
	Mode       string // "sequential" or "parallel"
	Seed       int64
	TradeCount int
	Params     engine.Params
	Duration   time.Duration
}

// Print writes a formatted report of a completed run.
func Print(w io.Writer, res *engine.Result, meta RunMeta) {
	fmt.Fprintln(w, "=== Risk Normalization ===")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "📄 Input")
	fmt.Fprintf(w, "Source:           %s\n", meta.Source)
	fmt.Fprintf(w, "Trades:           %d\n", meta.TradeCount)
	fmt.Fprintf(w, "Mode:             %s\n", meta.Mode)
	fmt.Fprintf(w, "Seed:             %d\n", meta.Seed)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "⚙️  Parameters")
	fmt.Fprintf(w, "Forecast:         %d days / %d trades\n", meta.Params.DaysInForecast, meta.Params.TradesInForecast)
	fmt.Fprintf(w, "Initial Capital:  %.2f\n", meta.Params.InitialCapital)
	fmt.Fprintf(w, "Tail Percentile:  %.1f\n", meta.Params.TailPercentile)
	fmt.Fprintf(w, "Drawdown Tol:     %.2f%%\n", meta.Params.DrawdownTolerance*100)
	fmt.Fprintf(w, "Curves per CDF:   %d\n", meta.Params.CurvesPerCDF)
	fmt.Fprintf(w, "Repetitions:      %d\n", meta.Params.Repetitions)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "📊 Results")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "safe-f mean:      %.5f\n", res.SafeFMean)
	fmt.Fprintf(w, "safe-f stdev:     %.5f\n", res.SafeFStdev)
	fmt.Fprintf(w, "CAR25 mean:       %.5f%%\n", res.CAR25Mean)
	fmt.Fprintf(w, "CAR25 stdev:      %.5f\n", res.CAR25Stdev)
	fmt.Fprintln(w, strings.Repeat("-", 40))

	fmt.Fprintf(w, "Position size:    %s\n", describeSafeF(res.SafeFMean))
	if meta.Duration > 0 {
		fmt.Fprintf(w, "Duration:         %.2fs\n", meta.Duration.Seconds())
	}
	fmt.Fprintln(w)
}

// describeSafeF gives a qualitative reading of the calibrated fraction.
func describeSafeF(safeF float64) string {
	switch {
	case safeF >= 2.0:
		return fmt.Sprintf("%.2fx leverage supported ⚠️  verify data quality", safeF)
	case safeF >= 1.0:
		return fmt.Sprintf("full allocation plus %.0f%% leverage", (safeF-1)*100)
	case safeF >= 0.5:
		return fmt.Sprintf("%.0f%% of capital per trade", safeF*100)
	default:
		return fmt.Sprintf("%.0f%% of capital per trade (high tail risk)", safeF*100)
	}
}
