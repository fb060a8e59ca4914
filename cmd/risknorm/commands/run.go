package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/risknorm/internal/engine"
	"github.com/quantlab/risknorm/internal/history"
	"github.com/quantlab/risknorm/internal/report"
	"github.com/quantlab/risknorm/internal/tradefile"
	"github.com/quantlab/risknorm/pkg/config"
	"github.com/quantlab/risknorm/pkg/database"
	"github.com/quantlab/risknorm/pkg/logger"
)

// runCmd estimates safe-f and CAR25 for a trade list file.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate safe-f and CAR25 for a trade file",
	Long: `Reads a trade list (one fractional return per line, header lines are
skipped) and estimates the risk-normalized position size.

Example:
  risknorm run --file trades.csv
  risknorm run --file trades.csv --parallel --workers 8
  risknorm run --file trades.csv --seed 42 --drawdown 0.10 --tail 5
  risknorm run --file trades.csv --save`,
	RunE: runNormalization,
}

var (
	runFile     string
	runParallel bool
	runSeed     int64
	runWorkers  int
	runSave     bool

	// Simulation parameter overrides; 0 = use configured default
	runCapital  float64
	runDays     int
	runTrades   int
	runTail     float64
	runDrawdown float64
	runCurves   int
	runReps     int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFile, "file", "", "trade list file (required)")
	runCmd.Flags().BoolVar(&runParallel, "parallel", false, "run repetitions on a worker pool")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed (0: derived from wall clock)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "worker count in parallel mode (0: NumCPU)")
	runCmd.Flags().BoolVar(&runSave, "save", false, "persist the result to run history (needs DATABASE_URL)")

	runCmd.Flags().Float64Var(&runCapital, "capital", 0, "initial capital")
	runCmd.Flags().IntVar(&runDays, "days", 0, "forecast horizon in trading days")
	runCmd.Flags().IntVar(&runTrades, "trades-per-forecast", 0, "trades drawn per equity curve (0: one per day)")
	runCmd.Flags().Float64Var(&runTail, "tail", 0, "tail percentile, e.g. 5")
	runCmd.Flags().Float64Var(&runDrawdown, "drawdown", 0, "drawdown tolerance, e.g. 0.10")
	runCmd.Flags().IntVar(&runCurves, "curves", 0, "equity curves per CDF estimate")
	runCmd.Flags().IntVar(&runReps, "reps", 0, "number of repetitions")

	runCmd.MarkFlagRequired("file")
}

func runNormalization(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	trades, err := tradefile.Read(runFile)
	if err != nil {
		return err
	}

	params := engine.Params{
		DaysInForecast:    runDays,
		TradesInForecast:  runTrades,
		InitialCapital:    runCapital,
		TailPercentile:    runTail,
		DrawdownTolerance: runDrawdown,
		CurvesPerCDF:      runCurves,
		Repetitions:       runReps,
		Workers:           runWorkers,
	}.FillDefaults(simDefaults(cfg))

	seed := runSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mode := "sequential"
	if runParallel {
		mode = "parallel"
	}

	fmt.Printf("Processing %s: %d trades, %s mode\n", runFile, len(trades), mode)

	eng := engine.New(log)
	if verbose {
		eng.OnProgress(func(rep int, safeF, car25 float64) {
			fmt.Printf("  repetition %d: safe-f %.5f, CAR25 %.5f%%\n", rep, safeF, car25)
		})
	}

	start := time.Now()
	var result *engine.Result
	if runParallel {
		result, err = eng.RunParallel(trades, params, seed)
	} else {
		result, err = eng.RunSequential(trades, params, seed)
	}
	if err != nil {
		return fmt.Errorf("risk normalization failed: %w", err)
	}
	duration := time.Since(start)

	report.Print(os.Stdout, result, report.RunMeta{
		Source:     runFile,
		Mode:       mode,
		Seed:       seed,
		TradeCount: len(trades),
		Params:     params,
		Duration:   duration,
	})

	if runSave {
		if err := saveRun(cfg, runFile, mode, seed, len(trades), params, result, duration); err != nil {
			return err
		}
		fmt.Println("💾 Result saved to run history")
	}

	return nil
}

// simDefaults maps the configured simulation defaults to engine params.
func simDefaults(cfg *config.Config) engine.Params {
	return engine.Params{
		DaysInForecast:    cfg.Sim.ForecastDays,
		InitialCapital:    cfg.Sim.InitialCapital,
		TailPercentile:    cfg.Sim.TailPercentile,
		DrawdownTolerance: cfg.Sim.DrawdownTolerance,
		CurvesPerCDF:      cfg.Sim.CurvesPerCDF,
		Repetitions:       cfg.Sim.Repetitions,
	}
}

func saveRun(cfg *config.Config, source, mode string, seed int64, tradeCount int, params engine.Params, result *engine.Result, duration time.Duration) error {
	if !cfg.HistoryEnabled() {
		return fmt.Errorf("--save requires DATABASE_URL to be configured")
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := history.NewRepository(db.Pool)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	return repo.Save(ctx, &history.Run{
		Source:     source,
		Mode:       mode,
		Seed:       seed,
		TradeCount: tradeCount,
		Params:     params,
		Result:     *result,
		DurationMs: duration.Milliseconds(),
	})
}
