package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantlab/risknorm/internal/history"
	"github.com/quantlab/risknorm/pkg/config"
	"github.com/quantlab/risknorm/pkg/database"
	"github.com/quantlab/risknorm/pkg/logger"
)

// historyCmd lists persisted runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted normalization runs",
	Long: `Lists runs saved with "risknorm run --save" or through the API,
newest first. Requires DATABASE_URL.

Example:
  risknorm history
  risknorm history --limit 50`,
	RunE: runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 1 {
		return fmt.Errorf("limit must be >= 1, got %d", historyLimit)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	_ = logger.New(cfg)

	if !cfg.HistoryEnabled() {
		return fmt.Errorf("history requires DATABASE_URL to be configured")
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	repo := history.NewRepository(db.Pool)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	runs, err := repo.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		PrintWarning("No runs recorded yet")
		return nil
	}

	columns := []string{"ID", "CREATED", "SOURCE", "MODE", "TRADES", "SAFE-F", "CAR25", "TIME"}
	widths := []int{5, 19, 24, 10, 7, 9, 9, 8}

	fmt.Println()
	PrintTableHeader(columns, widths)
	for _, run := range runs {
		PrintTableRow([]string{
			fmt.Sprintf("%d", run.ID),
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			truncate(run.Source, widths[2]),
			run.Mode,
			fmt.Sprintf("%d", run.TradeCount),
			fmt.Sprintf("%.4f", run.Result.SafeFMean),
			fmt.Sprintf("%.3f%%", run.Result.CAR25Mean),
			fmt.Sprintf("%dms", run.DurationMs),
		}, widths)
	}
	fmt.Printf("\n%d run(s)\n", len(runs))

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
