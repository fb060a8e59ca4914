package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "risknorm",
	Short: "Risk normalization - safe-f and CAR25 for a trade list",
	Long: `risknorm estimates the safe position-sizing fraction (safe-f) and the
pessimistic-quartile compound annual return (CAR25) for a trading
strategy, by Monte Carlo resampling of its historical trade list.

Usage:
  risknorm run --file trades.csv
  risknorm run --file trades.csv --parallel --seed 42
  risknorm generate --out trades.csv
  risknorm serve
  risknorm history`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
