package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/risknorm/internal/api"
	"github.com/quantlab/risknorm/internal/api/handlers"
	"github.com/quantlab/risknorm/internal/history"
	"github.com/quantlab/risknorm/internal/scheduler"
	"github.com/quantlab/risknorm/pkg/config"
	"github.com/quantlab/risknorm/pkg/database"
	"github.com/quantlab/risknorm/pkg/logger"
)

// serveCmd starts the HTTP API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves risk-normalization runs over HTTP:

  POST /api/normalize      one-shot run (trades and parameters in the body)
  GET  /api/normalize/ws   websocket run with per-repetition progress
  GET  /api/runs           persisted run history (needs DATABASE_URL)
  GET  /health

When SCHEDULE_SPEC and TRADES_FILE are configured, a cron job re-runs the
estimation on that file and persists each result.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	// Optional persistence
	var repo *history.Repository
	if cfg.HistoryEnabled() {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo = history.NewRepository(db.Pool)
		if err := repo.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info("Run history enabled")
	} else {
		log.Warn("DATABASE_URL not set; run history disabled")
	}

	defaults := simDefaults(cfg)

	normalizeHandler := handlers.NewNormalizeHandler(log, defaults, repo)
	var runsHandler *handlers.RunsHandler
	if repo != nil {
		runsHandler = handlers.NewRunsHandler(log, repo)
	}

	router := api.NewRouter(cfg, normalizeHandler, runsHandler, log)
	server := api.New(cfg, log, router)

	// Optional scheduled re-estimation
	if cfg.ScheduleEnabled() {
		sched := scheduler.New(log)
		job := scheduler.NewReestimateJob(cfg.Schedule.TradesFile, cfg.Schedule.Spec, defaults, repo, log)
		if err := sched.AddJob(job); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
