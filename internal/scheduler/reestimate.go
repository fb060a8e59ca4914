package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/quantlab/risknorm/internal/engine"
	"github.com/quantlab/risknorm/internal/history"
	"github.com/quantlab/risknorm/internal/tradefile"
	"github.com/quantlab/risknorm/pkg/logger"
)

// ReestimateJob re-reads a trade file, runs a parallel risk
// normalization on it, and persists the result to the run history.
type ReestimateJob struct {
	tradesFile string
	schedule   string
	params     engine.Params
	repo       *history.Repository // nil: result is only logged
	log        *logger.Logger
}

// NewReestimateJob creates the periodic re-estimation job. repo may be
// nil, in which case results are logged but not persisted.
func NewReestimateJob(tradesFile, schedule string, params engine.Params, repo *history.Repository, log *logger.Logger) *ReestimateJob {
	return &ReestimateJob{
		tradesFile: tradesFile,
		schedule:   schedule,
		params:     params,
		repo:       repo,
		log:        log.WithField("job", "reestimate"),
	}
}

// Name returns the job name.
func (j *ReestimateJob) Name() string { return "reestimate" }

// Schedule returns the cron expression.
func (j *ReestimateJob) Schedule() string { return j.schedule }

// Run performs one re-estimation pass.
func (j *ReestimateJob) Run(ctx context.Context) error {
	trades, err := tradefile.Read(j.tradesFile)
	if err != nil {
		return fmt.Errorf("read trades: %w", err)
	}

	params := engine.Params{}.FillDefaults(j.params)
	seed := time.Now().UnixNano()

	start := time.Now()
	result, err := engine.New(j.log).RunParallel(trades, params, seed)
	if err != nil {
		return fmt.Errorf("risk normalization: %w", err)
	}
	duration := time.Since(start)

	j.log.WithFields(map[string]interface{}{
		"file":        j.tradesFile,
		"trades":      len(trades),
		"safe_f_mean": result.SafeFMean,
		"car25_mean":  result.CAR25Mean,
		"duration":    duration,
	}).Info("Re-estimation completed")

	if j.repo == nil {
		return nil
	}

	run := &history.Run{
		Source:     j.tradesFile,
		Mode:       "parallel",
		Seed:       seed,
		TradeCount: len(trades),
		Params:     params,
		Result:     *result,
		DurationMs: duration.Milliseconds(),
	}
	if err := j.repo.Save(ctx, run); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}

	return nil
}
