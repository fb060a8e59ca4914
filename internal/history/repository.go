// Package history persists completed risk-normalization runs so that
// successive re-estimations of a live strategy can be compared over time.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantlab/risknorm/internal/engine"
)

// Run is one persisted risk-normalization run.
type Run struct {
	ID         int64         `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	Source     string        `json:"source"` // trade file path or "inline"
	Mode       string        `json:"mode"`   // sequential | parallel
	Seed       int64         `json:"seed"`
	TradeCount int           `json:"trade_count"`
	Params     engine.Params `json:"params"`
	Result     engine.Result `json:"result"`
	DurationMs int64         `json:"duration_ms"`
}

// Repository handles run persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new run repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the runs table if it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	ddl := `
		CREATE SCHEMA IF NOT EXISTS risknorm;
		CREATE TABLE IF NOT EXISTS risknorm.runs (
			id           BIGSERIAL PRIMARY KEY,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			source       TEXT NOT NULL,
			mode         TEXT NOT NULL,
			seed         BIGINT NOT NULL,
			trade_count  INT NOT NULL,
			params       JSONB NOT NULL,
			safe_f_mean  DOUBLE PRECISION NOT NULL,
			safe_f_stdev DOUBLE PRECISION NOT NULL,
			car25_mean   DOUBLE PRECISION NOT NULL,
			car25_stdev  DOUBLE PRECISION NOT NULL,
			duration_ms  BIGINT NOT NULL
		)
	`

	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to migrate runs table: %w", err)
	}
	return nil
}

// Save inserts a completed run and fills in its ID and CreatedAt.
func (r *Repository) Save(ctx context.Context, run *Run) error {
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	query := `
		INSERT INTO risknorm.runs (
			source, mode, seed, trade_count, params,
			safe_f_mean, safe_f_stdev, car25_mean, car25_stdev, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err = r.pool.QueryRow(ctx, query,
		run.Source, run.Mode, run.Seed, run.TradeCount, paramsJSON,
		run.Result.SafeFMean, run.Result.SafeFStdev,
		run.Result.CAR25Mean, run.Result.CAR25Stdev,
		run.DurationMs,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// List returns the most recent runs, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, created_at, source, mode, seed, trade_count, params,
		       safe_f_mean, safe_f_stdev, car25_mean, car25_stdev, duration_ms
		FROM risknorm.runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		var paramsJSON []byte

		err := rows.Scan(
			&run.ID, &run.CreatedAt, &run.Source, &run.Mode, &run.Seed,
			&run.TradeCount, &paramsJSON,
			&run.Result.SafeFMean, &run.Result.SafeFStdev,
			&run.Result.CAR25Mean, &run.Result.CAR25Stdev,
			&run.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if err := json.Unmarshal(paramsJSON, &run.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal params: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, nil
}
