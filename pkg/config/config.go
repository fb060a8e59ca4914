package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. Environment
// variables are read only in this package.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: run history is disabled when URL is empty)
	Database DatabaseConfig

	// API rate limiting
	RateLimit RateLimitConfig

	// Scheduled re-estimation (optional)
	Schedule ScheduleConfig

	// Simulation defaults, overridable per request / per CLI flag
	Sim SimConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RateLimitConfig holds API token-bucket settings.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// ScheduleConfig holds the periodic re-estimation job settings.
// The job runs only when both Spec and TradesFile are set.
type ScheduleConfig struct {
	Spec       string // cron expression, e.g. "0 18 * * MON-FRI"
	TradesFile string
}

// SimConfig holds default simulation parameters.
type SimConfig struct {
	InitialCapital    float64
	ForecastDays      int
	TailPercentile    float64
	DrawdownTolerance float64
	CurvesPerCDF      int
	Repetitions       int
}

// Load reads configuration from a .env file (if present) and the
// environment. Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		Schedule: ScheduleConfig{
			Spec:       getEnv("SCHEDULE_SPEC", ""),
			TradesFile: getEnv("TRADES_FILE", ""),
		},

		Sim: SimConfig{
			InitialCapital:    getEnvAsFloat("INITIAL_CAPITAL", 100_000),
			ForecastDays:      getEnvAsInt("FORECAST_DAYS", 504),
			TailPercentile:    getEnvAsFloat("TAIL_PERCENTILE", 5),
			DrawdownTolerance: getEnvAsFloat("DRAWDOWN_TOLERANCE", 0.10),
			CurvesPerCDF:      getEnvAsInt("CURVES_PER_CDF", 1000),
			Repetitions:       getEnvAsInt("REPETITIONS", 5),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks the values that would otherwise fail deep inside a run.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if c.Sim.DrawdownTolerance <= 0 || c.Sim.DrawdownTolerance >= 1 {
		return fmt.Errorf("DRAWDOWN_TOLERANCE must be in (0,1)")
	}
	if c.Sim.TailPercentile <= 0 || c.Sim.TailPercentile >= 100 {
		return fmt.Errorf("TAIL_PERCENTILE must be in (0,100)")
	}
	if c.Schedule.Spec != "" && c.Schedule.TradesFile == "" {
		return fmt.Errorf("SCHEDULE_SPEC requires TRADES_FILE")
	}
	return nil
}

// HistoryEnabled reports whether run persistence is configured.
func (c *Config) HistoryEnabled() bool {
	return c.Database.URL != ""
}

// ScheduleEnabled reports whether the periodic re-estimation job is
// configured.
func (c *Config) ScheduleEnabled() bool {
	return c.Schedule.Spec != "" && c.Schedule.TradesFile != ""
}

// loadEnvFile tries to load .env from likely locations.
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
