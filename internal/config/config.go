// Package config loads and validates environment variables at startup.
// Fail-fast: if a variable is missing or malformed, the process exits with
// an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// DigestOff disables the evening digest when used as DIGEST_SCHEDULE.
const DigestOff = "off"

// Config holds all runtime configuration for the tracker service.
type Config struct {
	Port     string
	GRPCPort string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string
	RedisURL    string // optional

	DailyGoal      int
	Location       *time.Location
	DigestSchedule string // cron spec, or DigestOff

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and the environment and returns a
// validated Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:           get("TRACKER_PORT", "8082"),
		GRPCPort:       get("TRACKER_GRPC_PORT", "9082"),
		StoreDriver:    strings.ToLower(get("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:    get("DATABASE_URL", ""),
		SQLitePath:     get("SQLITE_PATH", "jobtracker.db"),
		RedisURL:       get("REDIS_URL", ""),
		DigestSchedule: get("DIGEST_SCHEDULE", "0 21 * * *"),
		LogLevel:       strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(get("LOG_FORMAT", "json")),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be one of postgres, sqlite, memory, got %q", cfg.StoreDriver)
	}

	goal := get("DAILY_GOAL", "5")
	v, err := strconv.Atoi(goal)
	if err != nil || v < 1 {
		return nil, fmt.Errorf("DAILY_GOAL must be a positive integer, got %q", goal)
	}
	cfg.DailyGoal = v

	tz := get("TRACKER_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("TRACKER_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if cfg.DigestSchedule != DigestOff {
		if _, err := cron.ParseStandard(cfg.DigestSchedule); err != nil {
			return nil, fmt.Errorf("DIGEST_SCHEDULE %q: %w", cfg.DigestSchedule, err)
		}
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// DigestEnabled reports whether the evening digest should be scheduled.
func (c *Config) DigestEnabled() bool { return c.DigestSchedule != DigestOff }
