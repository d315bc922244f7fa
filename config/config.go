// Package config loads the clinic server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Clinic    ClinicConfig
	Reporting ReportingConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port int
}

// DatabaseConfig selects the ledger and patient store.
// ":memory:" keeps everything for the process lifetime only.
type DatabaseConfig struct {
	Path string
}

// ClinicConfig holds the catalog source and the receipt header.
type ClinicConfig struct {
	Name        string
	CatalogFile string // empty = built-in default catalog
}

// ReportingConfig holds end-of-day report settings.
type ReportingConfig struct {
	CronSchedule      string
	LowStockThreshold int
	Timezone          string
}

type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	port, err := getenvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	threshold, err := getenvInt("LOW_STOCK_THRESHOLD", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getenvWithDefault("DATABASE_PATH", ":memory:"),
		},
		Clinic: ClinicConfig{
			Name:        getenvWithDefault("CLINIC_NAME", "KLINIK HEWAN VETCARE"),
			CatalogFile: os.Getenv("CATALOG_FILE"),
		},
		Reporting: ReportingConfig{
			CronSchedule:      getenvWithDefault("REPORT_CRON_SCHEDULE", "0 21 * * *"),
			LowStockThreshold: threshold,
			Timezone:          getenvWithDefault("TIMEZONE", "Asia/Jakarta"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("APP_PORT %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}
	if c.Clinic.Name == "" {
		return errors.New("CLINIC_NAME must not be empty")
	}
	if c.Reporting.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.Reporting.CronSchedule != "" {
		if _, err := cron.ParseStandard(c.Reporting.CronSchedule); err != nil {
			return fmt.Errorf("REPORT_CRON_SCHEDULE: %w", err)
		}
	}
	if _, err := c.Reporting.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}

	return nil
}

// Location resolves the reporting timezone.
func (r ReportingConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}
