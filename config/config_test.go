package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "DATABASE_PATH", "CLINIC_NAME", "CATALOG_FILE",
		"REPORT_CRON_SCHEDULE", "LOW_STOCK_THRESHOLD", "TIMEZONE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "KLINIK HEWAN VETCARE", cfg.Clinic.Name)
	assert.Empty(t, cfg.Clinic.CatalogFile)
	assert.Equal(t, "0 21 * * *", cfg.Reporting.CronSchedule)
	assert.Equal(t, 10, cfg.Reporting.LowStockThreshold)
	assert.Equal(t, "Asia/Jakarta", cfg.Reporting.Timezone)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, key := range []string{"APP_PORT", "DATABASE_PATH", "LOW_STOCK_THRESHOLD"} {
		require.NoError(t, os.Unsetenv(key))
	}
	path := filepath.Join(t.TempDir(), "test.env")
	body := "APP_PORT=9090\nDATABASE_PATH=/tmp/clinic.db\nLOW_STOCK_THRESHOLD=3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/clinic.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Reporting.LowStockThreshold)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "APP_PORT", "http"},
		{"port out of range", "APP_PORT", "70000"},
		{"negative threshold", "LOW_STOCK_THRESHOLD", "-1"},
		{"bad cron", "REPORT_CRON_SCHEDULE", "every evening"},
		{"bad timezone", "TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestValidate_EmptyScheduleDisablesReport(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 8080},
		Database:  DatabaseConfig{Path: ":memory:"},
		Clinic:    ClinicConfig{Name: "VETCARE"},
		Reporting: ReportingConfig{Timezone: "UTC"},
	}

	assert.NoError(t, cfg.Validate())

	loc, err := cfg.Reporting.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
