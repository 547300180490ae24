package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	rate, err := cfg.Tax.RateDecimal()
	require.NoError(t, err)
	assert.Equal(t, "0.18", rate.String())
	assert.Equal(t, "ORD-{YYYY}-{seq:04d}", cfg.Order.NumberFormat)
	assert.Equal(t, 7, cfg.Upcoming.HorizonDays)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, 6, cfg.Reports.MonthlyMonths)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ARTE_TAX_RATE", "0.10")
	t.Setenv("ARTE_UPCOMING_HORIZON_DAYS", "14")
	t.Setenv("ARTE_DATABASE_DRIVER", "memory")
	t.Setenv("ARTE_IDEMPOTENCY_TTL", "1h")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.10", cfg.Tax.Rate)
	assert.Equal(t, 14, cfg.Upcoming.HorizonDays)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Idempotency.TTL)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "arte.yaml")
	require.NoError(t, os.WriteFile(path, []byte("order:\n  number_format: \"AI-{YY}{MM}-{seq:05d}\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AI-{YY}{MM}-{seq:05d}", cfg.Order.NumberFormat)
}

func TestValidateRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("ARTE_TAX_RATE", "abc")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("ARTE_TAX_RATE", "0.18")
	t.Setenv("ARTE_ORDER_NUMBER_FORMAT", "ORD-{YYYY}")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("ARTE_ORDER_NUMBER_FORMAT", "ORD-{seq}")
	t.Setenv("ARTE_DATABASE_DRIVER", "mysql")
	_, err = Load("")
	assert.Error(t, err)
}

func TestMigrationURL(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "arte", SSLMode: "disable"}
	assert.Equal(t, "pgx5://u:p@db:5432/arte?sslmode=disable", c.MigrationURL())

	c.URL = "postgres://u:p@db/arte"
	assert.Equal(t, "pgx5://u:p@db/arte", c.MigrationURL())
	assert.Equal(t, "postgres://u:p@db/arte", c.ConnectionString())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
