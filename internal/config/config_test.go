package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "prospector.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Search.CompanyLimit)
	assert.Equal(t, 3, cfg.Search.MaxConcurrentCompanies)
	assert.Equal(t, 30*time.Second, cfg.Worker.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Worker.StaleAfter)
	assert.Equal(t, 2*time.Minute, cfg.Worker.ExecTimeout)
	assert.Equal(t, 30, cfg.Worker.JobsKeptDays)
	assert.True(t, cfg.Billing.Enabled)
	assert.Equal(t, 1, cfg.Billing.CompanySearch)
	assert.Equal(t, 2, cfg.Billing.ContactSearch)
	assert.Equal(t, 3, cfg.Billing.EmailSearch)
	assert.Equal(t, "https://api.apollo.io/api/v1", cfg.Apollo.BaseURL)
	assert.Equal(t, "https://api.hunter.io/v2", cfg.Hunter.BaseURL)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.InDelta(t, 2.0, cfg.Apollo.RateLimit.PerSecond, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/prospector
  pool:
    max_conns: 20
log:
  level: debug
  format: console
worker:
  interval: 5s
  jobs_kept_days: 7
billing:
  enabled: false
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/prospector", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(20), cfg.Store.Pool.MaxConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Worker.Interval)
	assert.Equal(t, 7, cfg.Worker.JobsKeptDays)
	assert.False(t, cfg.Billing.Enabled)

	// Untouched keys keep defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Worker.StaleAfter)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
