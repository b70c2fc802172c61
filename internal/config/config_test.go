package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"propertydata/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, config.CacheMemory, cfg.Cache.Backend)
	require.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	require.Equal(t, 4, cfg.Report.FieldConcurrency)
	require.False(t, cfg.Report.Fallback.Disabled)
	require.Equal(t, 3, cfg.Report.Fallback.MaxAttempts)
	require.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	require.False(t, cfg.Scrapers.Browser.Enabled)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
environment: production
cache:
  backend: redis
  ttl: 6h
redis:
  addr: redis:6379
  prefix: "pd:"
report:
  fieldConcurrency: 2
  fallback:
    disabled: true
    maxAttempts: 5
scrapers:
  browser:
    enabled: true
    timeout: 1m
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, config.CacheRedis, cfg.Cache.Backend)
	require.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, "pd:", cfg.Redis.Prefix)
	require.Equal(t, 2, cfg.Report.FieldConcurrency)
	require.True(t, cfg.Report.Fallback.Disabled)
	require.Equal(t, 5, cfg.Report.Fallback.MaxAttempts)
	require.True(t, cfg.Scrapers.Browser.Enabled)
	require.Equal(t, time.Minute, cfg.Scrapers.Browser.Timeout)
	// untouched sections keep their defaults
	require.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "cache:\n  ttl: 6h\n")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("REPORT_FALLBACK_DISABLED", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	require.True(t, cfg.Report.Fallback.Disabled)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.Load(writeConfig(t, "cache:\n  backend: memcached\n"))
	require.ErrorContains(t, err, "memcached")

	t.Setenv("CACHE_TTL", "-1h")
	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	_, err = config.Load(writeConfig(t, "cache: [not, a, map]\n"))
	require.Error(t, err)
}
