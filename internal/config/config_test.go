package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/config"
	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// clearEnv blanks every variable Load reads so the developer's shell or a
// stray .env cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "CORS_ORIGINS", "DATABASE_URL", "CATALOG_FILE", "NATS_URL",
		"DRAFT_TTL", "SWEEP_INTERVAL", "CASCADE_MODE", "TZ", "MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that every variable is optional and falls back
// to its default.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.CatalogFile)
	require.Empty(t, cfg.NATSURL)
	require.Equal(t, 2*time.Hour, cfg.DraftTTL)
	require.Equal(t, time.Minute, cfg.SweepInterval)
	require.Equal(t, domain.CascadeNext, cfg.Cascade)
	require.Equal(t, time.UTC, cfg.Location)
	require.EqualValues(t, 1<<20, cfg.MaxBodyBytes)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/mydb")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("CATALOG_FILE", "/etc/trip-planner/catalog.yaml")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("DRAFT_TTL", "30m")
	t.Setenv("SWEEP_INTERVAL", "10s")
	t.Setenv("CASCADE_MODE", "full")
	t.Setenv("TZ", "Asia/Tokyo")
	t.Setenv("MAX_BODY_BYTES", "4096")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "postgres://user:pass@db:5432/mydb", cfg.DatabaseURL)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.Equal(t, "/etc/trip-planner/catalog.yaml", cfg.CatalogFile)
	require.Equal(t, "nats://nats:4222", cfg.NATSURL)
	require.Equal(t, 30*time.Minute, cfg.DraftTTL)
	require.Equal(t, 10*time.Second, cfg.SweepInterval)
	require.Equal(t, domain.CascadeFull, cfg.Cascade)
	require.Equal(t, "Asia/Tokyo", cfg.Location.String())
	require.EqualValues(t, 4096, cfg.MaxBodyBytes)
}

// TestLoad_invalidValues verifies that every bad value is reported at once,
// and that the error names each offending variable.
func TestLoad_invalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DRAFT_TTL", "forever")
	t.Setenv("SWEEP_INTERVAL", "-1s")
	t.Setenv("CASCADE_MODE", "all")
	t.Setenv("TZ", "Mars/Olympus")
	t.Setenv("MAX_BODY_BYTES", "0")

	_, err := config.Load()

	require.Error(t, err)
	for _, key := range []string{"DRAFT_TTL", "SWEEP_INTERVAL", "CASCADE_MODE", "TZ", "MAX_BODY_BYTES"} {
		require.ErrorContains(t, err, key)
	}
}
