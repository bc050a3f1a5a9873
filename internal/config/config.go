// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// DatabaseURL is the Postgres connection string of the catalog.
	// Optional: when empty the catalog is read from CatalogFile or the
	// built-in presets.
	DatabaseURL string

	// CatalogFile is a YAML catalog document used when DatabaseURL is empty.
	// Optional: the built-in presets are used when both are empty.
	CatalogFile string

	// NATSURL enables draft change events when set.
	NATSURL string

	// DraftTTL is how long a draft may sit idle before the sweeper drops it.
	// Defaults to 2h.
	DraftTTL time.Duration

	// SweepInterval is how often idle drafts are looked for. Defaults to 1m.
	SweepInterval time.Duration

	// Cascade selects how date edits propagate to later stops.
	// Defaults to domain.CascadeNext.
	Cascade domain.CascadeMode

	// Location is the zone in which "today" is computed. Defaults to UTC.
	Location *time.Location

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment win.
// Returns an error listing every variable that holds an invalid value.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CatalogFile: os.Getenv("CATALOG_FILE"),
		NATSURL:     os.Getenv("NATS_URL"),
	}

	var invalid []string

	var err error
	if cfg.DraftTTL, err = positiveDuration("DRAFT_TTL", 2*time.Hour); err != nil {
		invalid = append(invalid, err.Error())
	}
	if cfg.SweepInterval, err = positiveDuration("SWEEP_INTERVAL", time.Minute); err != nil {
		invalid = append(invalid, err.Error())
	}
	if cfg.Cascade, err = domain.ParseCascadeMode(os.Getenv("CASCADE_MODE")); err != nil {
		invalid = append(invalid, "CASCADE_MODE: "+err.Error())
	}
	if cfg.Location, err = time.LoadLocation(getEnv("TZ", "UTC")); err != nil {
		invalid = append(invalid, "TZ: "+err.Error())
	}

	cfg.MaxBodyBytes = 1 << 20
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			invalid = append(invalid, fmt.Sprintf("MAX_BODY_BYTES: want a positive integer, got %q", v))
		}
		cfg.MaxBodyBytes = n
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// positiveDuration parses key with time.ParseDuration ("90m", "2h").
func positiveDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: want a positive duration, got %q", key, v)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
