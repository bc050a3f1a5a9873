// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/trip-planner/backend/catalog"
	"github.com/pkordes/trip-planner/backend/internal/config"
	"github.com/pkordes/trip-planner/backend/internal/events"
	"github.com/pkordes/trip-planner/backend/internal/handler"
	"github.com/pkordes/trip-planner/backend/internal/metrics"
	"github.com/pkordes/trip-planner/backend/internal/middleware"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
	"github.com/pkordes/trip-planner/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// ctx is cancelled on SIGINT/SIGTERM and stops the background sweeper.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Catalog ----------------------------------------------------------
	catalogRepo, closeCatalog, err := openCatalog(ctx, cfg)
	if err != nil {
		slog.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer closeCatalog()

	// --- Metrics & events -------------------------------------------------
	collector := metrics.New()

	opts := service.DraftOptions{
		Cascade:  cfg.Cascade,
		Location: cfg.Location,
		Metrics:  collector,
		Logger:   logger,
	}
	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL, logger, collector)
		if err != nil {
			slog.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		// Only assigned when non-nil: a nil *NATSPublisher in the interface
		// would not compare equal to nil inside the service.
		opts.Events = pub
		slog.Info("publishing draft events", "url", cfg.NATSURL)
	}

	// --- Services ---------------------------------------------------------
	draftSvc := service.NewDraftService(repo.NewDraftRepo(), catalogRepo, opts)
	catalogSvc := service.NewCatalogService(catalogRepo)

	go draftSvc.RunSweeper(ctx, cfg.DraftTTL, cfg.SweepInterval)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order:
	// RequestID → RealIP → Logger → Metrics → CORS → MaxBodySize → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Metrics records request counts and latency by route pattern.
	// MaxBodySize rejects oversized bodies with 413.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetrics(collector))
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", collector.Handler())

	srvHandler := handler.NewServer(draftSvc, catalogSvc).WithLogger(logger)
	r.Mount("/", handler.Handler(srvHandler))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"cascade", cfg.Cascade,
			"tz", cfg.Location.String(),
			"draft_ttl", cfg.DraftTTL.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openCatalog picks the catalog source: Postgres when DATABASE_URL is set
// (migrated to the latest version on startup), else the CATALOG_FILE YAML
// document, else the presets built into the binary. The returned func
// releases whatever was opened.
func openCatalog(ctx context.Context, cfg config.Config) (repo.CatalogRepo, func(), error) {
	noop := func() {}

	switch {
	case cfg.DatabaseURL != "":
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately; the first query does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("create database pool: %w", err)
		}
		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("connect to database: %w", err)
		}

		db := stdlib.OpenDBFromPool(pool)
		provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
		if err != nil {
			db.Close()
			pool.Close()
			return nil, noop, fmt.Errorf("create goose provider: %w", err)
		}
		results, err := provider.Up(ctx)
		if err != nil {
			db.Close()
			pool.Close()
			return nil, noop, fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("catalog: postgres", "migrations_applied", len(results))
		return repo.NewCatalogRepo(pool), func() {
			db.Close()
			pool.Close()
		}, nil

	case cfg.CatalogFile != "":
		r, err := repo.LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			return nil, noop, err
		}
		slog.Info("catalog: file", "path", cfg.CatalogFile)
		return r, noop, nil

	default:
		r, err := repo.ParseCatalogYAML(catalog.Presets)
		if err != nil {
			return nil, noop, fmt.Errorf("built-in presets: %w", err)
		}
		slog.Info("catalog: built-in presets")
		return r, noop, nil
	}
}
