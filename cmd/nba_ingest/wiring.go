package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonathan/nba-ingest/internal/config"
	"github.com/jonathan/nba-ingest/internal/fetch"
	"github.com/jonathan/nba-ingest/internal/metrics"
	"github.com/jonathan/nba-ingest/internal/observability"
	"github.com/jonathan/nba-ingest/internal/pipeline"
	"github.com/jonathan/nba-ingest/internal/quality"
	"github.com/jonathan/nba-ingest/internal/ratelimit"
	"github.com/jonathan/nba-ingest/internal/resilience"
	"github.com/jonathan/nba-ingest/internal/store"
	"github.com/jonathan/nba-ingest/internal/transform"
)

var (
	configPath  string
	dbURL       string
	dryRun      bool
	verbose     bool
	metricsAddr string
	rateLimits  []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (overrides config and DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Process games without writing to the database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on, e.g. :9090")
	rootCmd.PersistentFlags().StringArrayVar(&rateLimits, "rate-limit", nil, "Override a source rate as source=requests/seconds, e.g. bref=5/60")
}

// loadMergedConfig resolves the effective configuration: defaults, then the
// config file, then flags and environment.
func loadMergedConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = dbURL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// runtime bundles everything a command needs to process games.
type runtime struct {
	cfg     config.Config
	metrics *metrics.Metrics
	unit    *pipeline.GameUnit
	storage pipeline.Storage
	db      *store.DB
	printer *observability.Printer
}

func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
}

// buildRuntime wires the full stack from configuration. Dry runs without a
// database URL fall back to in-memory storage.
func buildRuntime(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, m)
	}

	sources := make(map[string]resilience.SourceConfig, len(cfg.Sources))
	for name, s := range cfg.Sources {
		sources[name] = resilience.SourceConfig{
			Rate: ratelimit.SourceRate{
				Requests: s.RequestsPerInterval,
				Interval: time.Duration(s.IntervalSeconds) * time.Second,
				Burst:    s.Burst,
			},
			Breaker: resilience.BreakerConfig{
				FailureThreshold: s.FailureThreshold,
				RecoveryTimeout:  time.Duration(s.RecoveryTimeoutSeconds) * time.Second,
			},
			Retry: resilience.RetryConfig{
				MaxAttempts: s.MaxAttempts,
				BaseDelay:   time.Duration(s.BaseDelaySeconds) * time.Second,
				MaxDelay:    time.Duration(s.MaxDelaySeconds) * time.Second,
				Exponential: true,
				Jitter:      true,
			},
		}
	}
	registry := resilience.NewRegistry(sources, m)

	for _, override := range rateLimits {
		source, rate, err := parseRateOverride(override)
		if err != nil {
			return nil, err
		}
		registry.Limiter().SetRate(source, rate)
	}

	rt := &runtime{
		cfg:     cfg,
		metrics: m,
		printer: observability.NewPrinter(os.Stdout),
	}

	var storage pipeline.Storage
	if cfg.DatabaseURL == "" {
		if !dryRun {
			return nil, fmt.Errorf("a database URL is required; set --db-url, DATABASE_URL, or database_url in the config")
		}
		storage = pipeline.NewMemoryStorage()
	} else {
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		rt.db = db
		storage = db
	}
	rt.storage = storage

	overrides := make(map[string]time.Time, len(cfg.DateOverrides))
	for gameID, raw := range cfg.DateOverrides {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date override for %s: %w", gameID, err)
		}
		overrides[gameID] = day.UTC()
	}

	rt.unit = &pipeline.GameUnit{
		Client:    fetch.NewClient(nil),
		Endpoints: fetch.DefaultEndpoints(),
		Registry:  registry,
		Storage:   storage,
		Metrics:   m,
		Gate: quality.Thresholds{
			MinPbpEvents:     cfg.Quality.MinPbpEvents,
			MinClockCoverage: cfg.Quality.MinClockCoverage,
			RequireScores:    cfg.Quality.RequireScores,
			ExactStarters:    cfg.Quality.ExactStarters,
			MinOfficials:     cfg.Quality.MinOfficials,
		},
		Resolver: &transform.DateResolver{
			Overrides:  overrides,
			WindowDays: cfg.DateWindowDays,
		},
		RunID:      uuid.New(),
		DryRun:     dryRun,
		UseBrowser: cfg.UseBrowser,
	}
	return rt, nil
}

// parseRateOverride parses "source=requests/seconds".
func parseRateOverride(s string) (string, ratelimit.SourceRate, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return "", ratelimit.SourceRate{}, fmt.Errorf("rate override must look like bref=5/60, got %q", s)
	}
	reqStr, secStr, ok := strings.Cut(spec, "/")
	if !ok {
		return "", ratelimit.SourceRate{}, fmt.Errorf("rate override must look like bref=5/60, got %q", s)
	}
	requests, err := strconv.Atoi(reqStr)
	if err != nil || requests <= 0 {
		return "", ratelimit.SourceRate{}, fmt.Errorf("rate override %q: requests must be a positive integer", s)
	}
	seconds, err := strconv.Atoi(secStr)
	if err != nil || seconds <= 0 {
		return "", ratelimit.SourceRate{}, fmt.Errorf("rate override %q: seconds must be a positive integer", s)
	}
	return name, ratelimit.SourceRate{
		Requests: requests,
		Interval: time.Duration(seconds) * time.Second,
	}, nil
}

func serveMetrics(addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
	}
}
