// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// SourceSettings holds the resilience knobs for one upstream source.
type SourceSettings struct {
	// RequestsPerInterval and IntervalSeconds define the rate budget, e.g.
	// 10 requests per 60 seconds.
	RequestsPerInterval int `json:"requests_per_interval" validate:"min=1"`
	IntervalSeconds     int `json:"interval_seconds" validate:"min=1"`
	Burst               int `json:"burst,omitempty" validate:"min=0"`

	// Breaker settings.
	FailureThreshold       int `json:"failure_threshold" validate:"min=1"`
	RecoveryTimeoutSeconds int `json:"recovery_timeout_seconds" validate:"min=1"`

	// Retry settings.
	MaxAttempts      int `json:"max_attempts" validate:"min=1"`
	BaseDelaySeconds int `json:"base_delay_seconds" validate:"min=0"`
	MaxDelaySeconds  int `json:"max_delay_seconds" validate:"min=0"`
}

// QualitySettings mirrors the gate thresholds.
type QualitySettings struct {
	MinPbpEvents     int     `json:"min_pbp_events" validate:"min=0"`
	MinClockCoverage float64 `json:"min_clock_coverage" validate:"min=0,max=1"`
	RequireScores    bool    `json:"require_scores"`
	ExactStarters    int     `json:"exact_starters" validate:"min=0"`
	MinOfficials     int     `json:"min_officials" validate:"min=0"`
}

// Config is the CLI configuration, loadable from a JSON file. Missing values
// use defaults; flags override both.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"`

	Sources map[string]SourceSettings `json:"sources,omitempty" validate:"dive"`
	Quality QualitySettings           `json:"quality"`

	// Backfill behavior.
	ChunkDays   int `json:"chunk_days,omitempty" validate:"min=0"`
	Concurrency int `json:"concurrency,omitempty" validate:"min=0"`

	// Postponed-game handling for the reference site.
	DateWindowDays int               `json:"date_window_days,omitempty" validate:"min=0"`
	DateOverrides  map[string]string `json:"date_overrides,omitempty"`

	// UseBrowser enables the headless-browser fallback for pages that
	// render their tables with scripts.
	UseBrowser bool `json:"use_browser,omitempty"`
	Verbose    bool `json:"verbose,omitempty"`
}

// Default returns the production configuration.
func Default() Config {
	return Config{
		Sources: map[string]SourceSettings{
			"nba_stats": {
				RequestsPerInterval: 20, IntervalSeconds: 60, Burst: 5,
				FailureThreshold: 5, RecoveryTimeoutSeconds: 60,
				MaxAttempts: 3, BaseDelaySeconds: 1, MaxDelaySeconds: 30,
			},
			"bref": {
				RequestsPerInterval: 10, IntervalSeconds: 60, Burst: 2,
				FailureThreshold: 3, RecoveryTimeoutSeconds: 120,
				MaxAttempts: 3, BaseDelaySeconds: 2, MaxDelaySeconds: 60,
			},
			"gamebooks": {
				RequestsPerInterval: 30, IntervalSeconds: 60, Burst: 5,
				FailureThreshold: 5, RecoveryTimeoutSeconds: 60,
				MaxAttempts: 3, BaseDelaySeconds: 1, MaxDelaySeconds: 30,
			},
		},
		Quality: QualitySettings{
			MinPbpEvents:     300,
			MinClockCoverage: 0.90,
			RequireScores:    true,
			ExactStarters:    10,
			MinOfficials:     3,
		},
		ChunkDays:      7,
		Concurrency:    4,
		DateWindowDays: 3,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks ranges via struct tags plus the cross-field rules tags
// cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for name, s := range c.Sources {
		if s.MaxDelaySeconds > 0 && s.MaxDelaySeconds < s.BaseDelaySeconds {
			return fmt.Errorf("config error: source %q has max_delay_seconds below base_delay_seconds", name)
		}
	}
	for gameID, raw := range c.DateOverrides {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return fmt.Errorf("config error: date override for %s is not YYYY-MM-DD: %q", gameID, raw)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. Config-file values act as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Sources == nil {
		result.Sources = defaults.Sources
	}
	if result.Quality == (QualitySettings{}) {
		result.Quality = defaults.Quality
	}
	if result.ChunkDays == 0 {
		result.ChunkDays = defaults.ChunkDays
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.DateWindowDays == 0 {
		result.DateWindowDays = defaults.DateWindowDays
	}
	if result.DateOverrides == nil {
		result.DateOverrides = defaults.DateOverrides
	}
	if !result.UseBrowser {
		result.UseBrowser = defaults.UseBrowser
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}
