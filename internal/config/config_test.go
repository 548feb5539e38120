package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"database_url": "postgres://localhost/ingest",
		"chunk_days": 14,
		"sources": {
			"bref": {
				"requests_per_interval": 5,
				"interval_seconds": 60,
				"failure_threshold": 3,
				"recovery_timeout_seconds": 120,
				"max_attempts": 2,
				"base_delay_seconds": 1,
				"max_delay_seconds": 10
			}
		}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/ingest", cfg.DatabaseURL)
	assert.Equal(t, 14, cfg.ChunkDays)
	assert.Equal(t, 5, cfg.Sources["bref"].RequestsPerInterval)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeConfig(t, `{not json`)
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Contains(t, cfg.Sources, "nba_stats")
	assert.Contains(t, cfg.Sources, "bref")
	assert.Contains(t, cfg.Sources, "gamebooks")
}

func TestValidateRejectsBadRanges(t *testing.T) {
	cfg := Default()
	s := cfg.Sources["bref"]
	s.RequestsPerInterval = 0
	cfg.Sources["bref"] = s
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDelayInversion(t *testing.T) {
	cfg := Default()
	s := cfg.Sources["bref"]
	s.BaseDelaySeconds = 30
	s.MaxDelaySeconds = 5
	cfg.Sources["bref"] = s
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_delay_seconds")
}

func TestValidateRejectsBadDateOverride(t *testing.T) {
	cfg := Default()
	cfg.DateOverrides = map[string]string{"0022400123": "03/01/2025"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date override")
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://file/db", ChunkDays: 3}
	merged := cfg.MergeWithDefaults(Default())

	assert.Equal(t, "postgres://file/db", merged.DatabaseURL)
	assert.Equal(t, 3, merged.ChunkDays)
	// Unset fields come from defaults.
	assert.Equal(t, 4, merged.Concurrency)
	assert.Contains(t, merged.Sources, "nba_stats")
	assert.Equal(t, 0.90, merged.Quality.MinClockCoverage)
}
