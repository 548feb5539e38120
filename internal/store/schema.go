package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS games (
		game_id TEXT PRIMARY KEY,
		season TEXT NOT NULL,
		game_date DATE NOT NULL,
		home_tricode TEXT NOT NULL,
		away_tricode TEXT NOT NULL,
		home_score INTEGER,
		away_score INTEGER,
		status TEXT NOT NULL,
		arena_name TEXT,
		attendance INTEGER,
		source_url TEXT,
		ingested_at_utc TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pbp_events (
		game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
		event_idx INTEGER NOT NULL,
		period INTEGER NOT NULL,
		clock_seconds DOUBLE PRECISION,
		event_type TEXT,
		description TEXT,
		team_tricode TEXT,
		player_name TEXT,
		home_score INTEGER,
		away_score INTEGER,
		PRIMARY KEY (game_id, event_idx)
	)`,
	`CREATE TABLE IF NOT EXISTS starting_lineups (
		game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
		team_tricode TEXT NOT NULL,
		player_name TEXT NOT NULL,
		position TEXT,
		starter BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (game_id, team_tricode, player_name)
	)`,
	`CREATE TABLE IF NOT EXISTS shots (
		game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
		event_idx INTEGER NOT NULL,
		period INTEGER NOT NULL,
		team_tricode TEXT,
		player_name TEXT,
		loc_x INTEGER NOT NULL,
		loc_y INTEGER NOT NULL,
		made BOOLEAN NOT NULL,
		value INTEGER NOT NULL,
		PRIMARY KEY (game_id, event_idx)
	)`,
	`CREATE TABLE IF NOT EXISTS ref_assignments (
		game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
		ref_name TEXT NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY (game_id, ref_name)
	)`,
	`CREATE TABLE IF NOT EXISTS ref_alternates (
		game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
		ref_name TEXT NOT NULL,
		PRIMARY KEY (game_id, ref_name)
	)`,
	`CREATE TABLE IF NOT EXISTS ingest_watermarks (
		stage TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (stage, key)
	)`,
	`CREATE TABLE IF NOT EXISTS ingest_quarantine (
		id UUID PRIMARY KEY,
		game_id TEXT NOT NULL,
		run_id UUID NOT NULL,
		reason TEXT NOT NULL,
		detail TEXT,
		quarantined_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_season_date ON games(season, game_date)`,
	`CREATE INDEX IF NOT EXISTS idx_quarantine_game ON ingest_quarantine(game_id)`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
