package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/nba-ingest/internal/models"
)

// LoadGameData writes everything collected for one game inside a single
// transaction. Dependent rows for the game are replaced wholesale only for
// tables this load actually has data for, so a run where a source failed
// never erases rows from an earlier, more complete run. Returns rows written
// per table.
func (db *DB) LoadGameData(ctx context.Context, data *models.GameData) (map[string]int, error) {
	if data.Game == nil {
		return nil, fmt.Errorf("load requires a parent game row")
	}

	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	counts := make(map[string]int)

	if err := upsertGame(ctx, tx, data.Game); err != nil {
		return nil, err
	}
	counts["games"] = 1

	if len(data.PbpEvents) > 0 {
		n, err := replacePbpEvents(ctx, tx, data.Game.GameID, data.PbpEvents)
		if err != nil {
			return nil, err
		}
		counts["pbp_events"] = n
	}
	if len(data.Lineups) > 0 {
		n, err := replaceLineups(ctx, tx, data.Game.GameID, data.Lineups)
		if err != nil {
			return nil, err
		}
		counts["starting_lineups"] = n
	}
	if len(data.Shots) > 0 {
		n, err := replaceShots(ctx, tx, data.Game.GameID, data.Shots)
		if err != nil {
			return nil, err
		}
		counts["shots"] = n
	}
	if len(data.RefAssignments) > 0 {
		n, err := replaceRefs(ctx, tx, data.Game.GameID, data.RefAssignments, data.RefAlternates)
		if err != nil {
			return nil, err
		}
		counts["ref_assignments"] = n
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit game %s: %w", data.Game.GameID, err)
	}
	return counts, nil
}

func upsertGame(ctx context.Context, tx pgx.Tx, g *models.GameRow) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO games (
			game_id, season, game_date, home_tricode, away_tricode,
			home_score, away_score, status, arena_name, attendance,
			source_url, ingested_at_utc
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game_id) DO UPDATE SET
			season = EXCLUDED.season,
			game_date = EXCLUDED.game_date,
			home_tricode = EXCLUDED.home_tricode,
			away_tricode = EXCLUDED.away_tricode,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			arena_name = EXCLUDED.arena_name,
			attendance = EXCLUDED.attendance,
			source_url = EXCLUDED.source_url,
			ingested_at_utc = EXCLUDED.ingested_at_utc`,
		g.GameID, g.Season, g.GameDate, g.HomeTricode, g.AwayTricode,
		g.HomeScore, g.AwayScore, string(g.Status), nullableStr(g.ArenaName), g.Attendance,
		nullableStr(g.SourceURL), g.IngestedAtUTC)
	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", g.GameID, err)
	}
	return nil
}

func replacePbpEvents(ctx context.Context, tx pgx.Tx, gameID string, rows []models.PbpEventRow) (int, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM pbp_events WHERE game_id = $1`, gameID); err != nil {
		return 0, fmt.Errorf("failed to clear pbp_events for %s: %w", gameID, err)
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO pbp_events (
				game_id, event_idx, period, clock_seconds, event_type,
				description, team_tricode, player_name, home_score, away_score
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			gameID, r.EventIdx, r.Period, r.ClockSeconds, nullableStr(r.EventType),
			nullableStr(r.Description), nullableStr(r.TeamTricode), nullableStr(r.PlayerName),
			r.HomeScore, r.AwayScore)
	}
	if err := sendBatch(ctx, tx, batch); err != nil {
		return 0, fmt.Errorf("failed to insert pbp_events for %s: %w", gameID, err)
	}
	return len(rows), nil
}

func replaceLineups(ctx context.Context, tx pgx.Tx, gameID string, rows []models.LineupRow) (int, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM starting_lineups WHERE game_id = $1`, gameID); err != nil {
		return 0, fmt.Errorf("failed to clear starting_lineups for %s: %w", gameID, err)
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO starting_lineups (game_id, team_tricode, player_name, position, starter)
			VALUES ($1, $2, $3, $4, $5)`,
			gameID, r.TeamTricode, r.PlayerName, nullableStr(r.Position), r.Starter)
	}
	if err := sendBatch(ctx, tx, batch); err != nil {
		return 0, fmt.Errorf("failed to insert starting_lineups for %s: %w", gameID, err)
	}
	return len(rows), nil
}

func replaceShots(ctx context.Context, tx pgx.Tx, gameID string, rows []models.ShotRow) (int, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM shots WHERE game_id = $1`, gameID); err != nil {
		return 0, fmt.Errorf("failed to clear shots for %s: %w", gameID, err)
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO shots (
				game_id, event_idx, period, team_tricode, player_name,
				loc_x, loc_y, made, value
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			gameID, r.EventIdx, r.Period, nullableStr(r.TeamTricode), nullableStr(r.PlayerName),
			r.LocX, r.LocY, r.Made, r.Value)
	}
	if err := sendBatch(ctx, tx, batch); err != nil {
		return 0, fmt.Errorf("failed to insert shots for %s: %w", gameID, err)
	}
	return len(rows), nil
}

func replaceRefs(ctx context.Context, tx pgx.Tx, gameID string, assignments []models.RefAssignmentRow, alternates []models.RefAlternateRow) (int, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM ref_assignments WHERE game_id = $1`, gameID); err != nil {
		return 0, fmt.Errorf("failed to clear ref_assignments for %s: %w", gameID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM ref_alternates WHERE game_id = $1`, gameID); err != nil {
		return 0, fmt.Errorf("failed to clear ref_alternates for %s: %w", gameID, err)
	}
	batch := &pgx.Batch{}
	for _, r := range assignments {
		batch.Queue(`
			INSERT INTO ref_assignments (game_id, ref_name, role)
			VALUES ($1, $2, $3)`,
			gameID, r.RefName, string(r.Role))
	}
	for _, r := range alternates {
		batch.Queue(`
			INSERT INTO ref_alternates (game_id, ref_name)
			VALUES ($1, $2)`,
			gameID, r.RefName)
	}
	if err := sendBatch(ctx, tx, batch); err != nil {
		return 0, fmt.Errorf("failed to insert ref crew for %s: %w", gameID, err)
	}
	return len(assignments) + len(alternates), nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
