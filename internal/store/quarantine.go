package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuarantineEntry is one append-only record of a game that failed its
// quality gate or hard-failed during a run.
type QuarantineEntry struct {
	ID            uuid.UUID
	GameID        string
	RunID         uuid.UUID
	Reason        string
	Detail        string
	QuarantinedAt time.Time
}

// Quarantine appends an entry. The log is never updated in place; a game
// quarantined on multiple runs gets multiple entries.
func (db *DB) Quarantine(ctx context.Context, gameID string, runID uuid.UUID, reason, detail string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO ingest_quarantine (id, game_id, run_id, reason, detail)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), gameID, runID, reason, detail)
	if err != nil {
		return fmt.Errorf("failed to quarantine game %s: %w", gameID, err)
	}
	return nil
}

// RecentQuarantine returns the newest entries, most recent first.
func (db *DB) RecentQuarantine(ctx context.Context, limit int) ([]QuarantineEntry, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, game_id, run_id, reason, COALESCE(detail, ''), quarantined_at
		FROM ingest_quarantine
		ORDER BY quarantined_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quarantine log: %w", err)
	}
	defer rows.Close()

	var entries []QuarantineEntry
	for rows.Next() {
		var e QuarantineEntry
		if err := rows.Scan(&e.ID, &e.GameID, &e.RunID, &e.Reason, &e.Detail, &e.QuarantinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quarantine row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
