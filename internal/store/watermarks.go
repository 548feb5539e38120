package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetWatermark returns the stored value for (stage, key), or "" when no
// watermark has been recorded yet.
func (db *DB) GetWatermark(ctx context.Context, stage, key string) (string, error) {
	var value string
	err := db.pool.QueryRow(ctx,
		`SELECT value FROM ingest_watermarks WHERE stage = $1 AND key = $2`,
		stage, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read watermark %s/%s: %w", stage, key, err)
	}
	return value, nil
}

// SetWatermark upserts the value for (stage, key).
func (db *DB) SetWatermark(ctx context.Context, stage, key, value string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO ingest_watermarks (stage, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (stage, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()`,
		stage, key, value)
	if err != nil {
		return fmt.Errorf("failed to set watermark %s/%s: %w", stage, key, err)
	}
	return nil
}

// ListWatermarks returns every watermark under a stage, keyed by key.
func (db *DB) ListWatermarks(ctx context.Context, stage string) (map[string]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT key, value FROM ingest_watermarks WHERE stage = $1 ORDER BY key`,
		stage)
	if err != nil {
		return nil, fmt.Errorf("failed to list watermarks for %s: %w", stage, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan watermark row: %w", err)
		}
		out[key] = value
	}
	return out, rows.Err()
}
