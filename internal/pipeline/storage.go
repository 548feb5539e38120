package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/nba-ingest/internal/models"
)

// Storage is the persistence surface the pipeline needs. The Postgres store
// satisfies it; tests substitute an in-memory fake. The implementation is
// chosen once at startup and passed in, never resolved from globals.
type Storage interface {
	LoadGameData(ctx context.Context, data *models.GameData) (map[string]int, error)
	GetWatermark(ctx context.Context, stage, key string) (string, error)
	SetWatermark(ctx context.Context, stage, key, value string) error
	Quarantine(ctx context.Context, gameID string, runID uuid.UUID, reason, detail string) error
}
