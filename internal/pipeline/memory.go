package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/nba-ingest/internal/models"
)

// MemoryStorage is an in-memory Storage used for dry runs and tests. Loads
// replace per game, matching the transactional store's convergence.
type MemoryStorage struct {
	mu         sync.Mutex
	games      map[string]*models.GameData
	watermarks map[string]string
	entries    []MemoryQuarantineEntry
}

// MemoryQuarantineEntry mirrors one quarantine append.
type MemoryQuarantineEntry struct {
	GameID string
	RunID  uuid.UUID
	Reason string
	Detail string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		games:      make(map[string]*models.GameData),
		watermarks: make(map[string]string),
	}
}

// LoadGameData stores the bundle keyed by game ID and returns row counts.
func (m *MemoryStorage) LoadGameData(_ context.Context, data *models.GameData) (map[string]int, error) {
	if data.Game == nil {
		return nil, fmt.Errorf("load requires a parent game row")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[data.Game.GameID] = data
	return countRows(data), nil
}

// GetWatermark returns the stored value, or "" when unset.
func (m *MemoryStorage) GetWatermark(_ context.Context, stage, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watermarks[stage+"/"+key], nil
}

// SetWatermark upserts the value for (stage, key).
func (m *MemoryStorage) SetWatermark(_ context.Context, stage, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watermarks[stage+"/"+key] = value
	return nil
}

// Quarantine appends an entry.
func (m *MemoryStorage) Quarantine(_ context.Context, gameID string, runID uuid.UUID, reason, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, MemoryQuarantineEntry{
		GameID: gameID, RunID: runID, Reason: reason, Detail: detail,
	})
	return nil
}

// Game returns the last loaded bundle for a game, or nil.
func (m *MemoryStorage) Game(gameID string) *models.GameData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games[gameID]
}

// QuarantineEntries returns a copy of the append log.
func (m *MemoryStorage) QuarantineEntries() []MemoryQuarantineEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryQuarantineEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
