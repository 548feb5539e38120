package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/nba-ingest/internal/models"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func finalGame() *models.GameRow {
	return &models.GameRow{
		GameID:    "0022400123",
		Status:    models.StatusFinal,
		HomeScore: intPtr(110),
		AwayScore: intPtr(102),
	}
}

func fullData() *models.GameData {
	data := &models.GameData{Game: finalGame()}
	for i := 0; i < 350; i++ {
		data.PbpEvents = append(data.PbpEvents, models.PbpEventRow{
			GameID: "0022400123", EventIdx: i, Period: 1, ClockSeconds: floatPtr(700),
		})
	}
	for i := 0; i < 10; i++ {
		data.Lineups = append(data.Lineups, models.LineupRow{GameID: "0022400123"})
	}
	data.RefAssignments = []models.RefAssignmentRow{
		{RefName: "a"}, {RefName: "b"}, {RefName: "c"},
	}
	return data
}

func TestCheckPassesCompleteGame(t *testing.T) {
	assert.Empty(t, Check(DefaultThresholds(), fullData()))
}

func TestCheckRequiresGameRow(t *testing.T) {
	violations := Check(DefaultThresholds(), &models.GameData{})
	require.Len(t, violations, 1)
	assert.Equal(t, "game_present", violations[0].Rule)
}

func TestCheckSkipsNonFinalGames(t *testing.T) {
	data := &models.GameData{Game: &models.GameRow{Status: models.StatusPostponed}}
	assert.Empty(t, Check(DefaultThresholds(), data))
}

func TestCheckMissingScores(t *testing.T) {
	data := fullData()
	data.Game.AwayScore = nil
	violations := Check(DefaultThresholds(), data)
	require.Len(t, violations, 1)
	assert.Equal(t, "scores_present", violations[0].Rule)
}

func TestCheckPbpEventCount(t *testing.T) {
	data := fullData()
	data.PbpEvents = data.PbpEvents[:50]
	violations := Check(DefaultThresholds(), data)
	require.Len(t, violations, 1)
	assert.Equal(t, "pbp_event_count", violations[0].Rule)
	assert.Contains(t, violations[0].Message, "50 events")
}

func TestCheckClockCoverage(t *testing.T) {
	data := fullData()
	for i := range data.PbpEvents {
		if i%2 == 0 {
			data.PbpEvents[i].ClockSeconds = nil
		}
	}
	violations := Check(DefaultThresholds(), data)
	require.Len(t, violations, 1)
	assert.Equal(t, "clock_coverage", violations[0].Rule)
}

func TestCheckStarterCount(t *testing.T) {
	data := fullData()
	data.Lineups = data.Lineups[:9]
	violations := Check(DefaultThresholds(), data)
	require.Len(t, violations, 1)
	assert.Equal(t, "starter_count", violations[0].Rule)
}

func TestCheckEmptyOptionalSectionsPass(t *testing.T) {
	// A game with no lineups or refs collected passes those rules: they
	// only fire on partially collected data.
	data := fullData()
	data.Lineups = nil
	data.RefAssignments = nil
	assert.Empty(t, Check(DefaultThresholds(), data))
}

func TestCheckZeroThresholdsDisableRules(t *testing.T) {
	data := &models.GameData{Game: finalGame()}
	assert.Empty(t, Check(Thresholds{}, data))
}

func TestCheckCollectsMultipleViolations(t *testing.T) {
	data := fullData()
	data.Game.HomeScore = nil
	data.PbpEvents = nil
	violations := Check(DefaultThresholds(), data)
	assert.Len(t, violations, 2)
}
