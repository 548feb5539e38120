package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/nba-ingest/internal/extract"
	"github.com/jonathan/nba-ingest/internal/models"
)

func intPtr(n int) *int { return &n }

func TestParseClock(t *testing.T) {
	tests := []struct {
		text    string
		want    float64
		wantNil bool
		wantErr bool
	}{
		{text: "12:00", want: 720},
		{text: "0:35", want: 35},
		{text: "0:03.4", want: 3.4},
		{text: "", wantNil: true},
		{text: "  ", wantNil: true},
		{text: "12:75", wantErr: true},
		{text: "garbage", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseClock(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.001)
		})
	}
}

func validBox() *extract.BoxScore {
	return &extract.BoxScore{
		GameID:      "0022400123",
		StatusCode:  "3",
		HomeTricode: "BOS",
		AwayTricode: "LAL",
		HomeScore:   intPtr(110),
		AwayScore:   intPtr(102),
		ArenaName:   "TD Garden",
		Attendance:  intPtr(19156),
	}
}

func TestGameRow(t *testing.T) {
	day := time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)
	game, err := GameRow(validBox(), "2024-25", day, "http://example/box")
	require.NoError(t, err)

	assert.Equal(t, "0022400123", game.GameID)
	assert.Equal(t, models.StatusFinal, game.Status)
	assert.Equal(t, "2024-25", game.Season)
	assert.Equal(t, day, game.GameDate)
	assert.False(t, game.IngestedAtUTC.IsZero())
}

func TestGameRowRejectsBadInput(t *testing.T) {
	day := time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)

	badID := validBox()
	badID.GameID = "22400123"
	_, err := GameRow(badID, "2024-25", day, "")
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, "games", rowErr.Table)

	badTricode := validBox()
	badTricode.HomeTricode = "boston"
	_, err = GameRow(badTricode, "2024-25", day, "")
	require.Error(t, err)

	badStatus := validBox()
	badStatus.StatusCode = "9"
	_, err = GameRow(badStatus, "2024-25", day, "")
	require.Error(t, err)

	noScores := validBox()
	noScores.HomeScore = nil
	_, err = GameRow(noScores, "2024-25", day, "")
	require.Error(t, err)
}

func TestMergeBRefOutcomes(t *testing.T) {
	day := time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)
	box := validBox()
	box.StatusCode = "2"
	box.HomeScore = nil
	box.Attendance = nil
	game, err := GameRow(box, "2024-25", day, "")
	require.NoError(t, err)

	MergeBRefOutcomes(game, &extract.BRefBox{
		HomeScore:  intPtr(110),
		AwayScore:  intPtr(99),
		Attendance: intPtr(18000),
	})

	require.NotNil(t, game.HomeScore)
	assert.Equal(t, 110, *game.HomeScore)
	// The stats value wins when present.
	assert.Equal(t, 102, *game.AwayScore)
	assert.Equal(t, 18000, *game.Attendance)
}

func TestPbpEventRows(t *testing.T) {
	events := []extract.PbpEvent{
		{GameID: "0022400123", EventIdx: 2, Period: 1, ClockText: "12:00", EventType: "12"},
		{GameID: "0022400123", EventIdx: 4, Period: 1, ClockText: "11:42", ScoreText: "0 - 3"},
		{GameID: "0022400123", EventIdx: 6, Period: 1, ClockText: "mangled"},
		{GameID: "0022400999", EventIdx: 8, Period: 1},
		{GameID: "0022400123", EventIdx: 9, Period: 0},
	}

	rows, errs := PbpEventRows("0022400123", events)

	// Wrong game and bad period are rejected; the mangled clock is kept
	// with a nil clock.
	require.Len(t, rows, 3)
	require.Len(t, errs, 2)

	require.NotNil(t, rows[0].ClockSeconds)
	assert.Equal(t, 720.0, *rows[0].ClockSeconds)

	require.NotNil(t, rows[1].HomeScore)
	assert.Equal(t, 3, *rows[1].HomeScore)
	require.NotNil(t, rows[1].AwayScore)
	assert.Equal(t, 0, *rows[1].AwayScore)

	assert.Nil(t, rows[2].ClockSeconds)
}

func TestLineupRowsDeduplicates(t *testing.T) {
	starters := []extract.BRefStarter{
		{TeamTricode: "BOS", PlayerName: "Jayson Tatum"},
		{TeamTricode: "BOS", PlayerName: "Jayson Tatum"},
		{TeamTricode: "bad", PlayerName: "Nobody"},
	}

	rows, errs := LineupRows("0022400123", starters)
	require.Len(t, rows, 1)
	require.Len(t, errs, 1)
	assert.True(t, rows[0].Starter)
}

func TestShotRows(t *testing.T) {
	shots := []extract.Shot{
		{EventIdx: 4, Period: 1, Value: 3, Made: true},
		{EventIdx: 5, Period: 1, Value: 1},
	}

	rows, errs := ShotRows("0022400123", shots)
	require.Len(t, rows, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, 3, rows[0].Value)
}

func TestRefRowsAssignsRolesByOrder(t *testing.T) {
	crew := &extract.GamebookCrew{
		Officials:  []string{"Scott Foster", "Tony Brothers", "Marc Davis"},
		Alternates: []string{"John Goble"},
	}

	assignments, alternates := RefRows("0022400123", crew)
	require.Len(t, assignments, 3)
	assert.Equal(t, models.RefCrewChief, assignments[0].Role)
	assert.Equal(t, models.RefReferee, assignments[1].Role)
	assert.Equal(t, models.RefUmpire, assignments[2].Role)

	require.Len(t, alternates, 1)
	assert.Equal(t, "John Goble", alternates[0].RefName)
}
