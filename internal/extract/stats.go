// Package extract turns raw source payloads into normalized intermediate
// records. Functions here are pure: they do no I/O and report malformed
// payloads as value-level errors.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/nba-ingest/internal/fetch"
)

// statsEnvelopeSchema validates the resultSets envelope every stats endpoint
// shares before row extraction touches it. Catching shape drift here keeps
// the index-based row access below from panicking on garbage.
const statsEnvelopeSchema = `{
	"type": "object",
	"required": ["resultSets"],
	"properties": {
		"resultSets": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "headers", "rowSet"],
				"properties": {
					"name": {"type": "string"},
					"headers": {"type": "array", "items": {"type": "string"}},
					"rowSet": {"type": "array", "items": {"type": "array"}}
				}
			}
		}
	}
}`

var compiledEnvelopeSchema = gojsonschema.NewStringLoader(statsEnvelopeSchema)

type statsEnvelope struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// table wraps a result set with header-name row access.
type table struct {
	cols map[string]int
	rows [][]any
}

func parseStatsEnvelope(body []byte) (*statsEnvelope, error) {
	result, err := gojsonschema.Validate(compiledEnvelopeSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &Error{Source: fetch.SourceStats, Message: "payload is not valid JSON", Cause: err}
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, &Error{
			Source:  fetch.SourceStats,
			Message: "payload failed schema validation: " + strings.Join(details, "; "),
		}
	}

	var env statsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Source: fetch.SourceStats, Message: "failed to decode payload", Cause: err}
	}
	return &env, nil
}

// findTable locates a result set by name.
func (env *statsEnvelope) findTable(name string) (*table, error) {
	for _, rs := range env.ResultSets {
		if rs.Name != name {
			continue
		}
		cols := make(map[string]int, len(rs.Headers))
		for i, h := range rs.Headers {
			cols[strings.ToUpper(h)] = i
		}
		return &table{cols: cols, rows: rs.RowSet}, nil
	}
	return nil, &Error{Source: fetch.SourceStats, Message: fmt.Sprintf("result set %q not found", name)}
}

func (t *table) str(row []any, col string) string {
	idx, ok := t.cols[col]
	if !ok || idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return v
	case float64:
		// Numeric IDs decode as float64; print without exponent.
		return strings.TrimSuffix(fmt.Sprintf("%.0f", v), ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (t *table) intPtr(row []any, col string) *int {
	idx, ok := t.cols[col]
	if !ok || idx >= len(row) || row[idx] == nil {
		return nil
	}
	if f, ok := row[idx].(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

// ScoreboardGame is one game discovered from the scoreboard endpoint.
type ScoreboardGame struct {
	GameID     string
	StatusCode string
	SeasonType string
	HomeTeamID string
	AwayTeamID string
}

// ScoreboardGames extracts the GameHeader rows from a scoreboard payload,
// filtered to regular-season games (season type 2).
func ScoreboardGames(body []byte) ([]ScoreboardGame, error) {
	env, err := parseStatsEnvelope(body)
	if err != nil {
		return nil, err
	}
	tbl, err := env.findTable("GameHeader")
	if err != nil {
		return nil, err
	}

	var games []ScoreboardGame
	for _, row := range tbl.rows {
		gameID := tbl.str(row, "GAME_ID")
		if gameID == "" {
			continue
		}
		// Regular-season game IDs start with "002"; preseason and
		// playoffs are out of scope for the backfill.
		if !strings.HasPrefix(gameID, "002") {
			continue
		}
		games = append(games, ScoreboardGame{
			GameID:     gameID,
			StatusCode: tbl.str(row, "GAME_STATUS_ID"),
			SeasonType: tbl.str(row, "SEASON_TYPE_ID"),
			HomeTeamID: tbl.str(row, "HOME_TEAM_ID"),
			AwayTeamID: tbl.str(row, "VISITOR_TEAM_ID"),
		})
	}
	return games, nil
}

// BoxScore is the normalized form of a boxscoresummaryv2 payload.
type BoxScore struct {
	GameID      string
	StatusCode  string
	HomeTricode string
	AwayTricode string
	HomeScore   *int
	AwayScore   *int
	ArenaName   string
	Attendance  *int
}

// BoxScoreSummary extracts the game summary and line score from a box score
// payload.
func BoxScoreSummary(body []byte) (*BoxScore, error) {
	env, err := parseStatsEnvelope(body)
	if err != nil {
		return nil, err
	}

	summary, err := env.findTable("GameSummary")
	if err != nil {
		return nil, err
	}
	if len(summary.rows) == 0 {
		return nil, &Error{Source: fetch.SourceStats, Message: "GameSummary has no rows"}
	}
	row := summary.rows[0]

	box := &BoxScore{
		GameID:     summary.str(row, "GAME_ID"),
		StatusCode: summary.str(row, "GAME_STATUS_ID"),
	}
	if box.GameID == "" {
		return nil, &Error{Source: fetch.SourceStats, Message: "GameSummary row missing GAME_ID"}
	}
	homeTeamID := summary.str(row, "HOME_TEAM_ID")

	lineScore, err := env.findTable("LineScore")
	if err != nil {
		return nil, err
	}
	for _, ls := range lineScore.rows {
		tricode := lineScore.str(ls, "TEAM_ABBREVIATION")
		pts := lineScore.intPtr(ls, "PTS")
		if lineScore.str(ls, "TEAM_ID") == homeTeamID {
			box.HomeTricode = tricode
			box.HomeScore = pts
		} else {
			box.AwayTricode = tricode
			box.AwayScore = pts
		}
	}

	if info, err := env.findTable("GameInfo"); err == nil && len(info.rows) > 0 {
		box.ArenaName = info.str(info.rows[0], "ARENA_NAME")
		box.Attendance = info.intPtr(info.rows[0], "ATTENDANCE")
	}

	return box, nil
}

// PbpEvent is one normalized play-by-play event.
type PbpEvent struct {
	GameID      string
	EventIdx    int
	Period      int
	ClockText   string
	EventType   string
	Description string
	TeamTricode string
	PlayerName  string
	ScoreText   string
}

// PlayByPlay extracts the event feed from a playbyplayv2 payload.
func PlayByPlay(body []byte) ([]PbpEvent, error) {
	env, err := parseStatsEnvelope(body)
	if err != nil {
		return nil, err
	}
	tbl, err := env.findTable("PlayByPlay")
	if err != nil {
		return nil, err
	}

	events := make([]PbpEvent, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		idx := tbl.intPtr(row, "EVENTNUM")
		period := tbl.intPtr(row, "PERIOD")
		if idx == nil || period == nil {
			continue
		}
		desc := tbl.str(row, "HOMEDESCRIPTION")
		if desc == "" {
			desc = tbl.str(row, "VISITORDESCRIPTION")
		}
		if desc == "" {
			desc = tbl.str(row, "NEUTRALDESCRIPTION")
		}
		events = append(events, PbpEvent{
			GameID:      tbl.str(row, "GAME_ID"),
			EventIdx:    *idx,
			Period:      *period,
			ClockText:   tbl.str(row, "PCTIMESTRING"),
			EventType:   tbl.str(row, "EVENTMSGTYPE"),
			Description: desc,
			TeamTricode: tbl.str(row, "PLAYER1_TEAM_ABBREVIATION"),
			PlayerName:  tbl.str(row, "PLAYER1_NAME"),
			ScoreText:   tbl.str(row, "SCORE"),
		})
	}
	return events, nil
}

// Shot is one normalized shot-chart attempt.
type Shot struct {
	GameID      string
	EventIdx    int
	Period      int
	TeamTricode string
	PlayerName  string
	LocX        int
	LocY        int
	Made        bool
	Value       int
}

// ShotChart extracts shot attempts from a shotchartdetail payload.
func ShotChart(body []byte) ([]Shot, error) {
	env, err := parseStatsEnvelope(body)
	if err != nil {
		return nil, err
	}
	tbl, err := env.findTable("Shot_Chart_Detail")
	if err != nil {
		return nil, err
	}

	shots := make([]Shot, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		idx := tbl.intPtr(row, "GAME_EVENT_ID")
		period := tbl.intPtr(row, "PERIOD")
		if idx == nil || period == nil {
			continue
		}
		value := 2
		if strings.Contains(tbl.str(row, "SHOT_TYPE"), "3PT") {
			value = 3
		}
		locX, locY := 0, 0
		if p := tbl.intPtr(row, "LOC_X"); p != nil {
			locX = *p
		}
		if p := tbl.intPtr(row, "LOC_Y"); p != nil {
			locY = *p
		}
		made := false
		if p := tbl.intPtr(row, "SHOT_MADE_FLAG"); p != nil {
			made = *p == 1
		}
		shots = append(shots, Shot{
			GameID:      tbl.str(row, "GAME_ID"),
			EventIdx:    *idx,
			Period:      *period,
			TeamTricode: tbl.str(row, "TEAM_NAME"),
			PlayerName:  tbl.str(row, "PLAYER_NAME"),
			LocX:        locX,
			LocY:        locY,
			Made:        made,
			Value:       value,
		})
	}
	return shots, nil
}
