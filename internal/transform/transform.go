// Package transform turns normalized intermediate records into validated row
// models ready for loading. Functions are pure; malformed records produce
// RowError values contained to their source.
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/nba-ingest/internal/extract"
	"github.com/jonathan/nba-ingest/internal/models"
)

// RowError reports a record that failed validation.
type RowError struct {
	Table   string
	Key     string
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("invalid %s row %s: %s", e.Table, e.Key, e.Message)
}

var (
	tricodeRe = regexp.MustCompile(`^[A-Z]{2,4}$`)
	gameIDRe  = regexp.MustCompile(`^\d{10}$`)
	clockRe   = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\.(\d))?$`)
)

// ParseClock converts a "MM:SS" or "MM:SS.t" period clock string into
// seconds remaining. Empty strings return nil (some event types carry no
// clock).
func ParseClock(text string) (*float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("unparseable clock %q", text)
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	if seconds >= 60 {
		return nil, fmt.Errorf("clock %q has seconds >= 60", text)
	}
	total := float64(minutes*60 + seconds)
	if m[3] != "" {
		tenths, _ := strconv.Atoi(m[3])
		total += float64(tenths) / 10
	}
	return &total, nil
}

// parseScoreText splits the stats API's "away - home" running score.
func parseScoreText(text string) (away, home *int) {
	parts := strings.SplitN(text, "-", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	if a, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		away = &a
	}
	if h, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
		home = &h
	}
	return away, home
}

// GameRow builds the parent game record from a stats box score.
func GameRow(box *extract.BoxScore, season string, gameDate time.Time, sourceURL string) (*models.GameRow, error) {
	if !gameIDRe.MatchString(box.GameID) {
		return nil, &RowError{Table: "games", Key: box.GameID, Message: "game id must be a 10-digit code"}
	}
	if !tricodeRe.MatchString(box.HomeTricode) || !tricodeRe.MatchString(box.AwayTricode) {
		return nil, &RowError{Table: "games", Key: box.GameID, Message: "invalid team tricode"}
	}
	status, err := models.ParseGameStatus(box.StatusCode)
	if err != nil {
		return nil, &RowError{Table: "games", Key: box.GameID, Message: err.Error()}
	}
	if status == models.StatusFinal && (box.HomeScore == nil || box.AwayScore == nil) {
		return nil, &RowError{Table: "games", Key: box.GameID, Message: "final game missing scores"}
	}

	return &models.GameRow{
		GameID:        box.GameID,
		Season:        season,
		GameDate:      gameDate,
		HomeTricode:   box.HomeTricode,
		AwayTricode:   box.AwayTricode,
		HomeScore:     box.HomeScore,
		AwayScore:     box.AwayScore,
		Status:        status,
		ArenaName:     box.ArenaName,
		Attendance:    box.Attendance,
		SourceURL:     sourceURL,
		IngestedAtUTC: time.Now().UTC(),
	}, nil
}

// MergeBRefOutcomes fills gaps in a game row from the reference site:
// missing scores, arena, and attendance. The stats API stays authoritative
// when both sources disagree.
func MergeBRefOutcomes(game *models.GameRow, bref *extract.BRefBox) {
	if game.HomeScore == nil {
		game.HomeScore = bref.HomeScore
	}
	if game.AwayScore == nil {
		game.AwayScore = bref.AwayScore
	}
	if game.ArenaName == "" {
		game.ArenaName = bref.ArenaName
	}
	if game.Attendance == nil {
		game.Attendance = bref.Attendance
	}
}

// PbpEventRows validates play-by-play events for one game. Events whose
// clock cannot be parsed keep a nil clock rather than dropping the event;
// the quality gate measures clock coverage downstream.
func PbpEventRows(gameID string, events []extract.PbpEvent) ([]models.PbpEventRow, []error) {
	var rows []models.PbpEventRow
	var errs []error
	for _, ev := range events {
		if ev.GameID != "" && ev.GameID != gameID {
			errs = append(errs, &RowError{
				Table:   "pbp_events",
				Key:     fmt.Sprintf("%s/%d", ev.GameID, ev.EventIdx),
				Message: "event belongs to a different game",
			})
			continue
		}
		if ev.Period < 1 || ev.Period > 10 {
			errs = append(errs, &RowError{
				Table:   "pbp_events",
				Key:     fmt.Sprintf("%s/%d", gameID, ev.EventIdx),
				Message: fmt.Sprintf("period %d out of range", ev.Period),
			})
			continue
		}
		clock, err := ParseClock(ev.ClockText)
		if err != nil {
			clock = nil
		}
		away, home := parseScoreText(ev.ScoreText)
		rows = append(rows, models.PbpEventRow{
			GameID:       gameID,
			EventIdx:     ev.EventIdx,
			Period:       ev.Period,
			ClockSeconds: clock,
			EventType:    ev.EventType,
			Description:  ev.Description,
			TeamTricode:  ev.TeamTricode,
			PlayerName:   ev.PlayerName,
			HomeScore:    home,
			AwayScore:    away,
		})
	}
	return rows, errs
}

// LineupRows validates starting lineups scraped from the reference site.
func LineupRows(gameID string, starters []extract.BRefStarter) ([]models.LineupRow, []error) {
	var rows []models.LineupRow
	var errs []error
	seen := make(map[string]bool)
	for _, s := range starters {
		if !tricodeRe.MatchString(s.TeamTricode) {
			errs = append(errs, &RowError{
				Table:   "starting_lineups",
				Key:     gameID + "/" + s.PlayerName,
				Message: "invalid team tricode " + s.TeamTricode,
			})
			continue
		}
		key := s.TeamTricode + "/" + s.PlayerName
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, models.LineupRow{
			GameID:      gameID,
			TeamTricode: s.TeamTricode,
			PlayerName:  s.PlayerName,
			Starter:     true,
		})
	}
	return rows, errs
}

// ShotRows validates shot-chart attempts.
func ShotRows(gameID string, shots []extract.Shot) ([]models.ShotRow, []error) {
	var rows []models.ShotRow
	var errs []error
	for _, s := range shots {
		if s.Value != 2 && s.Value != 3 {
			errs = append(errs, &RowError{
				Table:   "shots",
				Key:     fmt.Sprintf("%s/%d", gameID, s.EventIdx),
				Message: fmt.Sprintf("shot value %d", s.Value),
			})
			continue
		}
		rows = append(rows, models.ShotRow{
			GameID:      gameID,
			EventIdx:    s.EventIdx,
			Period:      s.Period,
			TeamTricode: s.TeamTricode,
			PlayerName:  s.PlayerName,
			LocX:        s.LocX,
			LocY:        s.LocY,
			Made:        s.Made,
			Value:       s.Value,
		})
	}
	return rows, errs
}

// RefRows converts a gamebook crew into assignment and alternate rows. Crew
// order determines roles: chief, then referee, then umpire.
func RefRows(gameID string, crew *extract.GamebookCrew) ([]models.RefAssignmentRow, []models.RefAlternateRow) {
	roles := []models.RefRole{models.RefCrewChief, models.RefReferee, models.RefUmpire}

	var assignments []models.RefAssignmentRow
	for i, name := range crew.Officials {
		role := models.RefUmpire
		if i < len(roles) {
			role = roles[i]
		}
		assignments = append(assignments, models.RefAssignmentRow{
			GameID:  gameID,
			RefName: name,
			Role:    role,
		})
	}

	var alternates []models.RefAlternateRow
	for _, name := range crew.Alternates {
		alternates = append(alternates, models.RefAlternateRow{
			GameID:  gameID,
			RefName: name,
		})
	}
	return assignments, alternates
}
