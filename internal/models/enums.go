package models

import "fmt"

// GameStatus is the lifecycle state of a game as reported by the sources.
type GameStatus string

const (
	StatusScheduled GameStatus = "SCHEDULED"
	StatusLive      GameStatus = "LIVE"
	StatusFinal     GameStatus = "FINAL"
	StatusPostponed GameStatus = "POSTPONED"
)

// ParseGameStatus maps the status codes the stats API uses (1=scheduled,
// 2=live, 3=final) and the textual forms the reference site uses onto a
// GameStatus.
func ParseGameStatus(raw string) (GameStatus, error) {
	switch raw {
	case "1", "SCHEDULED", "Scheduled":
		return StatusScheduled, nil
	case "2", "LIVE", "Live", "In Progress":
		return StatusLive, nil
	case "3", "FINAL", "Final":
		return StatusFinal, nil
	case "PPD", "POSTPONED", "Postponed":
		return StatusPostponed, nil
	}
	return "", fmt.Errorf("unknown game status %q", raw)
}

// RefRole distinguishes crew positions on a referee assignment.
type RefRole string

const (
	RefCrewChief RefRole = "CREW_CHIEF"
	RefReferee   RefRole = "REFEREE"
	RefUmpire    RefRole = "UMPIRE"
)
