// Package models defines the validated row types written by the game loader.
// Every row carries the natural key it is upserted by; dependent rows embed
// the parent game ID so repeated loads converge instead of duplicating.
package models

import "time"

// GameRow is the parent record for a single game. All dependent tables
// reference GameID.
type GameRow struct {
	GameID        string
	Season        string
	GameDate      time.Time
	HomeTricode   string
	AwayTricode   string
	HomeScore     *int
	AwayScore     *int
	Status        GameStatus
	ArenaName     string
	Attendance    *int
	SourceURL     string
	IngestedAtUTC time.Time
}

// PbpEventRow is one play-by-play event. Natural key: (GameID, EventIdx).
type PbpEventRow struct {
	GameID       string
	EventIdx     int
	Period       int
	ClockSeconds *float64
	EventType    string
	Description  string
	TeamTricode  string
	PlayerName   string
	HomeScore    *int
	AwayScore    *int
}

// LineupRow is one starting-lineup slot. Natural key:
// (GameID, TeamTricode, PlayerName).
type LineupRow struct {
	GameID      string
	TeamTricode string
	PlayerName  string
	Position    string
	Starter     bool
}

// ShotRow is one shot-chart attempt. Natural key: (GameID, EventIdx).
type ShotRow struct {
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

// RefAssignmentRow is one official on the game crew. Natural key:
// (GameID, RefName).
type RefAssignmentRow struct {
	GameID  string
	RefName string
	Role    RefRole
}

// RefAlternateRow is an alternate official listed on the gamebook.
// Natural key: (GameID, RefName).
type RefAlternateRow struct {
	GameID  string
	RefName string
}

// GameData bundles everything the pipeline collected for one game, ready for
// a single transactional load. Slices may be empty when a source failed or
// produced nothing; the parent Game must always be present.
type GameData struct {
	Game           *GameRow
	PbpEvents      []PbpEventRow
	Lineups        []LineupRow
	Shots          []ShotRow
	RefAssignments []RefAssignmentRow
	RefAlternates  []RefAlternateRow
}
