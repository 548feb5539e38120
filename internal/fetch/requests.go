package fetch

import (
	"fmt"
	"net/url"
	"time"
)

// Endpoints holds the base URLs for the three sources. Tests point these at
// httptest servers; production uses the defaults.
type Endpoints struct {
	StatsBaseURL     string
	BRefBaseURL      string
	GamebooksBaseURL string
}

// DefaultEndpoints returns the production base URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		StatsBaseURL:     "https://stats.nba.com/stats",
		BRefBaseURL:      "https://www.basketball-reference.com",
		GamebooksBaseURL: "https://official.nba.com/gamebooks",
	}
}

// statsHeaders are required by the stats API; requests without them are
// rejected.
func statsHeaders() map[string]string {
	return map[string]string{
		"Referer":            "https://www.nba.com/",
		"Accept":             "application/json",
		"x-nba-stats-origin": "stats",
	}
}

// ScoreboardRequest fetches the slate of games for a date. This is the
// discovery endpoint: its GameHeader result set lists game IDs.
func (e Endpoints) ScoreboardRequest(day time.Time) Request {
	q := url.Values{}
	q.Set("GameDate", day.Format("2006-01-02"))
	q.Set("LeagueID", "00")
	q.Set("DayOffset", "0")
	return Request{
		Source:  SourceStats,
		URL:     fmt.Sprintf("%s/scoreboardv2?%s", e.StatsBaseURL, q.Encode()),
		Headers: statsHeaders(),
	}
}

// BoxScoreRequest fetches the box score summary for a game.
func (e Endpoints) BoxScoreRequest(gameID string) Request {
	q := url.Values{}
	q.Set("GameID", gameID)
	return Request{
		Source:  SourceStats,
		URL:     fmt.Sprintf("%s/boxscoresummaryv2?%s", e.StatsBaseURL, q.Encode()),
		Headers: statsHeaders(),
	}
}

// PlayByPlayRequest fetches the full play-by-play feed for a game.
func (e Endpoints) PlayByPlayRequest(gameID string) Request {
	q := url.Values{}
	q.Set("GameID", gameID)
	q.Set("StartPeriod", "1")
	q.Set("EndPeriod", "10")
	return Request{
		Source:  SourceStats,
		URL:     fmt.Sprintf("%s/playbyplayv2?%s", e.StatsBaseURL, q.Encode()),
		Headers: statsHeaders(),
	}
}

// ShotChartRequest fetches shot locations for a game.
func (e Endpoints) ShotChartRequest(gameID string) Request {
	q := url.Values{}
	q.Set("GameID", gameID)
	q.Set("ContextMeasure", "FGA")
	return Request{
		Source:  SourceStats,
		URL:     fmt.Sprintf("%s/shotchartdetail?%s", e.StatsBaseURL, q.Encode()),
		Headers: statsHeaders(),
	}
}

// BRefBoxRequest fetches the reference site's box score page. The page slug
// is the game date plus home tricode, e.g. /boxscores/202410220BOS.html.
func (e Endpoints) BRefBoxRequest(day time.Time, homeTricode string) Request {
	return Request{
		Source: SourceBRef,
		URL:    fmt.Sprintf("%s/boxscores/%s0%s.html", e.BRefBaseURL, day.Format("20060102"), homeTricode),
	}
}

// GamebookRequest fetches the text rendition of the official gamebook for a
// game. PDF-to-text conversion happens upstream of this service; the
// endpoint serves plain text.
func (e Endpoints) GamebookRequest(day time.Time, gameID string) Request {
	return Request{
		Source: SourceGamebooks,
		URL:    fmt.Sprintf("%s/%s/%s.txt", e.GamebooksBaseURL, day.Format("2006-01-02"), gameID),
	}
}
