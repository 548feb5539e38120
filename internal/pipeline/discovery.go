package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/nba-ingest/internal/extract"
	"github.com/jonathan/nba-ingest/internal/fetch"
)

// DiscoverGames lists the regular-season game IDs scheduled on a date from
// the scoreboard endpoint. A day with no slate returns an empty slice; a
// missing scoreboard page does too, since off days 404.
func (u *GameUnit) DiscoverGames(ctx context.Context, day time.Time) ([]extract.ScoreboardGame, error) {
	var games []extract.ScoreboardGame
	err := u.Registry.Do(ctx, fetch.SourceStats, func(ctx context.Context) error {
		result, err := u.Client.Do(ctx, u.Endpoints.ScoreboardRequest(day))
		if err != nil {
			return err
		}
		games, err = extract.ScoreboardGames(result.Body)
		return err
	})
	if err != nil {
		var ferr *fetch.Error
		if errors.As(err, &ferr) && ferr.Status == 404 {
			return nil, nil
		}
		return nil, err
	}
	return games, nil
}
