package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/nba-ingest/internal/extract"
	"github.com/jonathan/nba-ingest/internal/fetch"
	"github.com/jonathan/nba-ingest/internal/metrics"
	"github.com/jonathan/nba-ingest/internal/models"
	"github.com/jonathan/nba-ingest/internal/quality"
	"github.com/jonathan/nba-ingest/internal/resilience"
	"github.com/jonathan/nba-ingest/internal/transform"
)

// GameUnit runs the per-game ingestion pipeline: fetch all sources, extract
// and validate, commit in one transaction, then gate the committed rows. A
// unit either commits everything for the game or commits nothing.
type GameUnit struct {
	Client    *fetch.Client
	Endpoints fetch.Endpoints
	Registry  *resilience.Registry
	Storage   Storage
	Metrics   *metrics.Metrics
	Gate      quality.Thresholds
	Resolver  *transform.DateResolver

	// RunID tags quarantine entries written by this unit.
	RunID uuid.UUID

	// DryRun skips the transactional load and quarantine writes.
	DryRun bool

	// UseBrowser enables headless rendering when the reference site serves
	// a challenge shell instead of the document.
	UseBrowser bool
}

// Run processes one game. Optional sources (reference site, gamebooks)
// failing permanently degrade the record; the stats box score failing before
// anything is written, or the quality gate flagging the committed rows, is a
// soft failure. Only infrastructure errors are hard failures.
func (u *GameUnit) Run(ctx context.Context, gameID string, scheduled time.Time, season string) *Result {
	started := time.Now()
	res := &Result{
		GameID:       gameID,
		SourceErrors: make(map[string]error),
	}
	defer func() {
		res.Duration = time.Since(started)
		if u.Metrics != nil {
			u.Metrics.GamesProcessed.WithLabelValues(string(res.Outcome)).Inc()
		}
	}()

	box, err := u.fetchBoxScore(ctx, gameID)
	if err != nil {
		return u.fail(ctx, res, "box_score_failed", err)
	}

	game, err := transform.GameRow(box, season, scheduled, u.Endpoints.BoxScoreRequest(gameID).URL)
	if err != nil {
		return u.fail(ctx, res, "box_score_invalid", err)
	}

	data := &models.GameData{Game: game}

	// Dependent sources run concurrently. Each failure is contained to its
	// slot; the goroutines never abort the group.
	var (
		pbpEvents []extract.PbpEvent
		shots     []extract.Shot
		brefBox   *extract.BRefBox
		crew      *extract.GamebookCrew
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := u.fetchPlayByPlay(gctx, gameID)
		if err != nil {
			res.SourceErrors["pbp"] = err
			return nil
		}
		pbpEvents = events
		return nil
	})
	g.Go(func() error {
		s, err := u.fetchShotChart(gctx, gameID)
		if err != nil {
			res.SourceErrors["shots"] = err
			return nil
		}
		shots = s
		return nil
	})
	g.Go(func() error {
		b, err := u.fetchBRefBox(gctx, gameID, scheduled, game.HomeTricode)
		if err != nil {
			res.SourceErrors[fetch.SourceBRef] = err
			return nil
		}
		brefBox = b
		return nil
	})
	g.Go(func() error {
		c, err := u.fetchGamebook(gctx, gameID, scheduled)
		if err != nil {
			res.SourceErrors[fetch.SourceGamebooks] = err
			return nil
		}
		crew = c
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		res.Outcome = OutcomeHardFail
		res.Err = err
		return res
	}

	var rowErrs []error
	data.PbpEvents, rowErrs = transform.PbpEventRows(gameID, pbpEvents)
	recordRowErrors(res, "pbp_rows", rowErrs)
	if brefBox != nil {
		transform.MergeBRefOutcomes(game, brefBox)
		data.Lineups, rowErrs = transform.LineupRows(gameID, brefBox.Starters)
		recordRowErrors(res, "lineup_rows", rowErrs)
	}
	data.Shots, rowErrs = transform.ShotRows(gameID, shots)
	recordRowErrors(res, "shot_rows", rowErrs)
	if crew != nil {
		data.RefAssignments, data.RefAlternates = transform.RefRows(gameID, crew)
	}

	if u.DryRun {
		res.RowsByTable = countRows(data)
	} else {
		counts, err := u.Storage.LoadGameData(ctx, data)
		if err != nil {
			res.Outcome = OutcomeHardFail
			res.Err = fmt.Errorf("failed to load game %s: %w", gameID, err)
			return res
		}
		if u.Metrics != nil {
			for table, n := range counts {
				u.Metrics.RowsWritten.WithLabelValues(table).Add(float64(n))
			}
		}
		res.RowsByTable = counts
	}

	// The gate runs against what was just committed. A failing gate does not
	// roll anything back; the rows stay queryable and the game is flagged.
	if violations := quality.Check(u.Gate, data); len(violations) > 0 {
		for _, v := range violations {
			res.Violations = append(res.Violations, v.String())
		}
		return u.fail(ctx, res, "quality_gate", fmt.Errorf("game %s committed below quality threshold: %d violations", gameID, len(violations)))
	}

	res.Outcome = OutcomeSuccess
	return res
}

// recordRowErrors folds per-row transform failures into the result's error
// map so partial row drops are reported instead of silently discarded.
func recordRowErrors(res *Result, slot string, errs []error) {
	if len(errs) == 0 {
		return
	}
	res.SourceErrors[slot] = errors.Join(errs...)
}

// fail marks the result as a soft failure and quarantines the game, unless
// the context is gone, which is a hard failure instead.
func (u *GameUnit) fail(ctx context.Context, res *Result, reason string, err error) *Result {
	if ctx.Err() != nil {
		res.Outcome = OutcomeHardFail
		res.Err = ctx.Err()
		return res
	}
	res.Outcome = OutcomeSoftFail
	res.Err = err

	if !u.DryRun && u.Storage != nil {
		detail := err.Error()
		if len(res.Violations) > 0 {
			detail = fmt.Sprintf("%s (%d violations)", res.Violations[0], len(res.Violations))
		}
		if qerr := u.Storage.Quarantine(ctx, res.GameID, u.RunID, reason, detail); qerr != nil {
			// Quarantine is best effort on a soft fail; losing the entry
			// must not escalate the failure.
			res.SourceErrors["quarantine"] = qerr
		} else if u.Metrics != nil {
			u.Metrics.QuarantineEntries.Inc()
		}
	}
	return res
}

func (u *GameUnit) fetchBoxScore(ctx context.Context, gameID string) (*extract.BoxScore, error) {
	var box *extract.BoxScore
	err := u.Registry.Do(ctx, fetch.SourceStats, func(ctx context.Context) error {
		result, err := u.Client.Do(ctx, u.Endpoints.BoxScoreRequest(gameID))
		if err != nil {
			return err
		}
		box, err = extract.BoxScoreSummary(result.Body)
		return err
	})
	return box, err
}

func (u *GameUnit) fetchPlayByPlay(ctx context.Context, gameID string) ([]extract.PbpEvent, error) {
	var events []extract.PbpEvent
	err := u.Registry.Do(ctx, fetch.SourceStats, func(ctx context.Context) error {
		result, err := u.Client.Do(ctx, u.Endpoints.PlayByPlayRequest(gameID))
		if err != nil {
			return err
		}
		events, err = extract.PlayByPlay(result.Body)
		return err
	})
	return events, err
}

func (u *GameUnit) fetchShotChart(ctx context.Context, gameID string) ([]extract.Shot, error) {
	var shots []extract.Shot
	err := u.Registry.Do(ctx, fetch.SourceStats, func(ctx context.Context) error {
		result, err := u.Client.Do(ctx, u.Endpoints.ShotChartRequest(gameID))
		if err != nil {
			return err
		}
		shots, err = extract.ShotChart(result.Body)
		return err
	})
	return shots, err
}

// fetchBRefBox retrieves the reference-site box score. When the page is
// missing on the scheduled date the resolver probes makeup dates, which
// covers postponed games that moved.
func (u *GameUnit) fetchBRefBox(ctx context.Context, gameID string, scheduled time.Time, homeTricode string) (*extract.BRefBox, error) {
	var body []byte

	probe := func(ctx context.Context, day time.Time) (bool, error) {
		err := u.Registry.Do(ctx, fetch.SourceBRef, func(ctx context.Context) error {
			result, err := u.Client.Do(ctx, u.Endpoints.BRefBoxRequest(day, homeTricode))
			if err != nil {
				return err
			}
			body = result.Body
			return nil
		})
		if err == nil {
			return true, nil
		}
		var ferr *fetch.Error
		if errors.As(err, &ferr) && ferr.Status == 404 {
			return false, nil
		}
		return false, err
	}

	resolver := u.Resolver
	if resolver == nil {
		resolver = &transform.DateResolver{}
	}
	day, err := resolver.Resolve(ctx, gameID, scheduled, probe)
	if err != nil {
		return nil, err
	}

	// An override date comes back without having been probed; fetch it now.
	if body == nil {
		ok, err := probe(ctx, day)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no box score page for game %s on override date %s",
				gameID, day.Format("2006-01-02"))
		}
	}

	if u.UseBrowser && fetch.ShouldUseBrowser(body) {
		rendered, err := fetch.RenderWithBrowser(ctx, u.Endpoints.BRefBoxRequest(day, homeTricode).URL, 60*time.Second)
		if err != nil {
			return nil, err
		}
		body = rendered
	}
	return extract.BRefBoxScore(body)
}

func (u *GameUnit) fetchGamebook(ctx context.Context, gameID string, day time.Time) (*extract.GamebookCrew, error) {
	var crew *extract.GamebookCrew
	err := u.Registry.Do(ctx, fetch.SourceGamebooks, func(ctx context.Context) error {
		result, err := u.Client.Do(ctx, u.Endpoints.GamebookRequest(day, gameID))
		if err != nil {
			return err
		}
		crew, err = extract.GamebookOfficials(result.Body)
		return err
	})
	return crew, err
}

func countRows(data *models.GameData) map[string]int {
	counts := map[string]int{"games": 1}
	if n := len(data.PbpEvents); n > 0 {
		counts["pbp_events"] = n
	}
	if n := len(data.Lineups); n > 0 {
		counts["starting_lineups"] = n
	}
	if n := len(data.Shots); n > 0 {
		counts["shots"] = n
	}
	if n := len(data.RefAssignments) + len(data.RefAlternates); n > 0 {
		counts["ref_assignments"] = n
	}
	return counts
}
