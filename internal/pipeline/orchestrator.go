package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonathan/nba-ingest/internal/extract"
	"github.com/jonathan/nba-ingest/internal/season"
)

// WatermarkStage is the stage name backfill watermarks are stored under.
const WatermarkStage = "backfill"

// Backfill walks a season or an explicit date range in chunks, discovers the
// games in each chunk, and drives a GameUnit per game with bounded
// concurrency. Progress is checkpointed per chunk through the watermark
// store so an interrupted run resumes where it left off.
type Backfill struct {
	Unit    *GameUnit
	Storage Storage

	// Season selects a whole season by label. When empty, StartDate and
	// EndDate bound the run instead.
	Season             string
	StartDate, EndDate time.Time

	// SinceGameID overrides the stored watermark as the resume point. The
	// stored watermark is still never regressed.
	SinceGameID string

	ChunkDays   int
	Concurrency int

	// OnResult is called after each game unit finishes, from the chunk's
	// scheduling goroutine. Optional.
	OnResult func(*Result)
}

// ChunkReport summarizes one date chunk. Err is set when the chunk itself
// failed, which leaves its counters at zero.
type ChunkReport struct {
	Start     time.Time
	End       time.Time
	Games     int
	Successes int
	SoftFails int
	HardFails int
	Err       error
}

// RunSummary aggregates a whole backfill run.
type RunSummary struct {
	Season         string
	Key            string
	Chunks         []ChunkReport
	FailedChunks   int
	Games          int
	Successes      int
	SoftFails      int
	HardFails      int
	FinalWatermark string
}

// Failures returns the count of unrecovered failures: games that did not
// commit cleanly plus chunks that never got to run their games.
func (s *RunSummary) Failures() int {
	return s.SoftFails + s.HardFails + s.FailedChunks
}

// Run executes the backfill. Games at or below the resume point are skipped;
// the watermark advances to the highest game ID attempted in each chunk,
// whether or not every game in the chunk committed, so failed games are
// never silently retried by a resume. They sit in quarantine instead. A
// chunk that fails outright is recorded and counted, and the run moves on to
// the next chunk. Dry runs never touch the stored watermark. Cancellation
// starts nothing new: in-flight games drain and no further chunk runs.
func (b *Backfill) Run(ctx context.Context) (*RunSummary, error) {
	if b.ChunkDays <= 0 {
		b.ChunkDays = 7
	}
	if b.Concurrency <= 0 {
		b.Concurrency = 4
	}

	start, end, key, err := b.bounds()
	if err != nil {
		return nil, err
	}

	stored, err := b.Storage.GetWatermark(ctx, WatermarkStage, key)
	if err != nil {
		return nil, err
	}
	resume := stored
	if b.SinceGameID != "" {
		resume = b.SinceGameID
	}

	dryRun := b.Unit != nil && b.Unit.DryRun
	summary := &RunSummary{Season: b.Season, Key: key, FinalWatermark: resume}

	for chunkStart := start; !chunkStart.After(end); chunkStart = chunkStart.AddDate(0, 0, b.ChunkDays) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		chunkEnd := chunkStart.AddDate(0, 0, b.ChunkDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		report, maxAttempted, err := b.runChunk(ctx, chunkStart, chunkEnd, summary.FinalWatermark)
		if err != nil {
			if ctx.Err() != nil {
				return summary, err
			}
			// The chunk is lost but the run is not. Later chunks still get
			// their attempt; the watermark stays put so a rerun revisits
			// this window.
			report.Err = err
			summary.Chunks = append(summary.Chunks, *report)
			summary.FailedChunks++
			continue
		}
		summary.Chunks = append(summary.Chunks, *report)
		summary.Games += report.Games
		summary.Successes += report.Successes
		summary.SoftFails += report.SoftFails
		summary.HardFails += report.HardFails

		// The watermark only moves forward. An empty chunk leaves it alone,
		// and a resume override below the stored mark never rewinds it.
		if maxAttempted > summary.FinalWatermark {
			if !dryRun && maxAttempted > stored {
				if err := b.Storage.SetWatermark(ctx, WatermarkStage, key, maxAttempted); err != nil {
					return summary, fmt.Errorf("failed to advance watermark after chunk ending %s: %w",
						chunkEnd.Format("2006-01-02"), err)
				}
				stored = maxAttempted
			}
			summary.FinalWatermark = maxAttempted
		}
	}

	return summary, nil
}

// bounds resolves the run's date window and its watermark key: the season
// label for season runs, the date range itself otherwise.
func (b *Backfill) bounds() (start, end time.Time, key string, err error) {
	if b.Season != "" {
		start, end, err = season.Bounds(b.Season)
		return start, end, b.Season, err
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return time.Time{}, time.Time{}, "", fmt.Errorf("backfill needs a season label or both a start and end date")
	}
	if b.EndDate.Before(b.StartDate) {
		return time.Time{}, time.Time{}, "", fmt.Errorf("backfill end date %s precedes start date %s",
			b.EndDate.Format("2006-01-02"), b.StartDate.Format("2006-01-02"))
	}
	key = b.StartDate.Format("2006-01-02") + ".." + b.EndDate.Format("2006-01-02")
	return b.StartDate, b.EndDate, key, nil
}

type scheduledGame struct {
	game extract.ScoreboardGame
	day  time.Time
}

// runChunk discovers and processes one chunk. Game failures are counted,
// not propagated; only discovery errors and cancellation abort the chunk.
func (b *Backfill) runChunk(ctx context.Context, start, end time.Time, watermark string) (*ChunkReport, string, error) {
	report := &ChunkReport{Start: start, End: end}

	var games []scheduledGame
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		slate, err := b.Unit.DiscoverGames(ctx, day)
		if err != nil {
			return report, "", fmt.Errorf("failed to discover games for %s: %w", day.Format("2006-01-02"), err)
		}
		for _, g := range slate {
			games = append(games, scheduledGame{game: g, day: day})
		}
	}

	// Deterministic order makes the strictly-greater resume filter exact:
	// everything at or below the watermark has already been attempted.
	sort.Slice(games, func(i, j int) bool { return games[i].game.GameID < games[j].game.GameID })

	maxAttempted := ""
	sem := semaphore.NewWeighted(int64(b.Concurrency))
	results := make(chan *Result, len(games))
	inFlight := 0

	for _, sg := range games {
		if sg.game.GameID <= watermark {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		report.Games++
		if sg.game.GameID > maxAttempted {
			maxAttempted = sg.game.GameID
		}
		inFlight++
		go func(sg scheduledGame) {
			defer sem.Release(1)
			label := b.Season
			if label == "" {
				label = season.ForDate(sg.day)
			}
			results <- b.Unit.Run(ctx, sg.game.GameID, sg.day, label)
		}(sg)
	}

	for i := 0; i < inFlight; i++ {
		res := <-results
		switch res.Outcome {
		case OutcomeSuccess:
			report.Successes++
		case OutcomeSoftFail:
			report.SoftFails++
		default:
			report.HardFails++
		}
		if b.OnResult != nil {
			b.OnResult(res)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, maxAttempted, err
	}
	return report, maxAttempted, nil
}
