// Package sim runs Monte Carlo completions of the remaining schedule and
// aggregates end-of-season outcomes into per-entrant frequencies. One run
// is a bounded compute task: trials execute sequentially, cancellation is
// polled between trials, and a fixed seed makes the whole run (coin-toss
// tiebreakers included) bit-identical across repeats.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/gridironsim/playoff-odds/internal/league"
	"github.com/gridironsim/playoff-odds/internal/odds"
	"github.com/gridironsim/playoff-odds/internal/seeding"
	"github.com/gridironsim/playoff-odds/internal/tiebreak"
)

// DefaultScoreMean is the per-side Poisson mean for drawn scores,
// approximating the league's average points per game.
const DefaultScoreMean = 24.0

// ErrCancelled is the terminal state of a run whose cancellation was
// observed between trials. The partial aggregate is returned alongside it
// but its counts are not valid probabilities.
var ErrCancelled = errors.New("simulation cancelled")

// Options configures one simulation run.
type Options struct {
	// Trials is the number of randomized season completions. Must be
	// positive.
	Trials int

	// Seed, when non-nil, makes the run reproducible. All randomness,
	// including outcome draws, score draws, and coin-toss tiebreaks,
	// flows from this one source.
	Seed *int64

	// WeightedByOdds draws each undecided matchup from its vig-free
	// moneyline probability instead of a 50/50 coin flip.
	WeightedByOdds bool

	// RemoveVig controls vig stripping when WeightedByOdds is set.
	RemoveVig bool

	// ScoreMean overrides DefaultScoreMean when positive.
	ScoreMean float64

	// Progress, when set, receives integer percent-complete values,
	// monotonically non-decreasing from 0 to 100 at roughly 1%
	// granularity.
	Progress func(pct int)

	// Cancelled, when set, is polled between trials; returning true
	// terminates the run with ErrCancelled.
	Cancelled func() bool

	Logger *slog.Logger
}

// SimulateSeason runs the Monte Carlo engine over the given schedule.
// The caller's matchup slice is treated as a read-only snapshot; per-trial
// score injection happens on an internal working copy.
//
// If every matchup is already decided, each trial produces the same
// deterministic standings and seeding.
func SimulateSeason(ctx context.Context, matchups []league.Matchup, entrants []league.Entrant, opts Options) (*Result, error) {
	if opts.Trials <= 0 {
		return nil, fmt.Errorf("trial count must be positive, got %d: %w", opts.Trials, tiebreak.ErrInvalidInput)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scoreMean := opts.ScoreMean
	if scoreMean <= 0 {
		scoreMean = DefaultScoreMean
	}

	start := time.Now()

	var seed int64
	if opts.Seed != nil {
		seed = *opts.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	resolver := tiebreak.NewResolver(rng, logger)
	seeder := seeding.NewEngine(resolver, logger)

	// Partition once; the undecided working copies live in a reusable
	// arena so trials allocate nothing per iteration.
	var decided, undecided []league.Matchup
	for i := range matchups {
		switch {
		case matchups[i].Completed:
			decided = append(decided, matchups[i])
		case matchups[i].Overridden:
			// A score override forces the outcome of an unplayed game;
			// it is never re-drawn.
			forced := matchups[i]
			forced.Completed = true
			decided = append(decided, forced)
		default:
			undecided = append(undecided, matchups[i])
		}
	}
	logger.Info("starting simulation",
		"trials", opts.Trials, "decided", len(decided), "undecided", len(undecided),
		"weighted_by_odds", opts.WeightedByOdds, "seeded", opts.Seed != nil)

	// Home win probability per undecided matchup, fixed for the run.
	homeProb := make([]float64, len(undecided))
	for i := range undecided {
		if opts.WeightedByOdds {
			homeProb[i], _ = odds.GameProbabilities(&undecided[i], opts.RemoveVig, odds.DefaultProbability)
		} else {
			homeProb[i] = 0.5
		}
	}

	// Arena: decided prefix stays untouched; the undecided suffix is
	// rewritten every trial.
	trialMatchups := make([]league.Matchup, 0, len(decided)+len(undecided))
	trialMatchups = append(trialMatchups, decided...)
	trialMatchups = append(trialMatchups, undecided...)
	arena := trialMatchups[len(decided):]
	for i := range arena {
		arena[i].Completed = true
	}

	result := newResult(entrants)

	progressInterval := opts.Trials / 100
	if progressInterval < 1 {
		progressInterval = 1
	}
	lastPct := -1
	report := func(trial int) {
		if opts.Progress == nil || trial%progressInterval != 0 {
			return
		}
		pct := trial * 100 / opts.Trials
		if pct > lastPct {
			opts.Progress(pct)
			lastPct = pct
		}
	}

	for trial := 0; trial < opts.Trials; trial++ {
		if err := checkCancelled(ctx, opts); err != nil {
			logger.Info("simulation cancelled", "completed_trials", trial)
			result.Trials = trial
			result.DurationSeconds = time.Since(start).Seconds()
			return result, err
		}
		report(trial)

		for i := range arena {
			homeWins := rng.Float64() < homeProb[i]
			homeScore := poisson(rng, scoreMean)
			awayScore := poisson(rng, scoreMean)
			// Force the drawn scores to agree with the drawn winner.
			if homeWins && awayScore >= homeScore {
				homeScore = awayScore + 1
			} else if !homeWins && homeScore >= awayScore {
				awayScore = homeScore + 1
			}
			arena[i].HomeScore = homeScore
			arena[i].AwayScore = awayScore
		}

		standings := league.ComputeStandings(trialMatchups, entrants)
		for _, e := range entrants {
			stats := result.EntrantStats[e.ID]
			stats.WinsDistribution = append(stats.WinsDistribution, standings[e.ID].Overall.Wins)
			stats.Trials++
		}

		winners, err := seeder.DivisionWinners(entrants, standings, trialMatchups)
		if err != nil {
			// Seed-dependent counters skip this trial; win totals above
			// already counted.
			logger.Warn("division winners failed, skipping trial seeding",
				"trial", trial, "error", err)
			continue
		}
		for _, id := range winners {
			result.EntrantStats[id].WonDivision++
		}

		wildCards, err := seeder.WildCards(entrants, standings, trialMatchups, winners)
		if err != nil {
			logger.Warn("wild cards failed, skipping trial seeding",
				"trial", trial, "error", err)
			continue
		}

		for _, conf := range league.Conferences {
			seeds, err := seeder.SeedConference(entrants, standings, trialMatchups, conf, winners, wildCards[conf])
			if err != nil {
				logger.Warn("conference seeding failed, skipping conference",
					"trial", trial, "conference", conf, "error", err)
				continue
			}
			for slot, id := range seeds {
				stats := result.EntrantStats[id]
				stats.MadePlayoffs++
				stats.SeedCounts[slot+1]++
				if slot == 0 {
					stats.FirstSeed++
				}
			}
		}
	}

	if opts.Progress != nil {
		opts.Progress(100)
	}

	result.Trials = opts.Trials
	result.DurationSeconds = time.Since(start).Seconds()
	logger.Info("simulation complete",
		"trials", opts.Trials,
		"duration", time.Since(start).Round(time.Millisecond),
		"trials_per_sec", int(float64(opts.Trials)/result.DurationSeconds))
	return result, nil
}

func checkCancelled(ctx context.Context, opts Options) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	default:
	}
	if opts.Cancelled != nil && opts.Cancelled() {
		return ErrCancelled
	}
	return nil
}

// poisson draws from a Poisson distribution with the given mean using
// Knuth's method. Fine for means around typical game scores.
func poisson(rng *rand.Rand, mean float64) int {
	limit := math.Exp(-mean)
	p := 1.0
	k := 0
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k - 1
}
