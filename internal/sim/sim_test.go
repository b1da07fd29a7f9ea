package sim

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironsim/playoff-odds/internal/league"
	"github.com/gridironsim/playoff-odds/internal/tiebreak"
)

// fullLeague builds a 16-entrant league: both conferences, four divisions
// each, two entrants per division. IDs look like "AFC-East-0".
func fullLeague() []league.Entrant {
	var entrants []league.Entrant
	for _, conf := range league.Conferences {
		for _, div := range []string{"East", "North", "South", "West"} {
			for i := 0; i < 2; i++ {
				id := league.EntrantID(fmt.Sprintf("%s-%s-%d", conf, div, i))
				entrants = append(entrants, league.Entrant{
					ID: id, Abbreviation: string(id),
					Conference: conf, Division: div,
				})
			}
		}
	}
	return entrants
}

func decided(id string, home, away league.EntrantID, homeScore, awayScore int) league.Matchup {
	return league.Matchup{
		ID: id, HomeID: home, AwayID: away,
		Completed: true, HomeScore: homeScore, AwayScore: awayScore,
	}
}

// decidedDivisions gives every "-0" entrant a win over its division mate.
func decidedDivisions(entrants []league.Entrant) []league.Matchup {
	var matchups []league.Matchup
	for i := 0; i < len(entrants); i += 2 {
		matchups = append(matchups, decided(
			fmt.Sprintf("d%d", i), entrants[i].ID, entrants[i+1].ID, 20, 10))
	}
	return matchups
}

func seedPtr(v int64) *int64 { return &v }

func TestSimulateSeasonRejectsNonPositiveTrials(t *testing.T) {
	_, err := SimulateSeason(context.Background(), nil, fullLeague(), Options{Trials: 0})
	assert.ErrorIs(t, err, tiebreak.ErrInvalidInput)
}

func TestSimulateSeasonIsSeedDeterministic(t *testing.T) {
	entrants := fullLeague()
	matchups := decidedDivisions(entrants)
	// Leave one game open so outcome draws matter too.
	matchups = append(matchups, league.Matchup{
		ID: "open", HomeID: "AFC-East-0", AwayID: "AFC-West-0",
	})
	opts := Options{Trials: 300, Seed: seedPtr(1234)}

	first, err := SimulateSeason(context.Background(), matchups, entrants, opts)
	require.NoError(t, err)
	second, err := SimulateSeason(context.Background(), matchups, entrants, opts)
	require.NoError(t, err)

	assert.Equal(t, first.EntrantStats, second.EntrantStats)
	assert.Equal(t, first.Trials, second.Trials)
}

func TestSimulateSeasonAllDecided(t *testing.T) {
	entrants := fullLeague()
	matchups := decidedDivisions(entrants)

	const trials = 200
	result, err := SimulateSeason(context.Background(), matchups, entrants,
		Options{Trials: trials, Seed: seedPtr(7)})
	require.NoError(t, err)
	require.Equal(t, trials, result.Trials)

	for _, e := range entrants {
		stats := result.EntrantStats[e.ID]
		require.NotNil(t, stats)
		require.Len(t, stats.WinsDistribution, trials)

		// With nothing left to play, every trial repeats the same season.
		for _, w := range stats.WinsDistribution {
			assert.Equal(t, stats.WinsDistribution[0], w)
		}
	}

	// Division winners are decided on the field, so their counters are
	// exact; champions always make the playoffs.
	assert.Equal(t, 1.0, result.EntrantStats["AFC-East-0"].DivisionWinProbability())
	assert.Equal(t, 0.0, result.EntrantStats["AFC-East-1"].DivisionWinProbability())
	assert.Equal(t, 1.0, result.EntrantStats["AFC-East-0"].PlayoffProbability())

	// Three wild-card slots split among the four non-champions per
	// conference, however the coin tosses land.
	for _, conf := range league.Conferences {
		made := 0
		for _, e := range entrants {
			if e.Conference != conf {
				continue
			}
			made += result.EntrantStats[e.ID].MadePlayoffs
		}
		assert.Equal(t, 7*trials, made)
	}
}

func TestSimulateSeasonHonorsScoreOverrides(t *testing.T) {
	entrants := fullLeague()
	// The only game is unplayed but carries a manual result.
	matchups := []league.Matchup{
		{ID: "open", HomeID: "AFC-East-0", AwayID: "AFC-East-1",
			Overridden: true, OverrideHomeScore: 0, OverrideAwayScore: 30},
	}

	const trials = 400
	result, err := SimulateSeason(context.Background(), matchups, entrants,
		Options{Trials: trials, Seed: seedPtr(21)})
	require.NoError(t, err)

	// The forced result holds in every trial; the game is never re-drawn.
	assert.Equal(t, 0.0, result.EntrantStats["AFC-East-0"].DivisionWinProbability())
	assert.Equal(t, 1.0, result.EntrantStats["AFC-East-1"].DivisionWinProbability())
	for _, w := range result.EntrantStats["AFC-East-1"].WinsDistribution {
		assert.Equal(t, 1, w)
	}
	for _, w := range result.EntrantStats["AFC-East-0"].WinsDistribution {
		assert.Equal(t, 0, w)
	}
}

func TestSimulateSeasonSeedingFailureSkipsConference(t *testing.T) {
	entrants := fullLeague()
	for i := 0; i < 2; i++ {
		id := league.EntrantID(fmt.Sprintf("AFC-Central-%d", i))
		entrants = append(entrants, league.Entrant{
			ID: id, Abbreviation: string(id),
			Conference: league.ConferenceAFC, Division: "Central",
		})
	}
	matchups := decidedDivisions(entrants)

	const trials = 100
	result, err := SimulateSeason(context.Background(), matchups, entrants,
		Options{Trials: trials, Seed: seedPtr(11)})
	require.NoError(t, err)
	require.Equal(t, trials, result.Trials)

	// Win totals and division titles still count for everyone.
	for _, e := range entrants {
		require.Len(t, result.EntrantStats[e.ID].WinsDistribution, trials)
	}
	assert.Equal(t, trials, result.EntrantStats["AFC-Central-0"].WonDivision)

	// A five-division conference cannot be seeded; its seed-dependent
	// counters stay at zero while the other conference fills normally.
	afcMade, nfcMade := 0, 0
	for _, e := range entrants {
		if e.Conference == league.ConferenceAFC {
			afcMade += result.EntrantStats[e.ID].MadePlayoffs
		} else {
			nfcMade += result.EntrantStats[e.ID].MadePlayoffs
		}
	}
	assert.Zero(t, afcMade)
	assert.Equal(t, 7*trials, nfcMade)
}

func TestSimulateSeasonCoinFlipIsNearEven(t *testing.T) {
	entrants := fullLeague()
	// A single undecided game decides the AFC East between two otherwise
	// identical entrants.
	matchups := []league.Matchup{
		{ID: "open", HomeID: "AFC-East-0", AwayID: "AFC-East-1"},
	}

	const trials = 2000
	result, err := SimulateSeason(context.Background(), matchups, entrants,
		Options{Trials: trials, Seed: seedPtr(99)})
	require.NoError(t, err)

	p := result.EntrantStats["AFC-East-0"].DivisionWinProbability()
	assert.Greater(t, p, 0.45)
	assert.Less(t, p, 0.55)
	assert.InDelta(t, 1.0,
		p+result.EntrantStats["AFC-East-1"].DivisionWinProbability(), 1e-12)
}

func TestSimulateSeasonWeightedByOdds(t *testing.T) {
	entrants := fullLeague()
	matchups := []league.Matchup{
		{ID: "open", HomeID: "AFC-East-0", AwayID: "AFC-East-1",
			HomeMoneyline: -300, AwayMoneyline: 250},
	}

	const trials = 2000
	result, err := SimulateSeason(context.Background(), matchups, entrants,
		Options{Trials: trials, Seed: seedPtr(5), WeightedByOdds: true, RemoveVig: true})
	require.NoError(t, err)

	// Vig-free home probability for -300/+250 is about 0.72.
	p := result.EntrantStats["AFC-East-0"].DivisionWinProbability()
	assert.Greater(t, p, 0.66)
	assert.Less(t, p, 0.78)
}

func TestSimulateSeasonScoresAgreeWithWinner(t *testing.T) {
	entrants := fullLeague()
	matchups := []league.Matchup{
		{ID: "open", HomeID: "AFC-East-0", AwayID: "AFC-East-1"},
	}

	const trials = 500
	result, err := SimulateSeason(context.Background(), matchups, entrants,
		Options{Trials: trials, Seed: seedPtr(3)})
	require.NoError(t, err)

	// Each trial produces exactly one winner: the two entrants' wins
	// across all trials must sum to the trial count, with no ties.
	wins0 := result.EntrantStats["AFC-East-0"]
	wins1 := result.EntrantStats["AFC-East-1"]
	total0, total1 := 0, 0
	for i := 0; i < trials; i++ {
		total0 += wins0.WinsDistribution[i]
		total1 += wins1.WinsDistribution[i]
	}
	assert.Equal(t, trials, total0+total1)
}

func TestSimulateSeasonProgressReporting(t *testing.T) {
	entrants := fullLeague()
	matchups := decidedDivisions(entrants)

	var reported []int
	_, err := SimulateSeason(context.Background(), matchups, entrants, Options{
		Trials: 200, Seed: seedPtr(1),
		Progress: func(pct int) { reported = append(reported, pct) },
	})
	require.NoError(t, err)

	require.NotEmpty(t, reported)
	assert.Equal(t, 0, reported[0])
	assert.Equal(t, 100, reported[len(reported)-1])
	for i := 1; i < len(reported); i++ {
		assert.GreaterOrEqual(t, reported[i], reported[i-1])
	}
}

func TestSimulateSeasonCancellation(t *testing.T) {
	entrants := fullLeague()
	matchups := decidedDivisions(entrants)

	polls := 0
	result, err := SimulateSeason(context.Background(), matchups, entrants, Options{
		Trials: 1000, Seed: seedPtr(1),
		Cancelled: func() bool {
			polls++
			return polls > 10
		},
	})
	assert.ErrorIs(t, err, ErrCancelled)
	require.NotNil(t, result)
	assert.Equal(t, 10, result.Trials)
	assert.Less(t, result.Trials, 1000)
}

func TestSimulateSeasonContextCancellation(t *testing.T) {
	entrants := fullLeague()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := SimulateSeason(ctx, decidedDivisions(entrants), entrants,
		Options{Trials: 1000, Seed: seedPtr(1)})
	assert.ErrorIs(t, err, ErrCancelled)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Trials)
}

func TestSimulateSeasonDoesNotMutateInput(t *testing.T) {
	entrants := fullLeague()
	matchups := []league.Matchup{
		{ID: "open", HomeID: "AFC-East-0", AwayID: "AFC-East-1"},
		decided("d0", "AFC-North-0", "AFC-North-1", 20, 10),
	}
	snapshot := make([]league.Matchup, len(matchups))
	copy(snapshot, matchups)

	_, err := SimulateSeason(context.Background(), matchups, entrants,
		Options{Trials: 50, Seed: seedPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, snapshot, matchups)
}

func TestEntrantStatsAccessors(t *testing.T) {
	stats := &EntrantStats{
		WinsDistribution: []int{8, 10, 9, 9},
		MadePlayoffs:     3,
		FirstSeed:        1,
		Trials:           4,
	}
	stats.SeedCounts[1] = 1
	stats.SeedCounts[5] = 2

	assert.Equal(t, 0.75, stats.PlayoffProbability())
	assert.Equal(t, 0.25, stats.FirstSeedProbability())
	assert.Equal(t, 9.0, stats.AverageWins())
	assert.Equal(t, 8, stats.MinWins())

	probs := stats.SeedProbabilities()
	assert.Equal(t, 0.25, probs[1])
	assert.Equal(t, 0.5, probs[5])

	// Zero trials never divides by zero.
	empty := &EntrantStats{}
	assert.Equal(t, 0.0, empty.PlayoffProbability())
	assert.Equal(t, 0.0, empty.AverageWins())
}
