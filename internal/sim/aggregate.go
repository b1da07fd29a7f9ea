package sim

import (
	"github.com/gridironsim/playoff-odds/internal/league"
	"github.com/gridironsim/playoff-odds/internal/seeding"
)

// seedSlots is the number of playoff seeds tracked per conference.
const seedSlots = seeding.DivisionWinnerSlots + seeding.WildCardSlots

// EntrantStats accumulates per-entrant frequency counters across trials.
// Mutated by exactly one trial at a time; read after the run completes.
type EntrantStats struct {
	EntrantID league.EntrantID `json:"entrant_id"`

	WinsDistribution []int `json:"-"`

	MadePlayoffs int `json:"made_playoffs"`
	WonDivision  int `json:"won_division"`
	FirstSeed    int `json:"first_seed"`

	// SeedCounts[s] counts trials finishing at seed s (1-based; index 0 unused).
	SeedCounts [seedSlots + 1]int `json:"seed_counts"`

	Trials int `json:"trials"`
}

// PlayoffProbability is the fraction of trials in which the entrant made
// the playoffs.
func (s *EntrantStats) PlayoffProbability() float64 { return s.ratio(s.MadePlayoffs) }

// DivisionWinProbability is the fraction of trials won the division.
func (s *EntrantStats) DivisionWinProbability() float64 { return s.ratio(s.WonDivision) }

// FirstSeedProbability is the fraction of trials at the conference top seed.
func (s *EntrantStats) FirstSeedProbability() float64 { return s.ratio(s.FirstSeed) }

// SeedProbabilities returns the per-seed (1..7) probability distribution.
// The distribution sums to PlayoffProbability.
func (s *EntrantStats) SeedProbabilities() map[int]float64 {
	out := make(map[int]float64, seedSlots)
	for seed := 1; seed <= seedSlots; seed++ {
		out[seed] = s.ratio(s.SeedCounts[seed])
	}
	return out
}

// AverageWins is the mean win total across trials.
func (s *EntrantStats) AverageWins() float64 {
	if len(s.WinsDistribution) == 0 {
		return 0.0
	}
	var sum int
	for _, w := range s.WinsDistribution {
		sum += w
	}
	return float64(sum) / float64(len(s.WinsDistribution))
}

// MinWins is the smallest win total observed across trials.
func (s *EntrantStats) MinWins() int {
	if len(s.WinsDistribution) == 0 {
		return 0
	}
	min := s.WinsDistribution[0]
	for _, w := range s.WinsDistribution[1:] {
		if w < min {
			min = w
		}
	}
	return min
}

func (s *EntrantStats) ratio(count int) float64 {
	if s.Trials == 0 {
		return 0.0
	}
	return float64(count) / float64(s.Trials)
}

// Result aggregates a full simulation run.
type Result struct {
	EntrantStats map[league.EntrantID]*EntrantStats `json:"entrant_stats"`

	// Trials is the number of trials actually completed; less than
	// requested when the run was cancelled.
	Trials int `json:"trials"`

	DurationSeconds float64 `json:"duration_seconds"`
}

func newResult(entrants []league.Entrant) *Result {
	res := &Result{EntrantStats: make(map[league.EntrantID]*EntrantStats, len(entrants))}
	for _, e := range entrants {
		res.EntrantStats[e.ID] = &EntrantStats{EntrantID: e.ID}
	}
	return res
}
