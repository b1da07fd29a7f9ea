// Package tiebreak ranks entrants tied on win percentage using the
// league's official ordered procedures. Each procedure is an explicit
// sequence of comparison steps applied left-to-right until one
// discriminates; the final step is a coin toss drawn from the resolver's
// seeded random source.
package tiebreak

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/gridironsim/playoff-odds/internal/league"
)

var (
	// ErrInvalidInput signals malformed tie-break input such as an empty
	// tied set.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternalInconsistency signals a programming-contract violation:
	// the tied standings are not part of the supplied entrant/standings
	// universe.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// Resolver applies tiebreaker procedures. The random source backs the
// coin-toss fallback only; supplying a seeded source makes resolution
// deterministic whenever every numeric criterion either discriminates or
// ties exactly.
type Resolver struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewResolver creates a resolver drawing coin tosses from rng.
func NewResolver(rng *rand.Rand, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{rng: rng, logger: logger}
}

// ResolveTie ranks the tied standings best-to-worst. The output is a
// permutation of the tied entrant ids. The division procedure is used when
// every tied entrant shares a division; otherwise the wild-card procedure
// applies.
func (r *Resolver) ResolveTie(
	tied []*league.StandingRecord,
	matchups []league.Matchup,
	entrants []league.Entrant,
	standings map[league.EntrantID]*league.StandingRecord,
) ([]league.EntrantID, error) {
	if len(tied) == 0 {
		return nil, fmt.Errorf("empty tied set: %w", ErrInvalidInput)
	}

	rc := &resolveContext{
		matchups:  matchups,
		entrants:  make(map[league.EntrantID]league.Entrant, len(entrants)),
		ordered:   entrants,
		standings: standings,
	}
	for _, e := range entrants {
		rc.entrants[e.ID] = e
	}

	for _, s := range tied {
		if s == nil {
			return nil, fmt.Errorf("nil standing in tied set: %w", ErrInvalidInput)
		}
		if _, ok := rc.entrants[s.EntrantID]; !ok {
			return nil, fmt.Errorf("entrant %s not in entrant universe: %w",
				s.EntrantID, ErrInternalInconsistency)
		}
		if _, ok := standings[s.EntrantID]; !ok {
			return nil, fmt.Errorf("entrant %s not in standings universe: %w",
				s.EntrantID, ErrInternalInconsistency)
		}
	}

	if len(tied) == 1 {
		return []league.EntrantID{tied[0].EntrantID}, nil
	}

	if r.sameDivision(rc, tied) {
		return r.resolveDivision(rc, tied), nil
	}
	return r.resolveWildCard(rc, tied), nil
}

func (r *Resolver) sameDivision(rc *resolveContext, tied []*league.StandingRecord) bool {
	first := rc.entrants[tied[0].EntrantID]
	for _, s := range tied[1:] {
		if !league.SameDivision(first, rc.entrants[s.EntrantID]) {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Two-entrant procedures
// --------------------------------------------------------------------------

// resolvePair runs an ordered step table for two entrants and returns
// winner, loser. Falls back to a coin toss when every step ties.
func (r *Resolver) resolvePair(rc *resolveContext, variant string, steps []pairStep, a, b *league.StandingRecord) (league.EntrantID, league.EntrantID) {
	for _, step := range steps {
		switch c := step.compare(rc, a, b); {
		case c > 0:
			return a.EntrantID, b.EntrantID
		case c < 0:
			return b.EntrantID, a.EntrantID
		}
	}

	r.logger.Info("coin toss",
		"variant", variant, "entrant_a", a.EntrantID, "entrant_b", b.EntrantID)
	if r.rng.Intn(2) == 0 {
		return a.EntrantID, b.EntrantID
	}
	return b.EntrantID, a.EntrantID
}

func (r *Resolver) divisionPair(rc *resolveContext, a, b *league.StandingRecord) (league.EntrantID, league.EntrantID) {
	return r.resolvePair(rc, "division", divisionPairSteps, a, b)
}

func (r *Resolver) wildCardPair(rc *resolveContext, a, b *league.StandingRecord) (league.EntrantID, league.EntrantID) {
	return r.resolvePair(rc, "wild card", wildCardPairSteps, a, b)
}

// --------------------------------------------------------------------------
// N-entrant division cascade
// --------------------------------------------------------------------------

// resolveDivision produces the full best-to-worst ordering for tied
// entrants in one division. After each entrant is fixed, the remaining
// entrants re-enter the procedure from the start.
func (r *Resolver) resolveDivision(rc *resolveContext, tied []*league.StandingRecord) []league.EntrantID {
	remaining := append([]*league.StandingRecord(nil), tied...)
	out := make([]league.EntrantID, 0, len(tied))

	for len(remaining) > 0 {
		switch len(remaining) {
		case 1:
			out = append(out, remaining[0].EntrantID)
			remaining = nil
		case 2:
			// Once only a pair remains the two-entrant procedure restarts
			// from its first step.
			winner, loser := r.divisionPair(rc, remaining[0], remaining[1])
			out = append(out, winner, loser)
			remaining = nil
		default:
			if last, ok := r.sweepLoser(remaining); ok {
				rest := removeStanding(remaining, last)
				tail := r.resolveDivision(rc, rest)
				return append(out, append(tail, last)...)
			}
			top := r.selectTop(rc, "division", remaining, divisionGroupSteps, r.divisionPair)
			out = append(out, top)
			remaining = removeStanding(remaining, top)
		}
	}
	return out
}

// --------------------------------------------------------------------------
// N-entrant wild-card cascade
// --------------------------------------------------------------------------

// resolveWildCard produces the full best-to-worst ordering for tied
// entrants from different divisions. Each round collapses every
// represented division to its single best entrant via the division
// procedure, selects the round winner among the representatives, then
// re-enters with the winner removed so eliminated division-mates get a
// fresh comparison.
func (r *Resolver) resolveWildCard(rc *resolveContext, tied []*league.StandingRecord) []league.EntrantID {
	remaining := append([]*league.StandingRecord(nil), tied...)
	out := make([]league.EntrantID, 0, len(tied))

	for len(remaining) > 0 {
		switch len(remaining) {
		case 1:
			out = append(out, remaining[0].EntrantID)
			remaining = nil
		case 2:
			winner, loser := r.wildCardPair(rc, remaining[0], remaining[1])
			out = append(out, winner, loser)
			remaining = nil
		default:
			top := r.selectRep(rc, r.collapseDivisions(rc, remaining))
			out = append(out, top)
			remaining = removeStanding(remaining, top)
		}
	}
	return out
}

// selectRep picks the round winner among division representatives. A
// representative swept head-to-head by all the others cannot win the
// round; it is set aside and the survivors re-enter at the reduced size.
func (r *Resolver) selectRep(rc *resolveContext, reps []*league.StandingRecord) league.EntrantID {
	for len(reps) > 2 {
		last, ok := r.sweepLoser(reps)
		if !ok {
			return r.selectTop(rc, "wild card", reps, wildCardGroupSteps, r.wildCardPair)
		}
		reps = removeStanding(reps, last)
	}
	if len(reps) == 1 {
		return reps[0].EntrantID
	}
	winner, _ := r.wildCardPair(rc, reps[0], reps[1])
	return winner
}

// collapseDivisions reduces the tied set to one representative per
// division, chosen by the division procedure. Input order is preserved
// by first appearance of each division.
func (r *Resolver) collapseDivisions(rc *resolveContext, tied []*league.StandingRecord) []*league.StandingRecord {
	byDivision := make(map[string][]*league.StandingRecord)
	var order []string
	for _, s := range tied {
		key := rc.entrants[s.EntrantID].DivisionKey()
		if _, seen := byDivision[key]; !seen {
			order = append(order, key)
		}
		byDivision[key] = append(byDivision[key], s)
	}

	reps := make([]*league.StandingRecord, 0, len(order))
	for _, key := range order {
		group := byDivision[key]
		if len(group) == 1 {
			reps = append(reps, group[0])
			continue
		}
		ranked := r.resolveDivision(rc, group)
		reps = append(reps, rc.standings[ranked[0]])
	}
	return reps
}

// --------------------------------------------------------------------------
// Group elimination
// --------------------------------------------------------------------------

// selectTop picks the single best entrant of a group of three or more.
// A full head-to-head sweep wins outright; otherwise the group criteria
// eliminate entrants step by step. Whenever elimination leaves exactly
// two, the two-entrant procedure restarts from its first step; if every
// criterion is exhausted with three or more still tied, a uniform coin
// toss picks the winner.
func (r *Resolver) selectTop(
	rc *resolveContext,
	variant string,
	group []*league.StandingRecord,
	steps []groupStep,
	pair func(*resolveContext, *league.StandingRecord, *league.StandingRecord) (league.EntrantID, league.EntrantID),
) league.EntrantID {
	if winner, ok := r.sweepWinner(group); ok {
		return winner
	}

	ids := standingIDs(group)
	survivors := group

	for _, step := range steps {
		best := make([]*league.StandingRecord, 0, len(survivors))
		var bestVal float64
		appliedCount := 0

		for _, s := range survivors {
			val, ok := step.metric(rc, s, ids)
			if !ok {
				continue
			}
			appliedCount++
			switch {
			case appliedCount == 1 || val > bestVal:
				bestVal = val
				best = best[:0]
				best = append(best, s)
			case val == bestVal:
				best = append(best, s)
			}
		}

		// A step only eliminates when it applied to every survivor.
		if appliedCount != len(survivors) || len(best) == len(survivors) {
			continue
		}

		survivors = best
		if len(survivors) == 1 {
			return survivors[0].EntrantID
		}
		if len(survivors) == 2 {
			winner, _ := pair(rc, survivors[0], survivors[1])
			return winner
		}
	}

	r.logger.Info("coin toss among group",
		"variant", variant, "tied", len(survivors))
	return survivors[r.rng.Intn(len(survivors))].EntrantID
}

// sweepWinner returns the entrant that beat every other tied entrant
// pairwise, if one exists.
func (r *Resolver) sweepWinner(group []*league.StandingRecord) (league.EntrantID, bool) {
	for _, s := range group {
		sweep := true
		for _, other := range group {
			if other.EntrantID == s.EntrantID {
				continue
			}
			h2h := s.HeadToHead[other.EntrantID]
			if h2h.Wins == 0 || h2h.Losses > 0 {
				sweep = false
				break
			}
		}
		if sweep {
			return s.EntrantID, true
		}
	}
	return "", false
}

// sweepLoser returns the entrant that lost to every other tied entrant
// pairwise, if one exists. That entrant is fixed last before the rest
// re-enter the procedure.
func (r *Resolver) sweepLoser(group []*league.StandingRecord) (league.EntrantID, bool) {
	for _, s := range group {
		swept := true
		for _, other := range group {
			if other.EntrantID == s.EntrantID {
				continue
			}
			h2h := s.HeadToHead[other.EntrantID]
			if h2h.Losses == 0 || h2h.Wins > 0 {
				swept = false
				break
			}
		}
		if swept {
			return s.EntrantID, true
		}
	}
	return "", false
}

func standingIDs(group []*league.StandingRecord) []league.EntrantID {
	ids := make([]league.EntrantID, len(group))
	for i, s := range group {
		ids[i] = s.EntrantID
	}
	return ids
}

func removeStanding(group []*league.StandingRecord, id league.EntrantID) []*league.StandingRecord {
	out := make([]*league.StandingRecord, 0, len(group)-1)
	for _, s := range group {
		if s.EntrantID != id {
			out = append(out, s)
		}
	}
	return out
}
