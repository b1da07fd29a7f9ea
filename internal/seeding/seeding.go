// Package seeding turns standings into division champions, wild-card
// qualifiers, and a strict 1..7 playoff seed order per conference,
// delegating every tie to the tiebreak resolver.
package seeding

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/gridironsim/playoff-odds/internal/league"
	"github.com/gridironsim/playoff-odds/internal/tiebreak"
)

// WildCardSlots is the number of non-champion playoff berths per conference.
const WildCardSlots = 3

// DivisionWinnerSlots is the number of division champions per conference.
const DivisionWinnerSlots = 4

// Engine orchestrates the resolver across divisions and conferences.
type Engine struct {
	resolver *tiebreak.Resolver
	logger   *slog.Logger
}

// NewEngine creates a seeding engine backed by the given resolver.
func NewEngine(resolver *tiebreak.Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{resolver: resolver, logger: logger}
}

// DivisionWinners determines the champion of every division, resolving
// ties at the top via the division tiebreaker. Keys are division keys
// ("AFC West"); iteration order follows the entrant list.
func (e *Engine) DivisionWinners(
	entrants []league.Entrant,
	standings map[league.EntrantID]*league.StandingRecord,
	matchups []league.Matchup,
) (map[string]league.EntrantID, error) {
	winners := make(map[string]league.EntrantID)

	for _, key := range divisionKeys(entrants) {
		var members []*league.StandingRecord
		for _, en := range entrants {
			if en.DivisionKey() != key {
				continue
			}
			s, ok := standings[en.ID]
			if !ok {
				return nil, fmt.Errorf("no standing for entrant %s in %s: %w",
					en.ID, key, tiebreak.ErrInternalInconsistency)
			}
			members = append(members, s)
		}
		if len(members) == 0 {
			continue
		}

		sortByWinPercentage(members)
		tied := tiedAtTop(members)
		if len(tied) == 1 {
			winners[key] = tied[0].EntrantID
			continue
		}

		ordered, err := e.resolver.ResolveTie(tied, matchups, entrants, standings)
		if err != nil {
			return nil, fmt.Errorf("resolve division %s: %w", key, err)
		}
		winners[key] = ordered[0]
	}

	return winners, nil
}

// WildCards selects the wild-card qualifiers per conference, in seed
// order, excluding division winners. Ties at each slot are resolved via
// the wild-card procedure among only the still-unselected entrants.
func (e *Engine) WildCards(
	entrants []league.Entrant,
	standings map[league.EntrantID]*league.StandingRecord,
	matchups []league.Matchup,
	divisionWinners map[string]league.EntrantID,
) (map[league.Conference][]league.EntrantID, error) {
	winnerSet := make(map[league.EntrantID]bool, len(divisionWinners))
	for _, id := range divisionWinners {
		winnerSet[id] = true
	}

	out := make(map[league.Conference][]league.EntrantID)
	for _, conf := range league.Conferences {
		var pool []*league.StandingRecord
		for _, en := range entrants {
			if en.Conference != conf || winnerSet[en.ID] {
				continue
			}
			s, ok := standings[en.ID]
			if !ok {
				return nil, fmt.Errorf("no standing for entrant %s: %w",
					en.ID, tiebreak.ErrInternalInconsistency)
			}
			pool = append(pool, s)
		}
		sortByWinPercentage(pool)

		selected := make([]league.EntrantID, 0, WildCardSlots)
		chosen := make(map[league.EntrantID]bool)

		for slot := 0; slot < WildCardSlots && slot < len(pool); slot++ {
			// The best unselected percentage defines the tied group for
			// this slot.
			var target float64
			found := false
			for _, s := range pool {
				if !chosen[s.EntrantID] {
					target = s.WinPercentage()
					found = true
					break
				}
			}
			if !found {
				break
			}

			var tied []*league.StandingRecord
			for _, s := range pool {
				if !chosen[s.EntrantID] && s.WinPercentage() == target {
					tied = append(tied, s)
				}
			}

			var pick league.EntrantID
			if len(tied) == 1 {
				pick = tied[0].EntrantID
			} else {
				ordered, err := e.resolver.ResolveTie(tied, matchups, entrants, standings)
				if err != nil {
					return nil, fmt.Errorf("resolve wild card slot %d (%s): %w", slot+1, conf, err)
				}
				pick = ordered[0]
			}
			selected = append(selected, pick)
			chosen[pick] = true
		}

		out[conf] = selected
	}
	return out, nil
}

// SeedConference produces the conference's full seed list: ranked division
// champions first, then the wild cards in their already-resolved order.
// Champions from different divisions are ranked with the wild-card
// procedure. Returns at most seven ids, fewer when the entrant universe
// is smaller.
func (e *Engine) SeedConference(
	entrants []league.Entrant,
	standings map[league.EntrantID]*league.StandingRecord,
	matchups []league.Matchup,
	conf league.Conference,
	divisionWinners map[string]league.EntrantID,
	wildCards []league.EntrantID,
) ([]league.EntrantID, error) {
	if n := conferenceDivisionCount(entrants, conf); n > DivisionWinnerSlots {
		return nil, fmt.Errorf("conference %s has %d divisions, want at most %d: %w",
			conf, n, DivisionWinnerSlots, tiebreak.ErrInvalidInput)
	}

	var champions []*league.StandingRecord
	for _, en := range entrants {
		if en.Conference != conf {
			continue
		}
		if id, ok := divisionWinners[en.DivisionKey()]; ok && id == en.ID {
			champions = append(champions, standings[en.ID])
		}
	}
	sortByWinPercentage(champions)

	ranked := make([]league.EntrantID, 0, len(champions))
	remaining := champions
	for len(remaining) > 0 {
		tied := tiedAtTop(remaining)
		if len(tied) == 1 {
			ranked = append(ranked, tied[0].EntrantID)
		} else {
			ordered, err := e.resolver.ResolveTie(tied, matchups, entrants, standings)
			if err != nil {
				return nil, fmt.Errorf("rank division winners (%s): %w", conf, err)
			}
			ranked = append(ranked, ordered...)
		}
		remaining = remaining[len(tied):]
	}

	if len(ranked) > DivisionWinnerSlots {
		ranked = ranked[:DivisionWinnerSlots]
	}
	seeds := append(ranked, wildCards...)
	if len(seeds) > DivisionWinnerSlots+WildCardSlots {
		seeds = seeds[:DivisionWinnerSlots+WildCardSlots]
	}
	return seeds, nil
}

// Seed runs the complete pipeline for one conference: division winners,
// wild cards, then the seed list.
func (e *Engine) Seed(
	entrants []league.Entrant,
	standings map[league.EntrantID]*league.StandingRecord,
	matchups []league.Matchup,
	conf league.Conference,
) ([]league.EntrantID, error) {
	winners, err := e.DivisionWinners(entrants, standings, matchups)
	if err != nil {
		return nil, err
	}
	wildCards, err := e.WildCards(entrants, standings, matchups, winners)
	if err != nil {
		return nil, err
	}
	return e.SeedConference(entrants, standings, matchups, conf, winners, wildCards[conf])
}

// divisionKeys returns the distinct division keys in entrant-list order.
func divisionKeys(entrants []league.Entrant) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, en := range entrants {
		key := en.DivisionKey()
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

func conferenceDivisionCount(entrants []league.Entrant, conf league.Conference) int {
	seen := make(map[string]bool)
	for _, en := range entrants {
		if en.Conference == conf {
			seen[en.Division] = true
		}
	}
	return len(seen)
}

// sortByWinPercentage orders standings best-first. The sort is stable so
// equal percentages keep entrant-list order for the resolver to break.
func sortByWinPercentage(standings []*league.StandingRecord) {
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].WinPercentage() > standings[j].WinPercentage()
	})
}

// tiedAtTop returns the leading run of standings sharing the best win
// percentage. Input must already be sorted best-first.
func tiedAtTop(sorted []*league.StandingRecord) []*league.StandingRecord {
	if len(sorted) == 0 {
		return nil
	}
	best := sorted[0].WinPercentage()
	i := 1
	for i < len(sorted) && sorted[i].WinPercentage() == best {
		i++
	}
	return sorted[:i]
}
