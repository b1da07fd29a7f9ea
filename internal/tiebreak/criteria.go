package tiebreak

import (
	"github.com/gridironsim/playoff-odds/internal/league"
)

// minCommonGames is the minimum number of common games required before the
// common-games criteria apply.
const minCommonGames = 4

// resolveContext carries the read-only inputs shared by every criterion
// evaluation within a single ResolveTie call.
type resolveContext struct {
	matchups  []league.Matchup
	entrants  map[league.EntrantID]league.Entrant
	ordered   []league.Entrant
	standings map[league.EntrantID]*league.StandingRecord
}

// --------------------------------------------------------------------------
// Pairwise criteria, applied left-to-right until one discriminates.
// compare returns >0 when a ranks ahead, <0 when b ranks ahead, 0 to
// fall through to the next step. The coin toss is appended by the
// resolver and always discriminates.
// --------------------------------------------------------------------------

type pairStep struct {
	name    string
	compare func(rc *resolveContext, a, b *league.StandingRecord) int
}

var divisionPairSteps = []pairStep{
	{"head-to-head", compareHeadToHead},
	{"division record", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return compareFloat(a.DivisionWinPercentage(), b.DivisionWinPercentage())
	}},
	{"common games", compareCommonGames},
	{"conference record", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return compareFloat(a.ConferenceWinPercentage(), b.ConferenceWinPercentage())
	}},
	{"strength of victory", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return compareFloat(a.StrengthOfVictory, b.StrengthOfVictory)
	}},
	{"strength of schedule", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return compareFloat(a.StrengthOfSchedule, b.StrengthOfSchedule)
	}},
	{"combined conference ranking", func(rc *resolveContext, a, b *league.StandingRecord) int {
		// Lower combined rank is better.
		return combinedRanking(rc, b.EntrantID, true) - combinedRanking(rc, a.EntrantID, true)
	}},
	{"combined league ranking", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return combinedRanking(rc, b.EntrantID, false) - combinedRanking(rc, a.EntrantID, false)
	}},
	{"net points in common games", compareCommonNetPoints},
	{"net points overall", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return a.NetPoints() - b.NetPoints()
	}},
}

var wildCardPairSteps = []pairStep{
	{"head-to-head", compareHeadToHeadIfPlayed},
	{"conference record", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return compareFloat(a.ConferenceWinPercentage(), b.ConferenceWinPercentage())
	}},
	{"common games", compareCommonGames},
	{"strength of victory", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return compareFloat(a.StrengthOfVictory, b.StrengthOfVictory)
	}},
	{"strength of schedule", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return compareFloat(a.StrengthOfSchedule, b.StrengthOfSchedule)
	}},
	{"combined conference ranking", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return combinedRanking(rc, b.EntrantID, true) - combinedRanking(rc, a.EntrantID, true)
	}},
	{"combined league ranking", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return combinedRanking(rc, b.EntrantID, false) - combinedRanking(rc, a.EntrantID, false)
	}},
	{"net points in conference games", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return netPoints(rc, a.EntrantID, conferenceMatchups(rc, a.EntrantID)) -
			netPoints(rc, b.EntrantID, conferenceMatchups(rc, b.EntrantID))
	}},
	{"net points overall", func(rc *resolveContext, a, b *league.StandingRecord) int {
		return a.NetPoints() - b.NetPoints()
	}},
}

func compareFloat(a, b float64) int {
	switch {
	case a > b:
		return 1
	case b > a:
		return -1
	default:
		return 0
	}
}

func compareHeadToHead(rc *resolveContext, a, b *league.StandingRecord) int {
	h2h := a.HeadToHead[b.EntrantID]
	reverse := league.Record{Wins: h2h.Losses, Losses: h2h.Wins, Ties: h2h.Ties}
	return compareFloat(h2h.Percentage(), reverse.Percentage())
}

// compareHeadToHeadIfPlayed is the wild-card variant: head-to-head only
// applies if the two entrants actually met.
func compareHeadToHeadIfPlayed(rc *resolveContext, a, b *league.StandingRecord) int {
	if a.HeadToHead[b.EntrantID].Games() == 0 {
		return 0
	}
	return compareHeadToHead(rc, a, b)
}

func compareCommonGames(rc *resolveContext, a, b *league.StandingRecord) int {
	common := commonMatchups(rc, []league.EntrantID{a.EntrantID, b.EntrantID})
	if len(common) < minCommonGames {
		return 0
	}
	return compareFloat(
		recordIn(rc, a.EntrantID, common).Percentage(),
		recordIn(rc, b.EntrantID, common).Percentage(),
	)
}

func compareCommonNetPoints(rc *resolveContext, a, b *league.StandingRecord) int {
	common := commonMatchups(rc, []league.EntrantID{a.EntrantID, b.EntrantID})
	if len(common) < minCommonGames {
		return 0
	}
	return netPoints(rc, a.EntrantID, common) - netPoints(rc, b.EntrantID, common)
}

// --------------------------------------------------------------------------
// Group criteria in N-entrant form. metric returns the entrant's value for
// the step (higher is better) and whether the step applies at all for this
// group. Entrants not tied for the best value are eliminated; survivors
// fall through to the next step.
// --------------------------------------------------------------------------

type groupStep struct {
	name   string
	metric func(rc *resolveContext, s *league.StandingRecord, group []league.EntrantID) (float64, bool)
}

var divisionGroupSteps = []groupStep{
	{"head-to-head among tied", groupHeadToHead},
	{"division record", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return s.DivisionWinPercentage(), true
	}},
	{"common games", groupCommonGames},
	{"conference record", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return s.ConferenceWinPercentage(), true
	}},
	{"strength of victory", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return s.StrengthOfVictory, true
	}},
	{"strength of schedule", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return s.StrengthOfSchedule, true
	}},
	{"combined conference ranking", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return -float64(combinedRanking(rc, s.EntrantID, true)), true
	}},
	{"combined league ranking", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return -float64(combinedRanking(rc, s.EntrantID, false)), true
	}},
	{"net points in common games", groupCommonNetPoints},
	{"net points overall", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return float64(s.NetPoints()), true
	}},
}

var wildCardGroupSteps = []groupStep{
	{"conference record", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return s.ConferenceWinPercentage(), true
	}},
	{"common games", groupCommonGames},
	{"strength of victory", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return s.StrengthOfVictory, true
	}},
	{"strength of schedule", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return s.StrengthOfSchedule, true
	}},
	{"combined conference ranking", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return -float64(combinedRanking(rc, s.EntrantID, true)), true
	}},
	{"combined league ranking", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return -float64(combinedRanking(rc, s.EntrantID, false)), true
	}},
	{"net points in conference games", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return float64(netPoints(rc, s.EntrantID, conferenceMatchups(rc, s.EntrantID))), true
	}},
	{"net points overall", func(rc *resolveContext, s *league.StandingRecord, _ []league.EntrantID) (float64, bool) {
		return float64(s.NetPoints()), true
	}},
}

// groupHeadToHead is the entrant's win percentage in games among the tied
// group only. Applies only if the entrant played at least one such game.
func groupHeadToHead(rc *resolveContext, s *league.StandingRecord, group []league.EntrantID) (float64, bool) {
	var rec league.Record
	for _, other := range group {
		if other == s.EntrantID {
			continue
		}
		h2h := s.HeadToHead[other]
		rec.Wins += h2h.Wins
		rec.Losses += h2h.Losses
		rec.Ties += h2h.Ties
	}
	if rec.Games() == 0 {
		return 0, false
	}
	return rec.Percentage(), true
}

func groupCommonGames(rc *resolveContext, s *league.StandingRecord, group []league.EntrantID) (float64, bool) {
	common := commonMatchups(rc, group)
	if len(common) < minCommonGames {
		return 0, false
	}
	return recordIn(rc, s.EntrantID, common).Percentage(), true
}

func groupCommonNetPoints(rc *resolveContext, s *league.StandingRecord, group []league.EntrantID) (float64, bool) {
	common := commonMatchups(rc, group)
	if len(common) < minCommonGames {
		return 0, false
	}
	return float64(netPoints(rc, s.EntrantID, common)), true
}

// --------------------------------------------------------------------------
// Metric helpers
// --------------------------------------------------------------------------

// commonMatchups returns the decided matchups each tied entrant played
// against opponents common to all of them.
func commonMatchups(rc *resolveContext, ids []league.EntrantID) []*league.Matchup {
	inTie := make(map[league.EntrantID]bool, len(ids))
	for _, id := range ids {
		inTie[id] = true
	}

	// Opponents faced per tied entrant.
	opponents := make(map[league.EntrantID]map[league.EntrantID]bool, len(ids))
	for _, id := range ids {
		opponents[id] = make(map[league.EntrantID]bool)
	}
	for i := range rc.matchups {
		m := &rc.matchups[i]
		if m.Winner() == league.OutcomeUndecided {
			continue
		}
		if inTie[m.HomeID] {
			opponents[m.HomeID][m.AwayID] = true
		}
		if inTie[m.AwayID] {
			opponents[m.AwayID][m.HomeID] = true
		}
	}

	// Intersect.
	common := make(map[league.EntrantID]bool)
	for opp := range opponents[ids[0]] {
		shared := true
		for _, id := range ids[1:] {
			if !opponents[id][opp] {
				shared = false
				break
			}
		}
		if shared {
			common[opp] = true
		}
	}
	if len(common) == 0 {
		return nil
	}

	var out []*league.Matchup
	for i := range rc.matchups {
		m := &rc.matchups[i]
		if m.Winner() == league.OutcomeUndecided {
			continue
		}
		if (inTie[m.HomeID] && common[m.AwayID]) || (inTie[m.AwayID] && common[m.HomeID]) {
			out = append(out, m)
		}
	}
	return out
}

// recordIn computes the entrant's record across the given matchups.
func recordIn(rc *resolveContext, id league.EntrantID, matchups []*league.Matchup) league.Record {
	var rec league.Record
	for _, m := range matchups {
		if !m.Involves(id) {
			continue
		}
		switch m.Winner() {
		case league.OutcomeHome:
			if m.HomeID == id {
				rec.Wins++
			} else {
				rec.Losses++
			}
		case league.OutcomeAway:
			if m.AwayID == id {
				rec.Wins++
			} else {
				rec.Losses++
			}
		case league.OutcomeTie:
			rec.Ties++
		}
	}
	return rec
}

// netPoints is the entrant's point differential across the given matchups.
func netPoints(rc *resolveContext, id league.EntrantID, matchups []*league.Matchup) int {
	var pf, pa int
	for _, m := range matchups {
		if m.Winner() == league.OutcomeUndecided {
			continue
		}
		home, away := m.EffectiveScores()
		switch id {
		case m.HomeID:
			pf += home
			pa += away
		case m.AwayID:
			pf += away
			pa += home
		}
	}
	return pf - pa
}

// conferenceMatchups returns all matchups the entrant played against
// conference opponents.
func conferenceMatchups(rc *resolveContext, id league.EntrantID) []*league.Matchup {
	self, ok := rc.entrants[id]
	if !ok {
		return nil
	}
	var out []*league.Matchup
	for i := range rc.matchups {
		m := &rc.matchups[i]
		if !m.Involves(id) {
			continue
		}
		opp, ok := rc.entrants[m.Opponent(id)]
		if ok && opp.Conference == self.Conference {
			out = append(out, m)
		}
	}
	return out
}

// combinedRanking is the entrant's rank by points scored plus its rank by
// points allowed, within its conference or league-wide. Lower is better.
func combinedRanking(rc *resolveContext, id league.EntrantID, conferenceOnly bool) int {
	self, ok := rc.entrants[id]
	if !ok {
		return len(rc.ordered) * 2
	}

	pfRank, paRank := 1, 1
	for _, e := range rc.ordered {
		if e.ID == id {
			continue
		}
		if conferenceOnly && e.Conference != self.Conference {
			continue
		}
		other, ok := rc.standings[e.ID]
		if !ok {
			continue
		}
		mine := rc.standings[id]
		if other.PointsFor > mine.PointsFor {
			pfRank++
		}
		if other.PointsAgainst < mine.PointsAgainst {
			paRank++
		}
	}
	return pfRank + paRank
}
