package league

import "log/slog"

// ComputeStandings folds the given matchups into per-entrant standing
// records. Three passes: win/loss/tie records and points, head-to-head
// records, then strength of victory and strength of schedule. Undecided
// matchups are skipped entirely.
//
// The result is built fresh on every call; calling twice with the same
// inputs yields identical records.
func ComputeStandings(matchups []Matchup, entrants []Entrant) map[EntrantID]*StandingRecord {
	standings := make(map[EntrantID]*StandingRecord, len(entrants))
	byID := make(map[EntrantID]Entrant, len(entrants))
	for _, e := range entrants {
		standings[e.ID] = &StandingRecord{
			EntrantID:  e.ID,
			HeadToHead: make(map[EntrantID]Record),
		}
		byID[e.ID] = e
	}

	for i := range matchups {
		m := &matchups[i]
		if m.Winner() == OutcomeUndecided {
			continue
		}

		home, homeOK := byID[m.HomeID]
		away, awayOK := byID[m.AwayID]
		if !homeOK || !awayOK {
			slog.Warn("matchup references unknown entrant",
				"matchup_id", m.ID, "home_id", m.HomeID, "away_id", m.AwayID)
			continue
		}

		applyResult(standings[m.HomeID], standings[m.AwayID], m, home, away)
	}

	populateHeadToHead(standings, matchups)
	populateStrengthMetrics(standings, matchups)

	return standings
}

// applyResult updates both sides' records and points for one decided matchup.
func applyResult(homeStanding, awayStanding *StandingRecord, m *Matchup, home, away Entrant) {
	divGame := SameDivision(home, away)
	confGame := home.Conference == away.Conference

	switch m.Winner() {
	case OutcomeHome:
		homeStanding.Overall.Wins++
		awayStanding.Overall.Losses++
		if divGame {
			homeStanding.Divisional.Wins++
			awayStanding.Divisional.Losses++
		}
		if confGame {
			homeStanding.Conference.Wins++
			awayStanding.Conference.Losses++
		}
	case OutcomeAway:
		awayStanding.Overall.Wins++
		homeStanding.Overall.Losses++
		if divGame {
			awayStanding.Divisional.Wins++
			homeStanding.Divisional.Losses++
		}
		if confGame {
			awayStanding.Conference.Wins++
			homeStanding.Conference.Losses++
		}
	case OutcomeTie:
		homeStanding.Overall.Ties++
		awayStanding.Overall.Ties++
		if divGame {
			homeStanding.Divisional.Ties++
			awayStanding.Divisional.Ties++
		}
		if confGame {
			homeStanding.Conference.Ties++
			awayStanding.Conference.Ties++
		}
	}

	homeScore, awayScore := m.EffectiveScores()
	homeStanding.PointsFor += homeScore
	homeStanding.PointsAgainst += awayScore
	awayStanding.PointsFor += awayScore
	awayStanding.PointsAgainst += homeScore
}

// populateHeadToHead records each decided matchup symmetrically in both
// entrants' head-to-head maps.
func populateHeadToHead(standings map[EntrantID]*StandingRecord, matchups []Matchup) {
	for i := range matchups {
		m := &matchups[i]
		if m.Winner() == OutcomeUndecided {
			continue
		}

		homeStanding, homeOK := standings[m.HomeID]
		awayStanding, awayOK := standings[m.AwayID]
		if !homeOK || !awayOK {
			continue
		}

		homeVsAway := homeStanding.HeadToHead[m.AwayID]
		awayVsHome := awayStanding.HeadToHead[m.HomeID]

		switch m.Winner() {
		case OutcomeHome:
			homeVsAway.Wins++
			awayVsHome.Losses++
		case OutcomeAway:
			homeVsAway.Losses++
			awayVsHome.Wins++
		case OutcomeTie:
			homeVsAway.Ties++
			awayVsHome.Ties++
		}

		homeStanding.HeadToHead[m.AwayID] = homeVsAway
		awayStanding.HeadToHead[m.HomeID] = awayVsHome
	}
}

// populateStrengthMetrics computes strength of victory (mean win percentage
// of entrants beaten) and strength of schedule (mean win percentage of all
// opponents faced). Entrants with no decided games get 0.0 for both.
func populateStrengthMetrics(standings map[EntrantID]*StandingRecord, matchups []Matchup) {
	beaten := make(map[EntrantID][]EntrantID)
	opponents := make(map[EntrantID][]EntrantID)

	for i := range matchups {
		m := &matchups[i]
		winner := m.Winner()
		if winner == OutcomeUndecided {
			continue
		}
		if _, ok := standings[m.HomeID]; !ok {
			continue
		}
		if _, ok := standings[m.AwayID]; !ok {
			continue
		}

		opponents[m.HomeID] = append(opponents[m.HomeID], m.AwayID)
		opponents[m.AwayID] = append(opponents[m.AwayID], m.HomeID)

		switch winner {
		case OutcomeHome:
			beaten[m.HomeID] = append(beaten[m.HomeID], m.AwayID)
		case OutcomeAway:
			beaten[m.AwayID] = append(beaten[m.AwayID], m.HomeID)
		}
	}

	for id, standing := range standings {
		standing.StrengthOfVictory = meanWinPercentage(beaten[id], standings)
		standing.StrengthOfSchedule = meanWinPercentage(opponents[id], standings)
	}
}

func meanWinPercentage(ids []EntrantID, standings map[EntrantID]*StandingRecord) float64 {
	if len(ids) == 0 {
		return 0.0
	}
	var sum float64
	for _, id := range ids {
		sum += standings[id].WinPercentage()
	}
	return sum / float64(len(ids))
}
