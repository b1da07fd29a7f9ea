package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntrants() []Entrant {
	return []Entrant{
		{ID: "A", Abbreviation: "AAA", Conference: ConferenceAFC, Division: "East"},
		{ID: "B", Abbreviation: "BBB", Conference: ConferenceAFC, Division: "East"},
		{ID: "C", Abbreviation: "CCC", Conference: ConferenceAFC, Division: "West"},
		{ID: "D", Abbreviation: "DDD", Conference: ConferenceAFC, Division: "West"},
		{ID: "E", Abbreviation: "EEE", Conference: ConferenceNFC, Division: "East"},
		{ID: "F", Abbreviation: "FFF", Conference: ConferenceNFC, Division: "East"},
	}
}

func decided(id string, home, away EntrantID, homeScore, awayScore int) Matchup {
	return Matchup{
		ID: id, HomeID: home, AwayID: away,
		Completed: true, HomeScore: homeScore, AwayScore: awayScore,
	}
}

func TestComputeStandings(t *testing.T) {
	entrants := testEntrants()
	matchups := []Matchup{
		decided("g1", "A", "B", 30, 20), // divisional
		decided("g2", "A", "C", 21, 14), // conference, not divisional
		decided("g3", "C", "B", 17, 10),
		decided("g4", "A", "E", 24, 24), // interconference tie
		{ID: "g5", HomeID: "A", AwayID: "D"}, // undecided, contributes nothing
	}

	standings := ComputeStandings(matchups, entrants)
	require.Len(t, standings, len(entrants))

	a := standings["A"]
	assert.Equal(t, Record{Wins: 2, Ties: 1}, a.Overall)
	assert.Equal(t, Record{Wins: 1}, a.Divisional)
	assert.Equal(t, Record{Wins: 2}, a.Conference)
	assert.Equal(t, 75, a.PointsFor)
	assert.Equal(t, 58, a.PointsAgainst)
	assert.Equal(t, 17, a.NetPoints())

	b := standings["B"]
	assert.Equal(t, Record{Losses: 2}, b.Overall)
	assert.Equal(t, Record{Losses: 1}, b.Divisional)

	// Entrants with no decided games get a zeroed record, not a missing one.
	f := standings["F"]
	assert.Equal(t, Record{}, f.Overall)
	assert.Equal(t, 0.0, f.WinPercentage())
}

func TestComputeStandingsHeadToHeadSymmetry(t *testing.T) {
	entrants := testEntrants()
	matchups := []Matchup{
		decided("g1", "A", "B", 30, 20),
		decided("g2", "B", "A", 14, 10),
		decided("g3", "A", "E", 24, 24),
	}

	standings := ComputeStandings(matchups, entrants)

	assert.Equal(t, Record{Wins: 1, Losses: 1}, standings["A"].HeadToHead["B"])
	assert.Equal(t, Record{Wins: 1, Losses: 1}, standings["B"].HeadToHead["A"])
	assert.Equal(t, Record{Ties: 1}, standings["A"].HeadToHead["E"])
	assert.Equal(t, Record{Ties: 1}, standings["E"].HeadToHead["A"])
}

func TestComputeStandingsStrengthMetrics(t *testing.T) {
	entrants := testEntrants()
	matchups := []Matchup{
		decided("g1", "A", "B", 30, 20),
		decided("g2", "A", "C", 21, 14),
		decided("g3", "C", "B", 17, 10),
		decided("g4", "A", "E", 24, 24),
	}

	standings := ComputeStandings(matchups, entrants)

	// A beat B (0-2, .000) and C (1-1, .500); SOV is their mean win pct.
	a := standings["A"]
	assert.InDelta(t, 0.25, a.StrengthOfVictory, 1e-12)
	// A's opponents: B (.000), C (.500), E (0-0-1, .500 with the tie
	// counting half). SOS averages all of them.
	assert.InDelta(t, (0.0+0.5+0.5)/3, a.StrengthOfSchedule, 1e-12)

	// No victories means SOV 0.0, never NaN.
	b := standings["B"]
	assert.Equal(t, 0.0, b.StrengthOfVictory)
}

func TestComputeStandingsOverridePrecedence(t *testing.T) {
	entrants := testEntrants()
	m := decided("g1", "B", "E", 10, 7)
	m.Overridden = true
	m.OverrideHomeScore = 3
	m.OverrideAwayScore = 20

	standings := ComputeStandings([]Matchup{m}, entrants)

	assert.Equal(t, Record{Losses: 1}, standings["B"].Overall)
	assert.Equal(t, Record{Wins: 1}, standings["E"].Overall)
	assert.Equal(t, 3, standings["B"].PointsFor)
	assert.Equal(t, 20, standings["B"].PointsAgainst)
}

func TestComputeStandingsSkipsUnknownEntrants(t *testing.T) {
	entrants := testEntrants()
	matchups := []Matchup{
		decided("g1", "A", "ZZZ", 30, 20), // unknown away side
		decided("g2", "A", "B", 21, 14),
	}

	standings := ComputeStandings(matchups, entrants)

	// Only the well-formed game counted.
	assert.Equal(t, Record{Wins: 1}, standings["A"].Overall)
	_, exists := standings["ZZZ"]
	assert.False(t, exists)
}

func TestRecordPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Record{}.Percentage())
	assert.Equal(t, 1.0, Record{Wins: 3}.Percentage())
	assert.Equal(t, 0.5, Record{Wins: 1, Losses: 1}.Percentage())
	// A tie counts as half a win.
	assert.InDelta(t, 0.5625, Record{Wins: 4, Losses: 3, Ties: 1}.Percentage(), 1e-12)
}

func TestMatchupWinner(t *testing.T) {
	m := decided("g1", "A", "B", 20, 17)
	assert.Equal(t, OutcomeHome, m.Winner())

	m.HomeScore, m.AwayScore = 10, 24
	assert.Equal(t, OutcomeAway, m.Winner())

	m.AwayScore = 10
	assert.Equal(t, OutcomeTie, m.Winner())

	m.Completed = false
	assert.Equal(t, OutcomeUndecided, m.Winner())
}
