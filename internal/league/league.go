// Package league defines the core data model for a season (entrants,
// matchups, and standing records) plus the standings accumulator that
// folds a set of matchups into per-entrant records.
package league

import "fmt"

// Conference identifies one of the league's two conferences.
type Conference string

const (
	ConferenceAFC Conference = "AFC"
	ConferenceNFC Conference = "NFC"
)

// Conferences lists the conferences in seeding order.
var Conferences = []Conference{ConferenceAFC, ConferenceNFC}

// EntrantID uniquely identifies a league entrant.
type EntrantID string

// Entrant is a league member. Created once at season load and never
// mutated by the engine.
type Entrant struct {
	ID           EntrantID `json:"id"`
	Abbreviation string    `json:"abbreviation"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`

	Conference Conference `json:"conference"`
	Division   string     `json:"division"` // North, South, East, West
}

// DivisionKey returns the conference-qualified division name, e.g. "AFC West".
func (e Entrant) DivisionKey() string {
	return fmt.Sprintf("%s %s", e.Conference, e.Division)
}

// SameDivision reports whether two entrants share conference and division.
func SameDivision(a, b Entrant) bool {
	return a.Conference == b.Conference && a.Division == b.Division
}

// Outcome is the result of a decided matchup from the home side's view.
type Outcome int

const (
	OutcomeUndecided Outcome = iota
	OutcomeHome
	OutcomeAway
	OutcomeTie
)

// Matchup is one scheduled contest. Override scores and odds, when set,
// take precedence over provider values for every downstream computation.
// A zero moneyline means no quote; zero is not a valid American odds value.
type Matchup struct {
	ID     string `json:"id"`
	Week   int    `json:"week"`
	Season int    `json:"season"`

	HomeID EntrantID `json:"home_id"`
	AwayID EntrantID `json:"away_id"`

	Completed bool `json:"completed"`
	HomeScore int  `json:"home_score"`
	AwayScore int  `json:"away_score"`

	HomeMoneyline int `json:"home_moneyline,omitempty"`
	AwayMoneyline int `json:"away_moneyline,omitempty"`

	Overridden        bool `json:"overridden"`
	OverrideHomeScore int  `json:"override_home_score,omitempty"`
	OverrideAwayScore int  `json:"override_away_score,omitempty"`
	OverrideHomeML    int  `json:"override_home_moneyline,omitempty"`
	OverrideAwayML    int  `json:"override_away_moneyline,omitempty"`
}

// EffectiveScores returns the scores that count: overrides when set,
// otherwise the provider scores.
func (m *Matchup) EffectiveScores() (home, away int) {
	if m.Overridden {
		return m.OverrideHomeScore, m.OverrideAwayScore
	}
	return m.HomeScore, m.AwayScore
}

// Winner returns the matchup outcome. Undecided matchups contribute to
// no one's record.
func (m *Matchup) Winner() Outcome {
	if !m.Completed {
		return OutcomeUndecided
	}
	home, away := m.EffectiveScores()
	switch {
	case home > away:
		return OutcomeHome
	case away > home:
		return OutcomeAway
	default:
		return OutcomeTie
	}
}

// Involves reports whether the matchup includes the given entrant.
func (m *Matchup) Involves(id EntrantID) bool {
	return m.HomeID == id || m.AwayID == id
}

// Opponent returns the other entrant in the matchup, or "" if id is not
// a participant.
func (m *Matchup) Opponent(id EntrantID) EntrantID {
	switch id {
	case m.HomeID:
		return m.AwayID
	case m.AwayID:
		return m.HomeID
	default:
		return ""
	}
}

// Record is a won-lost-tied tuple.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Games returns the number of decided games in the record.
func (r Record) Games() int { return r.Wins + r.Losses + r.Ties }

// Percentage returns the win percentage with ties counting half a win.
// An empty record is 0.0, never NaN.
func (r Record) Percentage() float64 {
	total := r.Games()
	if total == 0 {
		return 0.0
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(total)
}

// StandingRecord is one entrant's aggregate state for a set of matchups.
// Recomputed from scratch for every input set; never mutated incrementally.
type StandingRecord struct {
	EntrantID EntrantID `json:"entrant_id"`

	Overall    Record `json:"overall"`
	Divisional Record `json:"divisional"`
	Conference Record `json:"conference"`

	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`

	// HeadToHead maps opponent id to this entrant's record against them.
	HeadToHead map[EntrantID]Record `json:"head_to_head,omitempty"`

	StrengthOfVictory  float64 `json:"strength_of_victory"`
	StrengthOfSchedule float64 `json:"strength_of_schedule"`
}

// WinPercentage returns the overall win percentage.
func (s *StandingRecord) WinPercentage() float64 { return s.Overall.Percentage() }

// DivisionWinPercentage returns the divisional win percentage.
func (s *StandingRecord) DivisionWinPercentage() float64 { return s.Divisional.Percentage() }

// ConferenceWinPercentage returns the conference win percentage.
func (s *StandingRecord) ConferenceWinPercentage() float64 { return s.Conference.Percentage() }

// NetPoints returns the overall point differential.
func (s *StandingRecord) NetPoints() int { return s.PointsFor - s.PointsAgainst }
