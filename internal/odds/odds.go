// Package odds converts two-sided moneyline quotes into win probabilities
// and strips the bookmaker's margin (vig). A zero moneyline means the quote
// is absent; zero is never a valid American odds value.
package odds

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gridironsim/playoff-odds/internal/league"
)

// ErrInvalidInput is returned for malformed odds or degenerate probability
// pairs.
var ErrInvalidInput = errors.New("invalid input")

// DefaultProbability is the neutral per-side probability used when a
// matchup has no usable odds.
const DefaultProbability = 0.5

// ToProbability converts American odds to an implied win probability.
// Negative odds (favorite): |o|/(|o|+100). Positive odds (underdog):
// 100/(o+100).
func ToProbability(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("odds cannot be zero: %w", ErrInvalidInput)
	}
	if american < 0 {
		abs := float64(-american)
		return abs / (abs + 100), nil
	}
	return 100 / (float64(american) + 100), nil
}

// RemoveVig normalizes a pair of implied probabilities so they sum to 1,
// preserving their ratio.
func RemoveVig(pHome, pAway float64) (float64, float64, error) {
	if pHome < 0 || pAway < 0 {
		return 0, 0, fmt.Errorf("probabilities cannot be negative: %w", ErrInvalidInput)
	}
	total := pHome + pAway
	if total == 0 {
		return 0, 0, fmt.Errorf("probabilities cannot both be zero: %w", ErrInvalidInput)
	}
	return pHome / total, pAway / total, nil
}

// Vig returns the bookmaker's overround: how far the implied probabilities
// sum above 1.0. Never negative.
func Vig(pHome, pAway float64) float64 {
	if v := pHome + pAway - 1.0; v > 0 {
		return v
	}
	return 0
}

// ValidateOdds reports whether a pair of moneylines is usable. Both absent
// (zero) is valid; otherwise both must be present with exactly one negative
// and one positive.
func ValidateOdds(home, away int) bool {
	if home == 0 && away == 0 {
		return true
	}
	if home == 0 || away == 0 {
		return false
	}
	return (home < 0) != (away < 0)
}

// GameProbabilities extracts the (home, away) win probabilities for a
// matchup. Override odds take precedence field-by-field over provider odds.
// Missing or invalid odds degrade to defaultProb for both sides; no error
// escapes this call.
func GameProbabilities(m *league.Matchup, removeVig bool, defaultProb float64) (float64, float64) {
	home, away := m.HomeMoneyline, m.AwayMoneyline
	if m.Overridden {
		if m.OverrideHomeML != 0 {
			home = m.OverrideHomeML
		}
		if m.OverrideAwayML != 0 {
			away = m.OverrideAwayML
		}
	}

	if !ValidateOdds(home, away) {
		slog.Warn("invalid odds, using default probability",
			"matchup_id", m.ID, "home_moneyline", home, "away_moneyline", away,
			"default", defaultProb)
		return defaultProb, defaultProb
	}
	if home == 0 && away == 0 {
		return defaultProb, defaultProb
	}

	pHome, err := ToProbability(home)
	if err != nil {
		return defaultProb, defaultProb
	}
	pAway, err := ToProbability(away)
	if err != nil {
		return defaultProb, defaultProb
	}

	if removeVig {
		fairHome, fairAway, err := RemoveVig(pHome, pAway)
		if err != nil {
			slog.Warn("vig removal failed, using default probability",
				"matchup_id", m.ID, "error", err)
			return defaultProb, defaultProb
		}
		return fairHome, fairAway
	}
	return pHome, pAway
}
