package odds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironsim/playoff-odds/internal/league"
)

func TestToProbability(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
		wantErr  bool
	}{
		{"even favorite", -100, 0.5, false},
		{"even underdog", 100, 0.5, false},
		{"strong favorite", -200, 200.0 / 300.0, false},
		{"strong underdog", 150, 100.0 / 250.0, false},
		{"heavy favorite", -450, 450.0 / 550.0, false},
		{"zero is invalid", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToProbability(tt.american)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestRemoveVig(t *testing.T) {
	// A typical -110/-110 book: both sides imply 0.5238, summing over 1.
	p, err := ToProbability(-110)
	require.NoError(t, err)

	fairHome, fairAway, err := RemoveVig(p, p)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, fairHome, 1e-12)
	assert.InDelta(t, 0.5, fairAway, 1e-12)
	assert.InDelta(t, 1.0, fairHome+fairAway, 1e-12)
}

func TestRemoveVigPreservesRatio(t *testing.T) {
	fairHome, fairAway, err := RemoveVig(0.6, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.6/0.5, fairHome/fairAway, 1e-12)
	assert.InDelta(t, 1.0, fairHome+fairAway, 1e-12)
}

func TestRemoveVigRejectsDegenerateInput(t *testing.T) {
	_, _, err := RemoveVig(-0.1, 0.5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = RemoveVig(0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVig(t *testing.T) {
	p, err := ToProbability(-110)
	require.NoError(t, err)
	assert.InDelta(t, 2*p-1, Vig(p, p), 1e-12)

	// A fair book has zero vig; an underround never goes negative.
	assert.Equal(t, 0.0, Vig(0.5, 0.5))
	assert.Equal(t, 0.0, Vig(0.4, 0.4))
}

func TestValidateOdds(t *testing.T) {
	tests := []struct {
		name  string
		home  int
		away  int
		valid bool
	}{
		{"both absent", 0, 0, true},
		{"favorite and underdog", -150, 130, true},
		{"underdog and favorite", 130, -150, true},
		{"only one quoted", -150, 0, false},
		{"only away quoted", 0, 130, false},
		{"both negative", -110, -110, false},
		{"both positive", 110, 120, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateOdds(tt.home, tt.away))
		})
	}
}

func TestGameProbabilitiesWeighted(t *testing.T) {
	m := &league.Matchup{ID: "g1", HomeMoneyline: -200, AwayMoneyline: 170}

	pHome, pAway := GameProbabilities(m, true, DefaultProbability)
	assert.InDelta(t, 1.0, pHome+pAway, 1e-12)
	assert.Greater(t, pHome, pAway)

	rawHome, _ := ToProbability(-200)
	rawAway, _ := ToProbability(170)
	keptHome, keptAway := GameProbabilities(m, false, DefaultProbability)
	assert.InDelta(t, rawHome, keptHome, 1e-12)
	assert.InDelta(t, rawAway, keptAway, 1e-12)
}

func TestGameProbabilitiesDefaults(t *testing.T) {
	// No odds at all: neutral coin flip.
	m := &league.Matchup{ID: "g1"}
	pHome, pAway := GameProbabilities(m, true, DefaultProbability)
	assert.Equal(t, DefaultProbability, pHome)
	assert.Equal(t, DefaultProbability, pAway)

	// Malformed pair degrades instead of erroring.
	m = &league.Matchup{ID: "g2", HomeMoneyline: -110, AwayMoneyline: -110}
	pHome, pAway = GameProbabilities(m, true, DefaultProbability)
	assert.Equal(t, DefaultProbability, pHome)
	assert.Equal(t, DefaultProbability, pAway)
}

func TestGameProbabilitiesOverridePrecedence(t *testing.T) {
	m := &league.Matchup{
		ID:             "g1",
		HomeMoneyline:  -120,
		AwayMoneyline:  100,
		Overridden:     true,
		OverrideHomeML: -300,
		OverrideAwayML: 0, // absent: provider away quote stays in effect
	}
	pHome, _ := GameProbabilities(m, false, DefaultProbability)
	want, _ := ToProbability(-300)
	assert.InDelta(t, want, pHome, 1e-12)

	// Without the overridden flag the override fields are ignored.
	m.Overridden = false
	pHome, _ = GameProbabilities(m, false, DefaultProbability)
	want, _ = ToProbability(-120)
	assert.InDelta(t, want, pHome, 1e-12)
}

func TestGameProbabilitiesSumToOneWhenVigRemoved(t *testing.T) {
	pairs := [][2]int{{-110, -105}, {-450, 340}, {120, -140}}
	for _, pair := range pairs {
		m := &league.Matchup{ID: "g", HomeMoneyline: pair[0], AwayMoneyline: pair[1]}
		pHome, pAway := GameProbabilities(m, true, DefaultProbability)
		if ValidateOdds(pair[0], pair[1]) {
			assert.InDelta(t, 1.0, pHome+pAway, 1e-12, "pair %v", pair)
		}
		assert.False(t, math.IsNaN(pHome))
		assert.False(t, math.IsNaN(pAway))
	}
}
