package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/gridironsim/playoff-odds/internal/league"
)

// LeagueFile is the JSON shape `simctl seed` loads.
type LeagueFile struct {
	Entrants []league.Entrant `json:"entrants"`
	Matchups []league.Matchup `json:"matchups"`
}

// SeedResult tracks counts and errors from a seed operation.
type SeedResult struct {
	EntrantsUpserted int
	MatchupsUpserted int
	Errors           []string
}

// AddErrorf records a formatted error message.
func (r *SeedResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the seed operation.
func (r *SeedResult) Summary() string {
	return fmt.Sprintf("entrants=%d matchups=%d errors=%d",
		r.EntrantsUpserted, r.MatchupsUpserted, len(r.Errors))
}

// SeedFromFile loads a league JSON file into the database, upserting
// entrants before matchups so foreign keys resolve.
func (s *Store) SeedFromFile(ctx context.Context, path string, logger *slog.Logger) (SeedResult, error) {
	var result SeedResult

	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("read league file: %w", err)
	}
	var file LeagueFile
	if err := json.Unmarshal(data, &file); err != nil {
		return result, fmt.Errorf("decode league file: %w", err)
	}

	logger.Info("seeding league",
		"entrants", len(file.Entrants), "matchups", len(file.Matchups))

	for _, e := range file.Entrants {
		if err := s.UpsertEntrant(ctx, e); err != nil {
			result.AddErrorf("entrant %s: %v", e.ID, err)
			continue
		}
		result.EntrantsUpserted++
	}
	for _, m := range file.Matchups {
		if err := s.UpsertMatchup(ctx, m); err != nil {
			result.AddErrorf("matchup %s: %v", m.ID, err)
			continue
		}
		result.MatchupsUpserted++
	}

	return result, nil
}
