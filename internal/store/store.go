// Package store persists the authoritative schedule (entrants, matchups,
// and manual overrides) in Postgres. The engine consumes the loaded
// snapshot read-only.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridironsim/playoff-odds/internal/league"
)

// ErrNotFound is returned when a referenced matchup does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the connection pool with schedule queries.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store over an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Entrants loads the full entrant list, ordered by conference, division, id.
func (s *Store) Entrants(ctx context.Context) ([]league.Entrant, error) {
	rows, err := s.pool.Query(ctx, "list_entrants")
	if err != nil {
		return nil, fmt.Errorf("list entrants: %w", err)
	}
	defer rows.Close()

	var entrants []league.Entrant
	for rows.Next() {
		var e league.Entrant
		if err := rows.Scan(
			&e.ID, &e.Abbreviation, &e.Name, &e.Location, &e.Conference, &e.Division,
		); err != nil {
			return nil, fmt.Errorf("scan entrant: %w", err)
		}
		entrants = append(entrants, e)
	}
	return entrants, rows.Err()
}

// Matchups loads a season's matchups ordered by week.
func (s *Store) Matchups(ctx context.Context, season int) ([]league.Matchup, error) {
	rows, err := s.pool.Query(ctx, "list_matchups", season)
	if err != nil {
		return nil, fmt.Errorf("list matchups: %w", err)
	}
	defer rows.Close()

	var matchups []league.Matchup
	for rows.Next() {
		var m league.Matchup
		if err := rows.Scan(
			&m.ID, &m.Week, &m.Season, &m.HomeID, &m.AwayID, &m.Completed,
			&m.HomeScore, &m.AwayScore, &m.HomeMoneyline, &m.AwayMoneyline,
			&m.Overridden, &m.OverrideHomeScore, &m.OverrideAwayScore,
			&m.OverrideHomeML, &m.OverrideAwayML,
		); err != nil {
			return nil, fmt.Errorf("scan matchup: %w", err)
		}
		matchups = append(matchups, m)
	}
	return matchups, rows.Err()
}

// UpsertEntrant inserts or updates one entrant.
func (s *Store) UpsertEntrant(ctx context.Context, e league.Entrant) error {
	_, err := s.pool.Exec(ctx, "upsert_entrant",
		e.ID, e.Abbreviation, e.Name, e.Location, e.Conference, e.Division)
	if err != nil {
		return fmt.Errorf("upsert entrant %s: %w", e.ID, err)
	}
	return nil
}

// UpsertMatchup inserts or updates one matchup's provider fields.
// Overrides are managed separately via SetOverride/ClearOverride.
func (s *Store) UpsertMatchup(ctx context.Context, m league.Matchup) error {
	_, err := s.pool.Exec(ctx, "upsert_matchup",
		m.ID, m.Week, m.Season, m.HomeID, m.AwayID, m.Completed,
		m.HomeScore, m.AwayScore, m.HomeMoneyline, m.AwayMoneyline)
	if err != nil {
		return fmt.Errorf("upsert matchup %s: %w", m.ID, err)
	}
	return nil
}

// Override carries the manual values applied over provider data.
type Override struct {
	HomeScore     int `json:"home_score"`
	AwayScore     int `json:"away_score"`
	HomeMoneyline int `json:"home_moneyline,omitempty"`
	AwayMoneyline int `json:"away_moneyline,omitempty"`
}

// SetOverride marks a matchup overridden with the given values.
func (s *Store) SetOverride(ctx context.Context, matchupID string, o Override) error {
	tag, err := s.pool.Exec(ctx, "set_override",
		matchupID, o.HomeScore, o.AwayScore, o.HomeMoneyline, o.AwayMoneyline)
	if err != nil {
		return fmt.Errorf("set override %s: %w", matchupID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("matchup %s: %w", matchupID, ErrNotFound)
	}
	return nil
}

// ClearOverride removes any manual override from a matchup.
func (s *Store) ClearOverride(ctx context.Context, matchupID string) error {
	tag, err := s.pool.Exec(ctx, "clear_override", matchupID)
	if err != nil {
		return fmt.Errorf("clear override %s: %w", matchupID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("matchup %s: %w", matchupID, ErrNotFound)
	}
	return nil
}
