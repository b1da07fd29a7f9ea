// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridironsim/playoff-odds/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and CLI use.
// Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Entrants
		"list_entrants": `SELECT id, abbreviation, name, location, conference, division
			FROM entrants ORDER BY conference, division, id`,
		"upsert_entrant": `INSERT INTO entrants (id, abbreviation, name, location, conference, division)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				abbreviation = EXCLUDED.abbreviation,
				name = EXCLUDED.name,
				location = EXCLUDED.location,
				conference = EXCLUDED.conference,
				division = EXCLUDED.division`,

		// Matchups
		"list_matchups": `SELECT id, week, season, home_id, away_id, completed,
				home_score, away_score, home_moneyline, away_moneyline,
				overridden, override_home_score, override_away_score,
				override_home_moneyline, override_away_moneyline
			FROM matchups WHERE season = $1 ORDER BY week, id`,
		"upsert_matchup": `INSERT INTO matchups (id, week, season, home_id, away_id, completed,
				home_score, away_score, home_moneyline, away_moneyline)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				week = EXCLUDED.week,
				season = EXCLUDED.season,
				home_id = EXCLUDED.home_id,
				away_id = EXCLUDED.away_id,
				completed = EXCLUDED.completed,
				home_score = EXCLUDED.home_score,
				away_score = EXCLUDED.away_score,
				home_moneyline = EXCLUDED.home_moneyline,
				away_moneyline = EXCLUDED.away_moneyline`,

		// Overrides
		"set_override": `UPDATE matchups SET
				overridden = true,
				override_home_score = $2,
				override_away_score = $3,
				override_home_moneyline = $4,
				override_away_moneyline = $5
			WHERE id = $1`,
		"clear_override": `UPDATE matchups SET
				overridden = false,
				override_home_score = 0,
				override_away_score = 0,
				override_home_moneyline = 0,
				override_away_moneyline = 0
			WHERE id = $1`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
