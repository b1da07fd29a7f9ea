package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the minimal DDL for the schedule tables. Idempotent; applied
// on API startup and by `simctl seed` before loading a league file.
const schema = `
CREATE TABLE IF NOT EXISTS entrants (
	id           TEXT PRIMARY KEY,
	abbreviation TEXT NOT NULL,
	name         TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	conference   TEXT NOT NULL,
	division     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS matchups (
	id                      TEXT PRIMARY KEY,
	week                    INT  NOT NULL,
	season                  INT  NOT NULL,
	home_id                 TEXT NOT NULL REFERENCES entrants(id),
	away_id                 TEXT NOT NULL REFERENCES entrants(id),
	completed               BOOLEAN NOT NULL DEFAULT false,
	home_score              INT NOT NULL DEFAULT 0,
	away_score              INT NOT NULL DEFAULT 0,
	home_moneyline          INT NOT NULL DEFAULT 0,
	away_moneyline          INT NOT NULL DEFAULT 0,
	overridden              BOOLEAN NOT NULL DEFAULT false,
	override_home_score     INT NOT NULL DEFAULT 0,
	override_away_score     INT NOT NULL DEFAULT 0,
	override_home_moneyline INT NOT NULL DEFAULT 0,
	override_away_moneyline INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_matchups_season_week ON matchups (season, week);
`

// InitSchema creates the schedule tables if they do not exist.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
