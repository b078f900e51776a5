package sqlite

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    email       TEXT NOT NULL DEFAULT '',
    phone       TEXT NOT NULL DEFAULT '',
    mandal      TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    batting     INTEGER NOT NULL DEFAULT 0,
    bowling     INTEGER NOT NULL DEFAULT 0,
    fielding    INTEGER NOT NULL DEFAULT 0,
    matches     INTEGER NOT NULL DEFAULT 0,
    runs        INTEGER NOT NULL DEFAULT 0,
    strike_rate REAL NOT NULL DEFAULT 0,
    wickets     INTEGER NOT NULL DEFAULT 0,
    dismissals  INTEGER NOT NULL DEFAULT 0,
    catches     INTEGER NOT NULL DEFAULT 0,
    role        TEXT NOT NULL DEFAULT 'player',
    sold        INTEGER NOT NULL DEFAULT 0,
    sold_amount REAL NOT NULL DEFAULT 0,
    team_id     TEXT NOT NULL DEFAULT '',
    sold_at     INTEGER NOT NULL DEFAULT 0,
    paid        INTEGER NOT NULL DEFAULT 0,
    paid_at     INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    name_key   TEXT NOT NULL UNIQUE,
    image_url  TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS roster_entries (
    team_id   TEXT NOT NULL REFERENCES teams(id),
    player_id TEXT NOT NULL REFERENCES players(id),
    position  INTEGER NOT NULL,
    PRIMARY KEY (team_id, player_id)
);

CREATE TABLE IF NOT EXISTS admins (
    username      TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    created_at    INTEGER NOT NULL
);
`

// createTables applies the schema. Statements are idempotent.
func createTables(ctx context.Context, db *sql.DB) error {
	// Foreign key support is not enabled by default in SQLite
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}
