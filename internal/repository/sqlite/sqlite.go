// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// We use modernc.org/sqlite (a pure-Go translation of SQLite) rather than the
// CGo-based mattn driver, so the binary cross-compiles without a C toolchain.
// The connection runs in WAL mode so reads don't block behind writes, and
// foreign keys are switched on because comments reference spots and users.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It is created once at startup by the composition root, passed explicitly
// to every consumer, and closed on shutdown — there is no lazily-initialized
// global connection anywhere.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces a real connection so a bad path surfaces here,
	// not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We need them ON so that
	// deleting a spot cascades to its comments.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			username   TEXT NOT NULL DEFAULT '',
			image      TEXT NOT NULL DEFAULT '',
			provider   TEXT NOT NULL DEFAULT '',
			role       TEXT NOT NULL DEFAULT 'user',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// The forecast snapshot is embedded in the spot row (three nullable
	// columns) because the spot owns it exclusively — it is replaced as a
	// unit on refresh and dies with the spot.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS spots (
			id                   TEXT PRIMARY KEY,
			name                 TEXT NOT NULL,
			description          TEXT NOT NULL DEFAULT '',
			image_url            TEXT NOT NULL DEFAULT '',
			region               TEXT NOT NULL DEFAULT '',
			country              TEXT NOT NULL DEFAULT '',
			difficulty           TEXT NOT NULL DEFAULT 'Intermediate',
			wave_type            TEXT NOT NULL DEFAULT 'Beach break',
			swell_direction      TEXT NOT NULL DEFAULT '',
			wind_direction       TEXT NOT NULL DEFAULT '',
			tide                 TEXT NOT NULL DEFAULT 'All',
			crowd_factor         TEXT NOT NULL DEFAULT 'Medium',
			season               TEXT NOT NULL DEFAULT '[]',
			lat                  REAL,
			lng                  REAL,
			user_id              TEXT NOT NULL REFERENCES users(id),
			forecast_captured_at DATETIME,
			forecast_data        TEXT,
			forecast_fetched_at  DATETIME,
			created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_spots_created_at ON spots(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating spots table: %w", err)
	}

	// parent_id is a self-reference: top-level comments have NULL, replies
	// point at a top-level comment. ON DELETE CASCADE on spot_id means a
	// spot deletion takes its whole comment tree with it in one statement.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			spot_id    TEXT NOT NULL REFERENCES spots(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			text       TEXT NOT NULL,
			rating     INTEGER,
			parent_id  TEXT REFERENCES comments(id),
			edited     INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_spot_id ON comments(spot_id);
		CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments(parent_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}
