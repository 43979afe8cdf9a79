// Package sqlite implements the repository interfaces on top of an embedded
// SQLite database (modernc.org/sqlite, pure Go, no cgo).
//
// Birds and sightings are kept in two unrelated tables. There is deliberately
// no REFERENCES clause on sightings.bird_id: the store behaves like the
// document store the service was designed for, and referential integrity is
// enforced by the service layer.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. Birds() and Sightings() return the
// per-table stores.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/birds.db"  → file-based database (persistent)
//   - ":memory:"       → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" gets its own empty database, so the
	// pool must never grow past one.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
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

// migrate creates the tables and the indexes backing every query branch.
// CREATE ... IF NOT EXISTS keeps it safe to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS birds (
			id     TEXT PRIMARY KEY,
			name   TEXT NOT NULL DEFAULT '',
			color  TEXT NOT NULL DEFAULT '',
			weight REAL NOT NULL DEFAULT 0,
			height REAL NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_birds_name ON birds(name);
		CREATE INDEX IF NOT EXISTS idx_birds_color ON birds(color);
	`)
	if err != nil {
		return fmt.Errorf("creating birds table: %w", err)
	}

	// date_time is TEXT in a fixed-width layout, so lexical order is
	// chronological order and BETWEEN works on it directly.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sightings (
			id        TEXT PRIMARY KEY,
			bird_id   TEXT NOT NULL,
			location  TEXT NOT NULL DEFAULT '',
			date_time TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_sightings_bird_id ON sightings(bird_id);
		CREATE INDEX IF NOT EXISTS idx_sightings_location ON sightings(location);
		CREATE INDEX IF NOT EXISTS idx_sightings_date_time ON sightings(date_time);
	`)
	if err != nil {
		return fmt.Errorf("creating sightings table: %w", err)
	}

	return nil
}
