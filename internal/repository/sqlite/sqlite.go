// Package sqlite implements the repository interfaces on an embedded SQLite
// database via database/sql.
//
// modernc.org/sqlite is a pure-Go translation of SQLite: no CGo, no C
// toolchain, cross-compiles anywhere Go does. sql.DB is a connection pool,
// so each request borrows a connection for the duration of its queries and
// returns it when rows are closed; connection lifetime is scope-bound rather
// than hand-managed per branch.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements
// repository.EntryRepository and repository.UserRepository.
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

	// The PRAGMAs below apply per connection, and a ":memory:" DSN gives
	// every pooled connection its own separate database. A single pooled
	// connection keeps both correct; SQLite only supports one writer at a
	// time anyway.
	conn.SetMaxOpenConns(1)

	// Force an immediate connection so a bad path or permissions problem
	// surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent readers while a write is in flight. SQLite's own
	// locking serializes concurrent writers on the same row, which is all the
	// coordination this service needs; a concurrent update and delete of the
	// same entry can never interleave into a partial state.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; the entries.user_id
	// ON DELETE CASCADE depends on them.
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

// Close closes the connection pool. Defer this wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup.
//
// amount and puffs are TEXT on purpose: clients send them as numbers or
// strings interchangeably and the raw text is what round-trips back to them.
// The parsed values only ever feed the thc_mg computation, which is stored.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			thc_mg      REAL NOT NULL,
			timestamp   DATETIME NOT NULL,
			date        TEXT NOT NULL,
			time        TEXT NOT NULL,
			method      TEXT NOT NULL,
			amount      TEXT NOT NULL DEFAULT '',
			puffs       TEXT NOT NULL DEFAULT '',
			thc_percent REAL,
			strain      TEXT NOT NULL DEFAULT '',
			mood        INTEGER NOT NULL DEFAULT 5,
			energy      INTEGER NOT NULL DEFAULT 5,
			focus       INTEGER NOT NULL DEFAULT 5,
			creativity  INTEGER NOT NULL DEFAULT 5,
			anxiety     INTEGER NOT NULL DEFAULT 0,
			activities  TEXT NOT NULL DEFAULT '[]',
			notes       TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_entries_user_timestamp
			ON entries(user_id, timestamp DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating entries table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite doesn't export a typed error for this, so we match on
// the canonical SQLite message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
