// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// The whole store is one file (or ":memory:" in tests) inside the Go binary's
// process — no database server to run. modernc.org/sqlite is a pure Go
// translation of SQLite, so there's no CGo and cross-compilation stays
// painless.
//
// CONCURRENCY MODEL:
// The store is a single shared mutable resource. Three operations have a
// read-then-write step that must not interleave with other writers:
//
//   - chat ID allocation (find smallest free integer, then insert)
//   - invite code claim (check the global code namespace, then insert)
//   - positional message mutation (resolve position to a row, then mutate)
//
// All of these hold db.mu for their whole read-modify-write window, so two
// concurrent createChat calls can never allocate the same reclaimed ID and
// two concurrent invite claims can never both observe a code as free.
// Plain reads skip the mutex; SQLite's WAL mode lets them run while a write
// is in flight.
//
// Foreign keys are ON with ON DELETE CASCADE from chats to both messages and
// invites: deleting a chat removes all dependent rows in the same statement,
// so no message or invite can ever reference a dead chat.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // registers the "sqlite" driver with database/sql
)

// DB wraps a sql.DB handle and implements every repository interface.
type DB struct {
	conn *sql.DB

	// mu serializes multi-step write operations (see package comment).
	mu sync.Mutex
}

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/chatapp.db" → file-based, persistent
//   - ":memory:"        → in-memory, lost on close (tests)
//
// The pool is limited to a single connection: SQLite has a single writer
// anyway, and with ":memory:" every pool connection would otherwise get its
// own private, empty database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode: readers don't block while a write is happening.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The cascade from chats to
	// messages and invites depends on them.
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

// Close closes the database connection pool. Always defer it next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent; for this project's scale that beats a migration tool.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			full_name     TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			disabled      INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS chats (
			id         INTEGER PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS chat_members (
			chat_id  INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			username TEXT NOT NULL,
			PRIMARY KEY (chat_id, username)
		);

		-- messages.id is an internal append counter (AUTOINCREMENT: never
		-- reused), NOT the message's public ID. The public ID is the row's
		-- position within its chat ordered by id — see message.go.
		CREATE TABLE IF NOT EXISTS messages (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id   INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			author    TEXT NOT NULL,
			content   TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			edited    INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id, id);

		CREATE TABLE IF NOT EXISTS invites (
			code       TEXT PRIMARY KEY,
			chat_id    INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_invites_chat_id ON invites(chat_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
