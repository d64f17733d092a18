// Package cache provides the SQLite-backed scan cache. It stores parsed
// documents keyed by path and content checksum so unchanged files skip
// re-parsing across runs.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/dagaz/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS docs (
	path     TEXT PRIMARY KEY,
	checksum TEXT NOT NULL DEFAULT '',
	doc      TEXT NOT NULL DEFAULT '{}'
);
`

// DB wraps a sql.DB with cache-specific operations. It implements the
// scanner's Cache interface.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get returns the cached document for path when its checksum still matches.
// A miss is never an error: the scanner just re-parses.
func (db *DB) Get(path, checksum string) (*models.Document, bool) {
	var stored, payload string
	err := db.conn.QueryRow(`SELECT checksum, doc FROM docs WHERE path = ?`, path).
		Scan(&stored, &payload)
	if err != nil || stored != checksum {
		return nil, false
	}
	var doc models.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

// Put stores a parsed document under its path and checksum.
func (db *DB) Put(path, checksum string, doc *models.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cache: marshal doc: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO docs (path, checksum, doc)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum = excluded.checksum,
			doc      = excluded.doc
	`, path, checksum, string(payload))
	if err != nil {
		return fmt.Errorf("cache: upsert doc: %w", err)
	}
	return nil
}

// Prune removes entries for paths no longer on disk.
func (db *DB) Prune(live []string) error {
	if len(live) == 0 {
		if _, err := db.conn.Exec(`DELETE FROM docs`); err != nil {
			return fmt.Errorf("cache: prune all: %w", err)
		}
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(live)), ",")
	args := make([]any, len(live))
	for i, p := range live {
		args[i] = p
	}
	_, err := db.conn.Exec(`DELETE FROM docs WHERE path NOT IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("cache: prune: %w", err)
	}
	return nil
}
