// Package replstore persists REPL session history to a local SQLite
// database: sql.Open with the pure-Go sqlite driver, then plain
// query/exec calls, mirroring the sibling pack's sql.DB usage.
package replstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite-backed history log: one row per evaluated
// top-level statement and the value it printed.
type Store struct {
	db *sql.DB
}

// Entry is one recorded REPL turn.
type Entry struct {
	ID     int64
	Input  string
	Output string
	When   time.Time
}

// Open creates (or reuses) the history database at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("replstore: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("replstore: ping %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS geskiedenis (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	input    TEXT NOT NULL,
	output   TEXT NOT NULL,
	wanneer  DATETIME NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("replstore: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one evaluated statement and its printed result.
func (s *Store) Record(input, output string) error {
	_, err := s.db.Exec(
		`INSERT INTO geskiedenis (input, output, wanneer) VALUES (?, ?, ?)`,
		input, output, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("replstore: record: %w", err)
	}
	return nil
}

// Recent returns the last n entries, oldest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, input, output, wanneer FROM geskiedenis ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("replstore: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Input, &e.Output, &e.When); err != nil {
			return nil, fmt.Errorf("replstore: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("replstore: rows: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
