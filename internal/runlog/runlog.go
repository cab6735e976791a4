// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog journals pipeline runs to a SQLite database so operators
// can audit how a dataset reached its current state across restarts.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one journal row: one table processed by one pipeline run.
type Entry struct {
	ID         int64
	Command    string
	Provider   string
	Table      string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Resolved   int
	NotFound   int
	Pending    int
}

// Store manages the run journal SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run journal at the given path, creating the
// parent directory and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating run journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening run journal: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		command TEXT NOT NULL,
		provider TEXT,
		table_name TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		processed INTEGER NOT NULL,
		resolved INTEGER NOT NULL,
		not_found INTEGER NOT NULL,
		pending INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Record appends one run to the journal and returns its row ID.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (command, provider, table_name, started_at, finished_at, processed, resolved, not_found, pending)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Command, e.Provider, e.Table,
		e.StartedAt.UTC().Format(time.RFC3339Nano),
		e.FinishedAt.UTC().Format(time.RFC3339Nano),
		e.Processed, e.Resolved, e.NotFound, e.Pending,
	)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, provider, table_name, started_at, finished_at, processed, resolved, not_found, pending
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished string
		if err := rows.Scan(&e.ID, &e.Command, &e.Provider, &e.Table, &started, &finished,
			&e.Processed, &e.Resolved, &e.NotFound, &e.Pending); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if e.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if e.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
