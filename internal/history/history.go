// Package history persists a ledger of finished recording sessions backed
// by SQLite. The ledger is advisory: recording never blocks on it, and a
// broken database degrades to a warning.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages session history persistence.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one recorded session.
type Entry struct {
	ID          string
	OutputPath  string
	StartedAt   time.Time
	FinishedAt  time.Time
	Duration    time.Duration
	Status      string
	ErrorText   string
	MarkerCount int
	SizeBytes   int64
}

// Open initializes or connects to the history database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record inserts one finished session.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("record session: missing id")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
            id, output_path, started_at, finished_at, duration_seconds,
            status, error, marker_count, size_bytes
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.OutputPath,
		entry.StartedAt.UTC().Format(time.RFC3339Nano),
		entry.FinishedAt.UTC().Format(time.RFC3339Nano),
		entry.Duration.Seconds(),
		entry.Status,
		nullableString(entry.ErrorText),
		entry.MarkerCount,
		entry.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// List returns the most recent sessions, newest first. limit <= 0 returns
// everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, output_path, started_at, finished_at, duration_seconds,
        status, error, marker_count, size_bytes
        FROM sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry           Entry
			started, ended  string
			durationSeconds float64
			errorText       sql.NullString
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.OutputPath,
			&started,
			&ended,
			&durationSeconds,
			&entry.Status,
			&errorText,
			&entry.MarkerCount,
			&entry.SizeBytes,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		entry.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		entry.FinishedAt, err = time.Parse(time.RFC3339Nano, ended)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		entry.Duration = time.Duration(durationSeconds * float64(time.Second))
		entry.ErrorText = errorText.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return entries, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
