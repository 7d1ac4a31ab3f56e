package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"hopper/internal/config"
)

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database under the log
// directory and verifies the schema version.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "ledger.db")
	db, err := sql.Open("sqlite", dbPath)
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

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends an entry for a finished file.
func (s *Store) Record(ctx context.Context, entry Entry) (*Entry, error) {
	if entry.Path == "" {
		return nil, fmt.Errorf("record entry: path is required")
	}
	if !entry.Outcome.valid() {
		return nil, fmt.Errorf("record entry: unknown outcome %q", entry.Outcome)
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO ledger_entries (path, outcome, attempts, detail, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		entry.Path,
		string(entry.Outcome),
		entry.Attempts,
		nullableString(entry.Detail),
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = timestamp
	return &entry, nil
}

// List returns the most recent entries, newest first, optionally filtered
// by outcome. A limit of zero or less returns every entry.
func (s *Store) List(ctx context.Context, outcome Outcome, limit int) ([]Entry, error) {
	query := `SELECT id, path, outcome, attempts, detail, created_at FROM ledger_entries`
	args := make([]any, 0, 2)
	if outcome != "" {
		if !outcome.valid() {
			return nil, fmt.Errorf("list entries: unknown outcome %q", outcome)
		}
		query += ` WHERE outcome = ?`
		args = append(args, string(outcome))
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			entry  Entry
			detail sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Path, &entry.Outcome, &entry.Attempts, &detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Detail = detail.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Stats returns entry counts grouped by outcome.
func (s *Store) Stats(ctx context.Context) (map[Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(1) FROM ledger_entries GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := make(map[Outcome]int)
	for rows.Next() {
		var (
			outcome string
			count   int
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats[Outcome(outcome)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

// Clear removes every ledger entry and returns the number deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ledger_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear ledger: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
