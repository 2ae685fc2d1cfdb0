// Package history persists a ledger of completed processing passes backed
// by SQLite. The ledger is observability data only: processing never reads
// it back to make decisions, so a ledger failure must never block a pass.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pcbwatch/internal/config"
)

// Outcome classifies how a pass ended.
const (
	OutcomeProcessed     = "processed"
	OutcomeSourceMissing = "source-missing"
	OutcomeCopyFailed    = "copy-failed"
	OutcomeReadFailed    = "read-failed"
	OutcomeEmptySnapshot = "empty-snapshot"
)

// PassRecord is one row of the ledger.
type PassRecord struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	Outcome          string
	Encoding         string
	Lossy            bool
	UsedFallback     bool
	Matches          int
	NewIdentifiers   int
	TotalIdentifiers int
	DiagnosticLines  int
	Digest           string
}

// Store manages ledger persistence.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the on-disk database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS pass_history (
    id                TEXT PRIMARY KEY,
    started_at        TEXT NOT NULL,
    finished_at       TEXT NOT NULL,
    outcome           TEXT NOT NULL,
    encoding          TEXT NOT NULL DEFAULT '',
    lossy             INTEGER NOT NULL DEFAULT 0,
    used_fallback     INTEGER NOT NULL DEFAULT 0,
    matches           INTEGER NOT NULL DEFAULT 0,
    new_identifiers   INTEGER NOT NULL DEFAULT 0,
    total_identifiers INTEGER NOT NULL DEFAULT 0,
    diagnostic_lines  INTEGER NOT NULL DEFAULT 0,
    digest            TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_pass_history_started_at ON pass_history (started_at);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Record inserts one pass into the ledger, assigning an ID when absent.
func (s *Store) Record(ctx context.Context, rec PassRecord) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("history store unavailable")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pass_history (
            id, started_at, finished_at, outcome, encoding, lossy,
            used_fallback, matches, new_identifiers, total_identifiers,
            diagnostic_lines, digest
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Outcome,
		rec.Encoding,
		boolToInt(rec.Lossy),
		boolToInt(rec.UsedFallback),
		rec.Matches,
		rec.NewIdentifiers,
		rec.TotalIdentifiers,
		rec.DiagnosticLines,
		rec.Digest,
	)
	if err != nil {
		return "", fmt.Errorf("insert pass record: %w", err)
	}
	return rec.ID, nil
}

// Recent returns the most recent passes, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]PassRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history store unavailable")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, started_at, finished_at, outcome, encoding, lossy,
                used_fallback, matches, new_identifiers, total_identifiers,
                diagnostic_lines, digest
           FROM pass_history
          ORDER BY started_at DESC
          LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pass history: %w", err)
	}
	defer rows.Close()

	var records []PassRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pass history: %w", err)
	}
	return records, nil
}

// Last returns the newest pass record, or nil when the ledger is empty.
func (s *Store) Last(ctx context.Context) (*PassRecord, error) {
	records, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func scanRecord(rows *sql.Rows) (PassRecord, error) {
	var (
		rec                   PassRecord
		startedAt, finishedAt string
		lossy, usedFallback   int
	)
	if err := rows.Scan(
		&rec.ID, &startedAt, &finishedAt, &rec.Outcome, &rec.Encoding,
		&lossy, &usedFallback, &rec.Matches, &rec.NewIdentifiers,
		&rec.TotalIdentifiers, &rec.DiagnosticLines, &rec.Digest,
	); err != nil {
		return PassRecord{}, fmt.Errorf("scan pass record: %w", err)
	}

	var err error
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return PassRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return PassRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}
	rec.Lossy = lossy != 0
	rec.UsedFallback = usedFallback != 0
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
