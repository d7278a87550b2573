package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("store: run not found")

// Store is the SQLite data access layer for analysis runs and their findings.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id              TEXT PRIMARY KEY,
  created_at      TIMESTAMP NOT NULL,
  strategy        TEXT NOT NULL,
  release         INTEGER NOT NULL DEFAULT 0,
  options         TEXT NOT NULL DEFAULT '[]',
  report_hash     TEXT,
  archive_count   INTEGER NOT NULL DEFAULT 0,
  issue_count     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS findings (
  id              INTEGER PRIMARY KEY,
  run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  seq             INTEGER NOT NULL,
  archive         TEXT NOT NULL,
  headline        TEXT NOT NULL,
  kind            TEXT NOT NULL,
  text            TEXT NOT NULL,
  notes           TEXT NOT NULL DEFAULT '[]',
  UNIQUE(run_id, seq)
);

CREATE TABLE IF NOT EXISTS duplicates (
  id              INTEGER PRIMARY KEY,
  run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  class_name      TEXT NOT NULL,
  archives        TEXT NOT NULL,
  shadowed        BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id, seq);
CREATE INDEX IF NOT EXISTS idx_findings_kind ON findings(run_id, kind);
CREATE INDEX IF NOT EXISTS idx_findings_archive ON findings(run_id, archive);
CREATE INDEX IF NOT EXISTS idx_duplicates_run ON duplicates(run_id);
`

// InsertRun records the start of a run. An empty ID is replaced with a new
// UUID and a zero CreatedAt with the current time; both are written back to
// run.
func (s *Store) InsertRun(run *Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, created_at, strategy, release, options, report_hash, archive_count, issue_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Strategy, run.Release, marshalStrings(run.Options),
		nullString(run.ReportHash), run.Archives, run.Issues,
	)
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}
	return run.ID, nil
}

// FinishRun stores the summary of a completed run.
func (s *Store) FinishRun(id, reportHash string, archives, issues int) error {
	res, err := s.db.Exec(
		"UPDATE runs SET report_hash = ?, archive_count = ?, issue_count = ? WHERE id = ?",
		reportHash, archives, issues, id,
	)
	if err != nil {
		return fmt.Errorf("store: finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// InsertFinding appends a finding to its run, after the run's existing
// findings. Returns the assigned ID.
func (s *Store) InsertFinding(f *Finding) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: insert finding: begin: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeqTx(tx, f.RunID)
	if err != nil {
		return 0, fmt.Errorf("store: insert finding: %w", err)
	}
	f.Seq = seq
	id, err := insertFindingTx(tx, f)
	if err != nil {
		return 0, fmt.Errorf("store: insert finding: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: insert finding: commit: %w", err)
	}
	f.ID = id
	return id, nil
}

// InsertDuplicate records a duplicate or shadowed class for a run.
func (s *Store) InsertDuplicate(d *Duplicate) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO duplicates (run_id, class_name, archives, shadowed) VALUES (?, ?, ?, ?)",
		d.RunID, d.Class, marshalStrings(d.Archives), d.Shadowed,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert duplicate: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert duplicate: %w", err)
	}
	d.ID = id
	return id, nil
}

// SaveReport writes a run with its findings and duplicates in a single
// transaction. Finding sequence numbers follow slice order.
func (s *Store) SaveReport(run *Run, findings []Finding, dups []Duplicate) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if run.ReportHash == "" {
		run.ReportHash = ComputeReportHash(findings)
	}
	run.Issues = len(findings)

	batch := NewBatchedStore(s, run.ID)
	for i := range findings {
		if _, err := batch.InsertFinding(&findings[i]); err != nil {
			return "", err
		}
	}
	for i := range dups {
		batch.AddDuplicate(dups[i])
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("store: save report: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, created_at, strategy, release, options, report_hash, archive_count, issue_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Strategy, run.Release, marshalStrings(run.Options),
		run.ReportHash, run.Archives, run.Issues,
	); err != nil {
		return "", fmt.Errorf("store: save report: run: %w", err)
	}
	if err := commitBatchTx(tx, batch); err != nil {
		return "", fmt.Errorf("store: save report: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: save report: commit: %w", err)
	}
	return run.ID, nil
}

// DeleteRun removes a run together with its findings and duplicates.
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
