package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const runColumns = "id, created_at, strategy, release, options, report_hash, archive_count, issue_count"

// Runs returns all runs, newest first.
func (s *Store) Runs() ([]*Run, error) {
	rows, err := s.db.Query("SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("store: runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: runs: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunByID returns a run, or ErrRunNotFound. A unique ID prefix is accepted.
func (s *Store) RunByID(id string) (*Run, error) {
	rows, err := s.db.Query("SELECT "+runColumns+" FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\\' ORDER BY id LIMIT 2", id, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("store: run %s: %w", id, err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: run %s: %w", id, err)
		}
		if r.ID == id {
			return r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: run %s: %w", id, err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("store: run %s: %w", id, ErrRunNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("store: run %s: ambiguous id prefix", id)
	}
}

// LatestRun returns the most recent run, or ErrRunNotFound if there is none.
func (s *Store) LatestRun() (*Run, error) {
	row := s.db.QueryRow("SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1")
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest run: %w", err)
	}
	return r, nil
}

// Findings returns a run's findings in report order.
func (s *Store) Findings(runID string) ([]*Finding, error) {
	return s.queryFindings("WHERE run_id = ?", runID)
}

// FindingsByKind returns a run's findings whose kind is one of kinds, in
// report order.
func (s *Store) FindingsByKind(runID string, kinds ...string) ([]*Finding, error) {
	if len(kinds) == 0 {
		return s.Findings(runID)
	}
	args := append([]any{runID}, stringsToArgs(kinds)...)
	return s.queryFindings("WHERE run_id = ? AND kind IN ("+placeholderList(len(kinds))+")", args...)
}

// FindingsByArchive returns a run's findings for one archive.
func (s *Store) FindingsByArchive(runID, archive string) ([]*Finding, error) {
	return s.queryFindings("WHERE run_id = ? AND archive = ?", runID, archive)
}

// KindCounts returns the number of findings per kind for a run.
func (s *Store) KindCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query("SELECT kind, COUNT(*) FROM findings WHERE run_id = ? GROUP BY kind", runID)
	if err != nil {
		return nil, fmt.Errorf("store: kind counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("store: kind counts: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Duplicates returns the duplicate and shadowed classes recorded for a run.
func (s *Store) Duplicates(runID string) ([]*Duplicate, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, class_name, archives, shadowed FROM duplicates WHERE run_id = ? ORDER BY shadowed, class_name, id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: duplicates: %w", err)
	}
	defer rows.Close()

	var dups []*Duplicate
	for rows.Next() {
		d := &Duplicate{}
		var archives string
		if err := rows.Scan(&d.ID, &d.RunID, &d.Class, &archives, &d.Shadowed); err != nil {
			return nil, fmt.Errorf("store: duplicates: %w", err)
		}
		d.Archives = unmarshalStrings(archives)
		dups = append(dups, d)
	}
	return dups, rows.Err()
}

func (s *Store) queryFindings(where string, args ...any) ([]*Finding, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, seq, archive, headline, kind, text, notes FROM findings "+where+" ORDER BY seq",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("store: findings: %w", err)
	}
	defer rows.Close()

	var out []*Finding
	for rows.Next() {
		f := &Finding{}
		var notes string
		if err := rows.Scan(&f.ID, &f.RunID, &f.Seq, &f.Archive, &f.Headline, &f.Kind, &f.Text, &notes); err != nil {
			return nil, fmt.Errorf("store: findings: %w", err)
		}
		f.Notes = unmarshalStrings(notes)
		out = append(out, f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	r := &Run{}
	var options string
	var hash sql.NullString
	if err := sc.Scan(&r.ID, &r.CreatedAt, &r.Strategy, &r.Release, &options, &hash, &r.Archives, &r.Issues); err != nil {
		return nil, err
	}
	r.Options = unmarshalStrings(options)
	r.ReportHash = hash.String
	return r, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
