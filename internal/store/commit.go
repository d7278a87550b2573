package store

import (
	"database/sql"
	"fmt"
)

// CommitBatch inserts all buffered data from a BatchedStore into SQLite
// within a single transaction. Findings get sequence numbers following the
// run's existing findings, in buffer order.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	if err := commitBatchTx(tx, batch); err != nil {
		return fmt.Errorf("store: commit batch: %w", err)
	}
	return tx.Commit()
}

func commitBatchTx(tx *sql.Tx, batch *BatchedStore) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	seq, err := nextSeqTx(tx, batch.runID)
	if err != nil {
		return err
	}
	for i := range batch.Findings {
		f := batch.Findings[i]
		f.RunID = batch.runID
		f.Seq = seq
		if _, err := insertFindingTx(tx, &f); err != nil {
			return fmt.Errorf("finding %d (%s): %w", seq, f.Kind, err)
		}
		seq++
	}
	for _, d := range batch.Duplicates {
		if _, err := tx.Exec(
			"INSERT INTO duplicates (run_id, class_name, archives, shadowed) VALUES (?, ?, ?, ?)",
			batch.runID, d.Class, marshalStrings(d.Archives), d.Shadowed,
		); err != nil {
			return fmt.Errorf("duplicate %q: %w", d.Class, err)
		}
	}
	return nil
}

func nextSeqTx(tx *sql.Tx, runID string) (int, error) {
	var seq int
	if err := tx.QueryRow("SELECT COALESCE(MAX(seq) + 1, 0) FROM findings WHERE run_id = ?", runID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func insertFindingTx(tx *sql.Tx, f *Finding) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO findings (run_id, seq, archive, headline, kind, text, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.RunID, f.Seq, f.Archive, f.Headline, f.Kind, f.Text, marshalStrings(f.Notes),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
