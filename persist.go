package jarlink

import (
	"fmt"

	"github.com/jward/jarlink/internal/store"
)

// persist writes the report as a new run: the run row first, then one
// batch per archive row in report order, then the summary.
func (e *Engine) persist(r *Report) error {
	run := &store.Run{
		Strategy: r.Strategy,
		Release:  r.Release,
		Options:  e.optionNames(),
		Archives: r.Archives,
	}
	runID, err := e.store.InsertRun(run)
	if err != nil {
		return fmt.Errorf("jarlink: persist: %w", err)
	}

	var all []store.Finding
	for _, row := range r.Rows {
		batch := store.NewBatchedStore(e.store, runID)
		for _, b := range row.Blocks {
			for _, is := range b.Issues {
				f := store.Finding{
					Archive:  row.Archive,
					Headline: b.Headline,
					Kind:     is.Kind.String(),
					Text:     is.Text(),
					Notes:    is.Notes,
				}
				all = append(all, f)
				if _, err := batch.InsertFinding(&f); err != nil {
					return fmt.Errorf("jarlink: persist %s: %w", row.Archive, err)
				}
			}
		}
		if err := e.store.CommitBatch(batch); err != nil {
			return fmt.Errorf("jarlink: persist %s: %w", row.Archive, err)
		}
	}

	dups := store.NewBatchedStore(e.store, runID)
	for _, d := range r.Duplicates {
		dups.AddDuplicate(store.Duplicate{Class: d.Class, Archives: d.Archives})
	}
	for _, s := range r.Shadowed {
		dups.AddDuplicate(store.Duplicate{Class: s.Class, Archives: []string{s.Archive, s.Shadowed}, Shadowed: true})
	}
	if err := e.store.CommitBatch(dups); err != nil {
		return fmt.Errorf("jarlink: persist duplicates: %w", err)
	}

	if err := e.store.FinishRun(runID, store.ComputeReportHash(all), r.Archives, len(all)); err != nil {
		return fmt.Errorf("jarlink: persist: %w", err)
	}
	r.RunID = runID
	e.logger.Debug("report stored", "run", runID, "findings", len(all))
	return nil
}

// optionNames lists the enabled analysis options for the run record.
func (e *Engine) optionNames() []string {
	var names []string
	if e.checks.IgnoreMissingAnnotations {
		names = append(names, "ignore-missing-annotations")
	}
	if e.checks.ReportOwnerClassNotFound {
		names = append(names, "report-owner-class-not-found")
	}
	if e.filter != nil {
		names = append(names, "filter="+e.filter.Label())
	}
	return names
}
