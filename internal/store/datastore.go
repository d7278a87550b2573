package store

// FindingSink receives the findings of a run. Store writes them through to
// SQLite; BatchedStore buffers them for a later CommitBatch.
type FindingSink interface {
	InsertFinding(f *Finding) (int64, error)
	InsertDuplicate(d *Duplicate) (int64, error)
}

// Compile-time check: *Store satisfies FindingSink.
var _ FindingSink = (*Store)(nil)
