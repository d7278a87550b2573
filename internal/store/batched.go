package store

import "sync"

// BatchedStore buffers the findings of one run in memory using fake
// (negative) IDs, so workers can record results without touching SQLite.
// CommitBatch writes them in a single transaction.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
type BatchedStore struct {
	store *Store
	runID string
	mu    sync.Mutex

	Findings   []Finding
	Duplicates []Duplicate

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies FindingSink.
var _ FindingSink = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore for the given run.
func NewBatchedStore(s *Store, runID string) *BatchedStore {
	return &BatchedStore{
		store:      s,
		runID:      runID,
		nextFakeID: -1,
	}
}

// RunID returns the run the batch belongs to.
func (b *BatchedStore) RunID() string { return b.runID }

// Len returns the number of buffered findings.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Findings)
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

// InsertFinding buffers f. Its RunID is set to the batch's run.
func (b *BatchedStore) InsertFinding(f *Finding) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	f.ID = fakeID
	f.RunID = b.runID
	b.Findings = append(b.Findings, *f)
	return fakeID, nil
}

// InsertDuplicate buffers d. Its RunID is set to the batch's run.
func (b *BatchedStore) InsertDuplicate(d *Duplicate) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	d.ID = fakeID
	d.RunID = b.runID
	b.Duplicates = append(b.Duplicates, *d)
	return fakeID, nil
}

// AddDuplicate is InsertDuplicate for callers holding a value.
func (b *BatchedStore) AddDuplicate(d Duplicate) {
	_, _ = b.InsertDuplicate(&d)
}
