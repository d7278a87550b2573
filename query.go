package jarlink

import (
	"errors"
	"fmt"
	"time"

	"github.com/jward/jarlink/internal/store"
)

// ErrRunNotFound is returned when no stored run matches an ID or prefix.
var ErrRunNotFound = store.ErrRunNotFound

// QueryBuilder reads stored runs back.
type QueryBuilder struct {
	store *store.Store
}

// NewQuery returns a QueryBuilder over s.
func NewQuery(s *Store) *QueryBuilder {
	return &QueryBuilder{store: s}
}

// Query returns a QueryBuilder over the Engine's store, or nil when the
// Engine has none.
func (e *Engine) Query() *QueryBuilder {
	if e.store == nil {
		return nil
	}
	return NewQuery(e.store)
}

// RunSummary describes one stored analysis.
type RunSummary struct {
	ID         string
	CreatedAt  time.Time
	Strategy   string
	Release    int
	Options    []string
	Archives   int
	Issues     int
	ReportHash string
}

// FindingFilter narrows Findings. Zero values match everything.
type FindingFilter struct {
	Kinds   []string
	Archive string
}

// RunDiff is the difference between two runs. Findings are matched on
// archive, headline, kind, and text; repeats are matched one to one.
type RunDiff struct {
	Base  string
	Head  string
	Added []Finding // in Head only
	Fixed []Finding // in Base only
}

// Runs returns every stored run, newest first.
func (q *QueryBuilder) Runs() ([]RunSummary, error) {
	runs, err := q.store.Runs()
	if err != nil {
		return nil, fmt.Errorf("runs: %w", err)
	}
	out := make([]RunSummary, len(runs))
	for i, r := range runs {
		out[i] = toRunSummary(r)
	}
	return out, nil
}

// Run finds a run by ID or unique ID prefix. An empty id selects the most
// recent run.
func (q *QueryBuilder) Run(id string) (*RunSummary, error) {
	var r *store.Run
	var err error
	if id == "" {
		r, err = q.store.LatestRun()
	} else {
		r, err = q.store.RunByID(id)
	}
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", id, err)
	}
	s := toRunSummary(r)
	return &s, nil
}

// Findings returns the findings of a run in report order.
func (q *QueryBuilder) Findings(id string, filter FindingFilter) ([]Finding, error) {
	run, err := q.Run(id)
	if err != nil {
		return nil, fmt.Errorf("findings: %w", err)
	}

	var rows []*store.Finding
	switch {
	case filter.Archive != "":
		rows, err = q.store.FindingsByArchive(run.ID, filter.Archive)
	default:
		rows, err = q.store.FindingsByKind(run.ID, filter.Kinds...)
	}
	if err != nil {
		return nil, fmt.Errorf("findings: %w", err)
	}

	want := make(map[string]bool, len(filter.Kinds))
	for _, k := range filter.Kinds {
		want[k] = true
	}
	out := make([]Finding, 0, len(rows))
	for _, f := range rows {
		if filter.Archive != "" && len(want) > 0 && !want[f.Kind] {
			continue
		}
		out = append(out, Finding{
			Archive:  f.Archive,
			Headline: f.Headline,
			Kind:     f.Kind,
			Text:     f.Text,
			Notes:    f.Notes,
		})
	}
	return out, nil
}

// KindCounts returns the number of findings per kind of a run.
func (q *QueryBuilder) KindCounts(id string) (map[string]int, error) {
	run, err := q.Run(id)
	if err != nil {
		return nil, fmt.Errorf("kind counts: %w", err)
	}
	counts, err := q.store.KindCounts(run.ID)
	if err != nil {
		return nil, fmt.Errorf("kind counts: %w", err)
	}
	return counts, nil
}

// Diff compares the findings of two runs.
func (q *QueryBuilder) Diff(base, head string) (*RunDiff, error) {
	baseRun, err := q.Run(base)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	headRun, err := q.Run(head)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	before, err := q.Findings(baseRun.ID, FindingFilter{})
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	after, err := q.Findings(headRun.ID, FindingFilter{})
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return &RunDiff{
		Base:  baseRun.ID,
		Head:  headRun.ID,
		Added: subtract(after, before),
		Fixed: subtract(before, after),
	}, nil
}

// DeleteRun removes a run and everything stored with it.
func (q *QueryBuilder) DeleteRun(id string) (*RunSummary, error) {
	if id == "" {
		return nil, errors.New("delete run: empty id")
	}
	run, err := q.Run(id)
	if err != nil {
		return nil, fmt.Errorf("delete run: %w", err)
	}
	if err := q.store.DeleteRun(run.ID); err != nil {
		return nil, fmt.Errorf("delete run: %w", err)
	}
	return run, nil
}

// subtract returns the findings of a that b does not account for, in a's
// order.
func subtract(a, b []Finding) []Finding {
	remaining := make(map[string]int, len(b))
	for _, f := range b {
		remaining[findingKey(f)]++
	}
	var out []Finding
	for _, f := range a {
		k := findingKey(f)
		if remaining[k] > 0 {
			remaining[k]--
			continue
		}
		out = append(out, f)
	}
	return out
}

func findingKey(f Finding) string {
	return f.Archive + "\x00" + f.Headline + "\x00" + f.Kind + "\x00" + f.Text
}

func toRunSummary(r *store.Run) RunSummary {
	return RunSummary{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		Strategy:   r.Strategy,
		Release:    r.Release,
		Options:    r.Options,
		Archives:   r.Archives,
		Issues:     r.Issues,
		ReportHash: r.ReportHash,
	}
}
