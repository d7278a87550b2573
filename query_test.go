package jarlink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jward/jarlink/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryBuilder(t *testing.T) (*QueryBuilder, *Engine) {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	e := New(WithStore(s))
	return e.Query(), e
}

// fixedInput is linkageInput with c.C supplied and a new missing d.D.
func fixedInput(t *testing.T) Input {
	in := linkageInput(t)
	in.Archives[0] = newArchive(t, "a.jar", newClass("a.A", model.AccPublic,
		model.ClassRef("b.B"),
		model.ClassRef("c.C"),
		model.ClassRef("d.D"),
	))
	in.Archives = append(in.Archives, newArchive(t, "c.jar", newClass("c.C", model.AccPublic)))
	return in
}

func TestQuery_NoStore(t *testing.T) {
	assert.Nil(t, New().Query())
}

func TestQuery_Runs(t *testing.T) {
	q, e := newTestQueryBuilder(t)

	runs, err := q.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)

	report, err := e.Analyze(context.Background(), linkageInput(t))
	require.NoError(t, err)

	runs, err = q.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, "parent-last", runs[0].Strategy)
	assert.Equal(t, 2, runs[0].Issues)
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestQuery_RunByPrefixAndLatest(t *testing.T) {
	q, e := newTestQueryBuilder(t)

	_, err := q.Run("")
	require.ErrorIs(t, err, ErrRunNotFound)

	first, err := e.Analyze(context.Background(), linkageInput(t))
	require.NoError(t, err)
	second, err := e.Analyze(context.Background(), fixedInput(t))
	require.NoError(t, err)

	run, err := q.Run(first.RunID[:12])
	require.NoError(t, err)
	assert.Equal(t, first.RunID, run.ID)

	latest, err := q.Run("")
	require.NoError(t, err)
	assert.Equal(t, second.RunID, latest.ID)

	_, err = q.Run("zzzz")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestQuery_Findings(t *testing.T) {
	q, e := newTestQueryBuilder(t)
	report, err := e.Analyze(context.Background(), linkageInput(t))
	require.NoError(t, err)

	all, err := q.Findings(report.RunID, FindingFilter{})
	require.NoError(t, err)
	want := report.Findings()
	require.Len(t, all, len(want))
	for i := range want {
		assert.Equal(t, want[i].Kind, all[i].Kind)
		assert.Equal(t, want[i].Text, all[i].Text)
		assert.Equal(t, want[i].Archive, all[i].Archive)
	}

	byKind, err := q.Findings(report.RunID, FindingFilter{Kinds: []string{"class-not-found"}})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, "Class not found: c.C (package not found)", byKind[0].Text)

	byArchive, err := q.Findings(report.RunID, FindingFilter{Archive: "a.jar", Kinds: []string{"class-not-accessible"}})
	require.NoError(t, err)
	require.Len(t, byArchive, 1)
	assert.Equal(t, "Class is not accessible: class b.B", byArchive[0].Text)

	none, err := q.Findings(report.RunID, FindingFilter{Archive: "b.jar"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQuery_KindCounts(t *testing.T) {
	q, e := newTestQueryBuilder(t)
	_, err := e.Analyze(context.Background(), linkageInput(t))
	require.NoError(t, err)

	counts, err := q.KindCounts("")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"class-not-accessible": 1, "class-not-found": 1}, counts)
}

func TestQuery_Diff(t *testing.T) {
	q, e := newTestQueryBuilder(t)
	base, err := e.Analyze(context.Background(), linkageInput(t))
	require.NoError(t, err)
	head, err := e.Analyze(context.Background(), fixedInput(t))
	require.NoError(t, err)

	d, err := q.Diff(base.RunID, "")
	require.NoError(t, err)
	assert.Equal(t, base.RunID, d.Base)
	assert.Equal(t, head.RunID, d.Head)
	require.Len(t, d.Added, 1)
	assert.Equal(t, "Class not found: d.D (package not found)", d.Added[0].Text)
	require.Len(t, d.Fixed, 1)
	assert.Equal(t, "Class not found: c.C (package not found)", d.Fixed[0].Text)

	same, err := q.Diff(base.RunID, base.RunID)
	require.NoError(t, err)
	assert.Empty(t, same.Added)
	assert.Empty(t, same.Fixed)
}

func TestQuery_DeleteRun(t *testing.T) {
	q, e := newTestQueryBuilder(t)
	report, err := e.Analyze(context.Background(), linkageInput(t))
	require.NoError(t, err)

	_, err = q.DeleteRun("")
	require.Error(t, err)

	run, err := q.DeleteRun(report.RunID[:8])
	require.NoError(t, err)
	assert.Equal(t, report.RunID, run.ID)

	_, err = q.Run(report.RunID)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSubtract_Multiset(t *testing.T) {
	f := Finding{Archive: "a.jar", Headline: "a.A", Kind: "class-not-found", Text: "x"}
	g := Finding{Archive: "a.jar", Headline: "a.A", Kind: "class-not-found", Text: "y"}

	assert.Equal(t, []Finding{f}, subtract([]Finding{f, f, g}, []Finding{f, g}))
	assert.Nil(t, subtract([]Finding{f}, []Finding{f, f}))
}
