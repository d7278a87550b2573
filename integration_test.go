package jarlink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	jarlinkrt "github.com/jward/jarlink/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findModuleRoot walks up from cwd to find go.mod, returning the repo root.
func findModuleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find module root")
		}
		dir = parent
	}
}

// writeSnapshot writes a snapshot to a temp dir and returns the path.
func writeSnapshot(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

const shadedSnapshot = `
options:
  release: 11
runtime:
  - file: rt.jar
    classes:
      - {name: java.lang.Object, access: [public]}
classpath:
  - file: service.jar
    classes:
      - name: com.example.Service
        access: [public]
        refs:
          - annotation: javax.annotation.Nullable
          - annotation: com.example.Audited
          - class: com.example.Repository
      - name: com.example.shaded.guava.Lists
        access: [public]
        refs:
          - class: com.google.errorprone.annotations.CanIgnoreReturnValue
`

// TestIntegration_FilterScriptsAndStore runs the full pipeline: snapshot
// file, analysis, a shipped filter script, and persistence.
func TestIntegration_FilterScriptsAndStore(t *testing.T) {
	in, opts, err := LoadInput(writeSnapshot(t, shadedSnapshot))
	require.NoError(t, err)

	filters := filepath.Join(findModuleRoot(t), "scripts", "filters")
	shaded, err := jarlinkrt.LoadFilter(filepath.Join(filters, "shaded.risor"))
	require.NoError(t, err)

	s, err := OpenStore(filepath.Join(t.TempDir(), "jarlink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	e := New(append(opts, WithFilter(shaded), WithStore(s))...)
	report, err := e.Analyze(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "[service.jar]\n"+
		"com.example.Service\n"+
		"• Annotation not found: javax.annotation.Nullable (package not found)\n"+
		"• Annotation not found: com.example.Audited (package found)\n"+
		"• Class not found: com.example.Repository (package found)\n", report.Text())

	run, err := s.RunByID(report.RunID[:8])
	require.NoError(t, err)
	assert.Equal(t, 11, run.Release)
	assert.Equal(t, []string{"filter=" + filepath.Join(filters, "shaded.risor")}, run.Options)
	assert.Equal(t, 3, run.Issues)

	counts, err := s.KindCounts(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"annotation-not-found": 2, "class-not-found": 1}, counts)
}

func TestIntegration_OptionalAnnotationsFilter(t *testing.T) {
	in, opts, err := LoadInput(writeSnapshot(t, shadedSnapshot))
	require.NoError(t, err)

	filters := filepath.Join(findModuleRoot(t), "scripts", "filters")
	f, err := jarlinkrt.LoadFilter(filepath.Join(filters, "optional-annotations.risor"))
	require.NoError(t, err)

	report, err := New(append(opts, WithFilter(f))...).Analyze(context.Background(), in)
	require.NoError(t, err)

	findings := report.Findings()
	require.Len(t, findings, 3)
	assert.Equal(t, "Annotation not found: com.example.Audited (package found)", findings[0].Text)
	assert.Equal(t, "com.example.shaded.guava.Lists", findings[2].Headline)
	assert.Equal(t, "Class not found: com.google.errorprone.annotations.CanIgnoreReturnValue (package not found)", findings[2].Text)
}

func TestIntegration_IgnoreMissingAnnotations(t *testing.T) {
	in, opts, err := LoadInput(writeSnapshot(t, shadedSnapshot))
	require.NoError(t, err)

	report, err := New(append(opts, WithIgnoreMissingAnnotations(true))...).Analyze(context.Background(), in)
	require.NoError(t, err)
	for _, f := range report.Findings() {
		assert.NotEqual(t, "annotation-not-found", f.Kind)
	}
	assert.Equal(t, 2, report.IssueCount())
}
