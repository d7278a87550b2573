package jarlink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGolden walks testdata/golden/{case}/ directories. Each case holds a
// classpath snapshot (input.yaml) and the expected report text
// (expected.txt). Every case runs both serially and in parallel.
func TestGolden(t *testing.T) {
	root := filepath.Join("testdata", "golden")
	cases, err := os.ReadDir(root)
	if err != nil {
		t.Skip("no golden testdata found")
	}

	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		dir := filepath.Join(root, c.Name())
		inputPath := filepath.Join(dir, "input.yaml")
		expectedPath := filepath.Join(dir, "expected.txt")
		if _, err := os.Stat(inputPath); err != nil {
			continue
		}

		t.Run(c.Name(), func(t *testing.T) {
			expected, err := os.ReadFile(expectedPath)
			require.NoError(t, err)

			for _, parallel := range []bool{false, true} {
				runGoldenTest(t, inputPath, string(expected), parallel)
			}
		})
	}
}

func runGoldenTest(t *testing.T, inputPath, expected string, parallel bool) {
	t.Helper()

	in, opts, err := LoadInput(inputPath)
	require.NoError(t, err)

	report, err := New(append(opts, WithParallel(parallel))...).Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, expected, report.Text(), "parallel=%v", parallel)
}

func TestLoadInput_Missing(t *testing.T) {
	_, _, err := LoadInput(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInput_BadStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte("options:\n  strategy: sideways\n"), 0o644))

	_, _, err := LoadInput(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot options")
}

func TestLoadInput_CallerOptionsOverride(t *testing.T) {
	in, opts, err := LoadInput(filepath.Join("testdata", "golden", "parent-first", "input.yaml"))
	require.NoError(t, err)
	require.Len(t, opts, 1)

	e := New(append(opts, WithStrategy(ParentLast))...)
	report, err := e.Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "parent-last", report.Strategy)
	assert.Nil(t, report.Row("web.jar"))
}
