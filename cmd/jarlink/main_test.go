package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	linkageSnapshot     = filepath.Join("..", "..", "testdata", "golden", "linkage", "input.yaml")
	parentFirstSnapshot = filepath.Join("..", "..", "testdata", "golden", "parent-first", "input.yaml")
)

const linkageText = "[a.jar]\n" +
	"a.A\n" +
	"• Class is not accessible: class b.B\n" +
	"• Class not found: c.C (package not found)\n"

// execute runs the CLI with a fresh command tree and captures its output.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd(&app{})
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func decodeResult[T any](t *testing.T, out string) (string, T) {
	t.Helper()
	var env struct {
		Command string `json:"command"`
		Results T      `json:"results"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	require.Empty(t, env.Error)
	return env.Command, env.Results
}

// =============================================================================
// Helpers
// =============================================================================

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	assert.Equal(t, root, findRepoRoot(root))
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	deep := filepath.Join(root, "sub", "deep")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	assert.Equal(t, root, findRepoRoot(deep))
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	assert.Equal(t, dir, findRepoRoot(dir))
}

func TestResolveDBPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("/repo", ".jarlink", "runs.db"), resolveDBPath("", "/repo"))
	assert.Equal(t, filepath.Join("/repo", "out", "x.db"), resolveDBPath(filepath.Join("out", "x.db"), "/repo"))
	assert.Equal(t, "/abs/x.db", resolveDBPath("/abs/x.db", "/repo"))
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.ErrorContains(t, validateFormat("xml"), `invalid format "xml"`)
}

// =============================================================================
// check
// =============================================================================

func TestCheck_Text(t *testing.T) {
	t.Parallel()
	stdout, _, err := execute(t, "check", linkageSnapshot)
	require.NoError(t, err)
	assert.Equal(t, linkageText, stdout)
}

func TestCheck_Serial(t *testing.T) {
	t.Parallel()
	stdout, _, err := execute(t, "check", "--serial", "--workers", "2", linkageSnapshot)
	require.NoError(t, err)
	assert.Equal(t, linkageText, stdout)
}

func TestCheck_JSON(t *testing.T) {
	t.Parallel()
	stdout, _, err := execute(t, "check", "--format", "json", linkageSnapshot)
	require.NoError(t, err)

	command, report := decodeResult[CLIReport](t, stdout)
	assert.Equal(t, "check", command)
	assert.Equal(t, "parent-last", report.Strategy)
	assert.Equal(t, 2, report.Archives)
	assert.Equal(t, 2, report.Issues)
	require.Len(t, report.Findings, 2)
	assert.Equal(t, "class-not-accessible", report.Findings[0].Kind)
	assert.Equal(t, "a.A", report.Findings[0].Headline)
	assert.Empty(t, report.RunID)
}

func TestCheck_FlagOverridesSnapshot(t *testing.T) {
	t.Parallel()
	stdout, _, err := execute(t, "check", "--format", "json", parentFirstSnapshot)
	require.NoError(t, err)
	_, report := decodeResult[CLIReport](t, stdout)
	assert.Equal(t, "parent-first", report.Strategy)
	assert.Equal(t, 2, report.Issues)

	stdout, _, err = execute(t, "check", "--format", "json", "--strategy", "parent-last", parentFirstSnapshot)
	require.NoError(t, err)
	_, report = decodeResult[CLIReport](t, stdout)
	assert.Equal(t, "parent-last", report.Strategy)
	assert.Zero(t, report.Issues)
	assert.Len(t, report.Duplicates, 1)
	assert.Len(t, report.Shadowed, 1)
}

func TestCheck_InvalidStrategy(t *testing.T) {
	t.Parallel()
	_, stderr, err := execute(t, "check", "--strategy", "sideways", linkageSnapshot)
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown strategy")
}

func TestCheck_Filter(t *testing.T) {
	t.Parallel()
	script := filepath.Join(t.TempDir(), "filter.risor")
	require.NoError(t, os.WriteFile(script, []byte(`issue["kind"] != "class-not-found"`), 0o644))

	stdout, _, err := execute(t, "check", "--filter", script, linkageSnapshot)
	require.NoError(t, err)
	assert.Equal(t, "[a.jar]\na.A\n• Class is not accessible: class b.B\n", stdout)
}

func TestCheck_MissingSnapshot(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, stderr, err := execute(t, "check", missing)
	require.Error(t, err)
	assert.Contains(t, stderr, "Error: ")

	stdout, _, err := execute(t, "check", "--format", "json", missing)
	require.Error(t, err)
	var env CLIResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, "check", env.Command)
	assert.Contains(t, env.Error, "nope.yaml")
}

func TestCheck_InvalidFormat(t *testing.T) {
	t.Parallel()
	_, _, err := execute(t, "check", "--format", "xml", linkageSnapshot)
	assert.ErrorContains(t, err, "invalid format")
}

func TestCheck_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	_, _, err := execute(t, "check", "--log-level", "loud", linkageSnapshot)
	assert.ErrorContains(t, err, "unknown level")
}

func TestCheck_DebugLogging(t *testing.T) {
	t.Parallel()
	_, stderr, err := execute(t, "check", "--log-level", "debug", linkageSnapshot)
	require.NoError(t, err)
	assert.Contains(t, stderr, "[debug] archive checked | archive=a.jar")
	assert.Contains(t, stderr, "[info] checked snapshot")
}

// =============================================================================
// Configuration layers
// =============================================================================

func TestCheck_EnvFormat(t *testing.T) {
	t.Setenv("JARLINK_FORMAT", "json")
	t.Setenv("JARLINK_IGNORE_MISSING_ANNOTATIONS", "true")

	stdout, _, err := execute(t, "check", linkageSnapshot)
	require.NoError(t, err)
	_, report := decodeResult[CLIReport](t, stdout)
	assert.Equal(t, 2, report.Issues)

	// flags win over the environment
	stdout, _, err = execute(t, "check", "--format", "text", linkageSnapshot)
	require.NoError(t, err)
	assert.Equal(t, linkageText, stdout)
}

func TestCheck_ConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	config := filepath.Join(dir, "jarlink.yaml")
	require.NoError(t, os.WriteFile(config, []byte("format: json\nstrategy: parent-last\n"), 0o644))

	stdout, _, err := execute(t, "check", "--config", config, parentFirstSnapshot)
	require.NoError(t, err)
	_, report := decodeResult[CLIReport](t, stdout)
	assert.Equal(t, "parent-last", report.Strategy)
}

func TestCheck_ConfigFileMissing(t *testing.T) {
	t.Parallel()
	_, _, err := execute(t, "check", "--config", filepath.Join(t.TempDir(), "none.yaml"), linkageSnapshot)
	assert.ErrorContains(t, err, "reading config")
}

// =============================================================================
// Stored runs
// =============================================================================

func TestSaveRunsFindings(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "sub", "runs.db")

	stdout, stderr, err := execute(t, "check", "--save", "--db", db, linkageSnapshot)
	require.NoError(t, err)
	assert.Equal(t, linkageText, stdout)
	assert.Contains(t, stderr, "Saved run ")

	stdout, _, err = execute(t, "runs", "--db", db, "--format", "json")
	require.NoError(t, err)
	_, runs := decodeResult[[]CLIRun](t, stdout)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Issues)
	assert.Equal(t, 2, runs[0].Archives)
	runID := runs[0].ID

	stdout, _, err = execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "STRATEGY")
	assert.Contains(t, stdout, shortID(runID))

	stdout, _, err = execute(t, "findings", "--db", db, "--format", "json", "--kind", "class-not-found")
	require.NoError(t, err)
	_, findings := decodeResult[[]CLIFinding](t, stdout)
	require.Len(t, findings, 1)
	assert.Equal(t, "Class not found: c.C (package not found)", findings[0].Text)
	assert.Equal(t, "a.A", findings[0].Headline)

	stdout, _, err = execute(t, "findings", "--db", db, runID[:8])
	require.NoError(t, err)
	assert.Equal(t, linkageText, stdout)

	stdout, _, err = execute(t, "findings", "--db", db, "--archive", "b.jar")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	stdout, _, err = execute(t, "findings", "--db", db, "--counts")
	require.NoError(t, err)
	assert.Contains(t, stdout, "class-not-accessible")
	assert.Contains(t, stdout, "class-not-found")

	stdout, _, err = execute(t, "runs", "rm", "--db", db, runID)
	require.NoError(t, err)
	assert.Equal(t, "Deleted run "+runID+"\n", stdout)

	stdout, _, err = execute(t, "runs", "--db", db, "--format", "json")
	require.NoError(t, err)
	_, runs = decodeResult[[]CLIRun](t, stdout)
	assert.Empty(t, runs)

	_, _, err = execute(t, "findings", "--db", db)
	assert.ErrorContains(t, err, "no stored runs")
}

func TestRuns_NoDatabase(t *testing.T) {
	t.Parallel()
	_, _, err := execute(t, "runs", "--db", filepath.Join(t.TempDir(), "none.db"))
	assert.ErrorContains(t, err, "database not found")
}

func TestFindings_UnknownRun(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "runs.db")
	_, _, err := execute(t, "check", "--save", "--db", db, linkageSnapshot)
	require.NoError(t, err)

	_, _, err = execute(t, "findings", "--db", db, "zzzz")
	assert.ErrorContains(t, err, "run not found")
}

func TestDiff(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")

	_, _, err := execute(t, "check", "--save", "--db", db, linkageSnapshot)
	require.NoError(t, err)
	stdout, _, err := execute(t, "runs", "--db", db, "--format", "json")
	require.NoError(t, err)
	_, runs := decodeResult[[]CLIRun](t, stdout)
	require.Len(t, runs, 1)
	base := runs[0].ID

	script := filepath.Join(dir, "filter.risor")
	require.NoError(t, os.WriteFile(script, []byte(`issue["kind"] != "class-not-found"`), 0o644))
	_, _, err = execute(t, "check", "--save", "--db", db, "--filter", script, linkageSnapshot)
	require.NoError(t, err)

	stdout, _, err = execute(t, "diff", "--db", db, "--format", "json", base)
	require.NoError(t, err)
	command, d := decodeResult[CLIDiff](t, stdout)
	assert.Equal(t, "diff", command)
	assert.Equal(t, base, d.Base)
	assert.NotEqual(t, base, d.Head)
	assert.Empty(t, d.Added)
	require.Len(t, d.Fixed, 1)
	assert.Equal(t, "class-not-found", d.Fixed[0].Kind)

	stdout, _, err = execute(t, "diff", "--db", db, base)
	require.NoError(t, err)
	assert.Contains(t, stdout, "- [a.jar] a.A: Class not found: c.C (package not found)\n")
}

func TestDiff_UnknownRun(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "runs.db")
	_, _, err := execute(t, "check", "--save", "--db", db, linkageSnapshot)
	require.NoError(t, err)

	_, _, err = execute(t, "diff", "--db", db, "zzzz")
	assert.ErrorContains(t, err, "run not found")
}

func TestCheck_BaselineFilter(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "runs.db")
	baseline := filepath.Join("..", "..", "scripts", "filters", "baseline.risor")

	_, _, err := execute(t, "check", "--save", "--db", db, linkageSnapshot)
	require.NoError(t, err)

	stdout, _, err := execute(t, "check", "--db", db, "--filter", baseline, linkageSnapshot)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	// known is undefined without a database
	stdout, _, err = execute(t, "check", "--db", filepath.Join(t.TempDir(), "none.db"), "--filter", baseline, linkageSnapshot)
	require.Error(t, err)
	assert.Empty(t, stdout)
}
