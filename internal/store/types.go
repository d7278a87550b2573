package store

import "time"

// Run is one analysis of a classpath.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Strategy   string
	Release    int
	Options    []string // enabled option names, e.g. "ignore-missing-annotations"
	ReportHash string
	Archives   int
	Issues     int
}

// Finding is one issue of a run. Headline is the block it belongs to: a
// class name or a manifest entry. Seq orders findings within the run.
type Finding struct {
	ID       int64
	RunID    string
	Seq      int
	Archive  string
	Headline string
	Kind     string
	Text     string
	Notes    []string
}

// Duplicate is a class defined by more than one archive. Shadowed marks a
// class of the analyzed classpath that a parent source also defines.
type Duplicate struct {
	ID       int64
	RunID    string
	Class    string
	Archives []string
	Shadowed bool
}
