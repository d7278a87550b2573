package main

import (
	"time"

	"github.com/jward/jarlink"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIReport is the JSON form of an analysis report.
type CLIReport struct {
	RunID      string              `json:"run_id,omitempty"`
	Strategy   string              `json:"strategy"`
	Release    int                 `json:"release"`
	Archives   int                 `json:"archives"`
	Issues     int                 `json:"issues"`
	Findings   []jarlink.Finding   `json:"findings"`
	Duplicates []jarlink.Duplicate `json:"duplicates,omitempty"`
	Shadowed   []jarlink.Shadow    `json:"shadowed,omitempty"`
}

// CLIRun is a JSON-friendly stored run.
type CLIRun struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Strategy   string    `json:"strategy"`
	Release    int       `json:"release"`
	Options    []string  `json:"options,omitempty"`
	Archives   int       `json:"archives"`
	Issues     int       `json:"issues"`
	ReportHash string    `json:"report_hash,omitempty"`
}

// CLIFinding is a JSON-friendly stored finding.
type CLIFinding struct {
	Archive  string   `json:"archive"`
	Headline string   `json:"headline"`
	Kind     string   `json:"kind"`
	Text     string   `json:"text"`
	Notes    []string `json:"notes,omitempty"`
}

func toCLIReport(r *jarlink.Report) CLIReport {
	findings := r.Findings()
	if findings == nil {
		findings = []jarlink.Finding{}
	}
	return CLIReport{
		RunID:      r.RunID,
		Strategy:   r.Strategy,
		Release:    r.Release,
		Archives:   r.Archives,
		Issues:     r.IssueCount(),
		Findings:   findings,
		Duplicates: r.Duplicates,
		Shadowed:   r.Shadowed,
	}
}

// CLIDiff is the JSON form of a comparison between two runs.
type CLIDiff struct {
	Base  string       `json:"base"`
	Head  string       `json:"head"`
	Added []CLIFinding `json:"added"`
	Fixed []CLIFinding `json:"fixed"`
}

func toCLIRun(r jarlink.RunSummary) CLIRun {
	return CLIRun{
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

func toCLIFindings(findings []jarlink.Finding) []CLIFinding {
	out := make([]CLIFinding, len(findings))
	for i, f := range findings {
		out[i] = toCLIFinding(f)
	}
	return out
}

func toCLIFinding(f jarlink.Finding) CLIFinding {
	return CLIFinding{
		Archive:  f.Archive,
		Headline: f.Headline,
		Kind:     f.Kind,
		Text:     f.Text,
		Notes:    f.Notes,
	}
}
