package jarlink

import (
	"fmt"
	"strings"
)

// Report is the result of one analysis. Rows follow archive order; blocks
// within a row put manifest entries first, then classes by name; issues
// within a block follow reference declaration order.
type Report struct {
	RunID      string
	Strategy   string
	Release    int
	Archives   int
	Rows       []Row
	Duplicates []Duplicate
	Shadowed   []Shadow
}

// Row holds the issues of one analyzed archive. Archives without issues
// have no row.
type Row struct {
	Archive string
	Blocks  []Block
}

// Duplicate is a class defined by more than one analyzed archive.
type Duplicate struct {
	Class    string   `json:"class"`
	Archives []string `json:"archives"`
}

// Shadow is an analyzed class that a provided or runtime archive also
// defines.
type Shadow struct {
	Class    string `json:"class"`
	Archive  string `json:"archive"`
	Source   string `json:"source"`
	Shadowed string `json:"shadowed"`
}

// Finding is one issue flattened with its location, in report order.
type Finding struct {
	Archive  string   `json:"archive"`
	Headline string   `json:"headline"`
	Kind     string   `json:"kind"`
	Text     string   `json:"text"`
	Notes    []string `json:"notes,omitempty"`
}

// Pair is an (archive, formatted issues) row for table renderers.
type Pair struct {
	Archive string
	Text    string
}

// Text renders the row's blocks separated by blank lines.
func (r *Row) Text() string {
	parts := make([]string, len(r.Blocks))
	for i, b := range r.Blocks {
		parts[i] = b.Text()
	}
	return strings.Join(parts, "\n\n")
}

// IssueCount returns the number of issues in the row.
func (r *Row) IssueCount() int {
	n := 0
	for _, b := range r.Blocks {
		n += len(b.Issues)
	}
	return n
}

// Pairs returns one (archive, text) pair per row.
func (r *Report) Pairs() []Pair {
	pairs := make([]Pair, len(r.Rows))
	for i := range r.Rows {
		pairs[i] = Pair{Archive: r.Rows[i].Archive, Text: r.Rows[i].Text()}
	}
	return pairs
}

// Row returns the row for an archive, or nil if it has no issues.
func (r *Report) Row(archive string) *Row {
	for i := range r.Rows {
		if r.Rows[i].Archive == archive {
			return &r.Rows[i]
		}
	}
	return nil
}

// IssueCount returns the number of issues across all rows.
func (r *Report) IssueCount() int {
	n := 0
	for i := range r.Rows {
		n += r.Rows[i].IssueCount()
	}
	return n
}

// Findings flattens the report in order.
func (r *Report) Findings() []Finding {
	var out []Finding
	for _, row := range r.Rows {
		for _, b := range row.Blocks {
			for _, is := range b.Issues {
				out = append(out, Finding{
					Archive:  row.Archive,
					Headline: b.Headline,
					Kind:     is.Kind.String(),
					Text:     is.Text(),
					Notes:    is.Notes,
				})
			}
		}
	}
	return out
}

// Text renders the whole report: one section per row headed by the
// archive name in brackets, followed by duplicate and shadowed classes.
// An empty report renders as "".
func (r *Report) Text() string {
	var sections []string
	for i := range r.Rows {
		sections = append(sections, "["+r.Rows[i].Archive+"]\n"+r.Rows[i].Text())
	}
	if len(r.Duplicates) > 0 {
		var sb strings.Builder
		sb.WriteString("[duplicate classes]")
		for _, d := range r.Duplicates {
			fmt.Fprintf(&sb, "\n%s: %s", d.Class, strings.Join(d.Archives, ", "))
		}
		sections = append(sections, sb.String())
	}
	if len(r.Shadowed) > 0 {
		var sb strings.Builder
		sb.WriteString("[shadowed classes]")
		for _, s := range r.Shadowed {
			fmt.Fprintf(&sb, "\n%s: %s shadows %s (%s)", s.Class, s.Archive, s.Shadowed, s.Source)
		}
		sections = append(sections, sb.String())
	}
	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n\n") + "\n"
}
