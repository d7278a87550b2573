package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// formatRunsText formats runs as aligned columns.
func formatRunsText(w io.Writer, runs []CLIRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTRATEGY\tRELEASE\tARCHIVES\tISSUES\tOPTIONS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(r.ID), r.CreatedAt.Format("2006-01-02 15:04:05"), r.Strategy,
			r.Release, r.Archives, r.Issues, strings.Join(r.Options, ","))
	}
	tw.Flush()
}

// formatFindingsText prints findings grouped like the report: one section
// per archive, one block per headline.
func formatFindingsText(w io.Writer, findings []CLIFinding) {
	archive, headline := "", ""
	for i, f := range findings {
		if f.Archive != archive {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "[%s]\n", f.Archive)
			archive, headline = f.Archive, ""
		}
		if f.Headline != headline {
			if headline != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, f.Headline)
			headline = f.Headline
		}
		fmt.Fprintf(w, "• %s\n", f.Text)
		for _, n := range f.Notes {
			fmt.Fprintln(w, n)
		}
	}
}

// formatDiffText prints added findings prefixed with "+" and fixed findings
// prefixed with "-".
func formatDiffText(w io.Writer, d CLIDiff) {
	fmt.Fprintf(w, "base %s, head %s\n", shortID(d.Base), shortID(d.Head))
	for _, f := range d.Added {
		fmt.Fprintf(w, "+ [%s] %s: %s\n", f.Archive, f.Headline, f.Text)
	}
	for _, f := range d.Fixed {
		fmt.Fprintf(w, "- [%s] %s: %s\n", f.Archive, f.Headline, f.Text)
	}
}

// formatKindCountsText prints one "kind count" line per kind, by kind.
func formatKindCountsText(w io.Writer, counts map[string]int) {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range kinds {
		fmt.Fprintf(tw, "%s\t%d\n", k, counts[k])
	}
	tw.Flush()
}

// outputResultText dispatches to the text formatter for the result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIRun:
		formatRunsText(w, v)
	case CLIRun:
		fmt.Fprintf(w, "Deleted run %s\n", v.ID)
	case []CLIFinding:
		formatFindingsText(w, v)
	case map[string]int:
		formatKindCountsText(w, v)
	case CLIDiff:
		formatDiffText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputResult writes a result in the selected format.
func (a *app) outputResult(cmd *cobra.Command, result CLIResult) error {
	if a.format() == "text" {
		return outputResultText(out(cmd), result)
	}
	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as
// a CLIResult envelope; in text mode it goes to stderr.
func (a *app) outputError(cmd *cobra.Command, command string, err error) error {
	a.errorHandled = true
	if a.format() != "json" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the format setting is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// shortID abbreviates a run ID for tables; any unique prefix is accepted
// back as a run argument.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
