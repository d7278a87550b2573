package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jward/jarlink"
	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRuns(cmd)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <run>",
		Short: "Delete a stored run and its findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRunsRm(cmd, args[0])
		},
	})
	return cmd
}

func newFindingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findings [run]",
		Short: "Show the findings of a stored run (default: the latest)",
		Long:  "Shows the findings of a stored run. The run may be given by a unique prefix of its ID.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := ""
			if len(args) > 0 {
				run = args[0]
			}
			return a.runFindings(cmd, run)
		},
	}
	cmd.Flags().StringSlice("kind", nil, "only these issue kinds (repeatable)")
	cmd.Flags().String("archive", "", "only findings of this archive")
	cmd.Flags().Bool("counts", false, "print the number of findings per kind instead")
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <base> [head]",
		Short: "Compare the findings of two stored runs",
		Long:  "Lists findings added and fixed between two stored runs. Head defaults to the latest run.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			head := ""
			if len(args) > 1 {
				head = args[1]
			}
			return a.runDiff(cmd, args[0], head)
		},
	}
}

// openQuery opens the database of earlier `check --save` runs.
func (a *app) openQuery() (*jarlink.QueryBuilder, func(), error) {
	dbPath, err := a.dbPath()
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("database not found: %s (run 'jarlink check --save' first)", dbPath)
	}
	s, err := jarlink.OpenStore(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return jarlink.NewQuery(s), func() { s.Close() }, nil
}

func (a *app) runRuns(cmd *cobra.Command) error {
	q, done, err := a.openQuery()
	if err != nil {
		return a.outputError(cmd, "runs", err)
	}
	defer done()

	runs, err := q.Runs()
	if err != nil {
		return a.outputError(cmd, "runs", err)
	}
	results := make([]CLIRun, len(runs))
	for i, r := range runs {
		results[i] = toCLIRun(r)
	}
	return a.outputResult(cmd, CLIResult{Command: "runs", Results: results})
}

func (a *app) runRunsRm(cmd *cobra.Command, id string) error {
	q, done, err := a.openQuery()
	if err != nil {
		return a.outputError(cmd, "runs rm", err)
	}
	defer done()

	run, err := q.DeleteRun(id)
	if err != nil {
		return a.outputError(cmd, "runs rm", err)
	}
	a.logger.Info("run deleted", "run", run.ID)
	return a.outputResult(cmd, CLIResult{Command: "runs rm", Results: toCLIRun(*run)})
}

func (a *app) runFindings(cmd *cobra.Command, id string) error {
	q, done, err := a.openQuery()
	if err != nil {
		return a.outputError(cmd, "findings", err)
	}
	defer done()

	run, err := q.Run(id)
	if errors.Is(err, jarlink.ErrRunNotFound) && id == "" {
		err = errNoRuns
	}
	if err != nil {
		return a.outputError(cmd, "findings", err)
	}

	if a.cfg.GetBool("counts") {
		counts, err := q.KindCounts(run.ID)
		if err != nil {
			return a.outputError(cmd, "findings", err)
		}
		return a.outputResult(cmd, CLIResult{Command: "findings", Results: counts})
	}

	findings, err := q.Findings(run.ID, jarlink.FindingFilter{
		Kinds:   a.cfg.GetStringSlice("kind"),
		Archive: a.cfg.GetString("archive"),
	})
	if err != nil {
		return a.outputError(cmd, "findings", err)
	}
	return a.outputResult(cmd, CLIResult{Command: "findings", Results: toCLIFindings(findings)})
}

func (a *app) runDiff(cmd *cobra.Command, base, head string) error {
	q, done, err := a.openQuery()
	if err != nil {
		return a.outputError(cmd, "diff", err)
	}
	defer done()

	d, err := q.Diff(base, head)
	if errors.Is(err, jarlink.ErrRunNotFound) && head == "" {
		if _, lerr := q.Run(""); lerr != nil {
			err = errNoRuns
		}
	}
	if err != nil {
		return a.outputError(cmd, "diff", err)
	}
	a.logger.Debug("runs compared", "base", d.Base, "head", d.Head, "added", len(d.Added), "fixed", len(d.Fixed))
	return a.outputResult(cmd, CLIResult{Command: "diff", Results: CLIDiff{
		Base:  d.Base,
		Head:  d.Head,
		Added: toCLIFindings(d.Added),
		Fixed: toCLIFindings(d.Fixed),
	}})
}

var errNoRuns = errors.New("no stored runs (run 'jarlink check --save' first)")
