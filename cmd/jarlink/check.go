package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jward/jarlink"
	jarlinkrt "github.com/jward/jarlink/internal/runtime"
	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <snapshot>",
		Short: "Check a classpath snapshot for binary compatibility issues",
		Long: "Loads a classpath snapshot (YAML or JSON), checks every class of the analyzed archives " +
			"against the classpath, provided, and runtime archives, and prints the report. " +
			"Settings recorded in the snapshot apply unless overridden by flags, environment, or config.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args[0])
		},
	}
	cmd.Flags().String("strategy", "", "class loading strategy: parent-first|parent-last")
	cmd.Flags().Int("release", 0, "target Java release for multi-release archives (0: every release)")
	cmd.Flags().Bool("ignore-missing-annotations", false, "do not report missing annotation classes")
	cmd.Flags().Bool("report-owner-class-not-found", false, "report member references whose owner class is missing")
	cmd.Flags().String("filter", "", "Risor script deciding which issues to keep")
	cmd.Flags().Int("workers", 0, "parallel workers (0: number of CPUs)")
	cmd.Flags().Bool("serial", false, "check classes on a single goroutine")
	cmd.Flags().Bool("save", false, "store the report in the database")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, snapshotPath string) error {
	start := time.Now()

	in, opts, err := jarlink.LoadInput(snapshotPath)
	if err != nil {
		return a.outputError(cmd, "check", err)
	}
	s, err := a.checkStore()
	if err != nil {
		return a.outputError(cmd, "check", err)
	}
	if s != nil {
		defer s.Close()
	}
	more, err := a.checkOptions(s)
	if err != nil {
		return a.outputError(cmd, "check", err)
	}
	opts = append(opts, more...)

	report, err := jarlink.New(opts...).Analyze(cmd.Context(), in)
	if err != nil {
		return a.outputError(cmd, "check", err)
	}
	a.logger.Info("checked snapshot",
		"snapshot", snapshotPath,
		"issues", report.IssueCount(),
		"took", time.Since(start).Round(time.Millisecond))

	if a.format() == "text" {
		fmt.Fprint(out(cmd), report.Text())
		if report.RunID != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s\n", report.RunID)
		}
		return nil
	}
	return a.outputResult(cmd, CLIResult{Command: "check", Results: toCLIReport(report)})
}

// checkStore opens the run database when the report is saved, or when a
// filter script may consult earlier runs. It returns nil otherwise.
func (a *app) checkStore() (*jarlink.Store, error) {
	save := a.cfg.GetBool("save")
	if !save && a.cfg.GetString("filter") == "" {
		return nil, nil
	}
	dbPath, err := a.dbPath()
	if err != nil {
		return nil, err
	}
	if !save {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	return jarlink.OpenStore(dbPath)
}

// checkOptions turns explicitly set configuration into engine options. Keys
// left unset keep the snapshot's settings. s may be nil.
func (a *app) checkOptions(s *jarlink.Store) ([]jarlink.Option, error) {
	opts := []jarlink.Option{jarlink.WithLogger(a.logger)}
	if s != nil && a.cfg.GetBool("save") {
		opts = append(opts, jarlink.WithStore(s))
	}
	if a.cfg.IsSet("strategy") {
		s, err := jarlink.ParseStrategy(a.cfg.GetString("strategy"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, jarlink.WithStrategy(s))
	}
	if a.cfg.IsSet("release") {
		release := a.cfg.GetInt("release")
		if release < 0 {
			return nil, fmt.Errorf("invalid release %d: must be non-negative", release)
		}
		opts = append(opts, jarlink.WithTargetRelease(release))
	}
	if a.cfg.IsSet("ignore-missing-annotations") {
		opts = append(opts, jarlink.WithIgnoreMissingAnnotations(a.cfg.GetBool("ignore-missing-annotations")))
	}
	if a.cfg.IsSet("report-owner-class-not-found") {
		opts = append(opts, jarlink.WithReportOwnerClassNotFound(a.cfg.GetBool("report-owner-class-not-found")))
	}
	if workers := a.cfg.GetInt("workers"); workers > 0 {
		opts = append(opts, jarlink.WithWorkers(workers))
	}
	if a.cfg.GetBool("serial") {
		opts = append(opts, jarlink.WithParallel(false))
	}
	if path := a.cfg.GetString("filter"); path != "" {
		filterOpts := []jarlinkrt.FilterOption{jarlinkrt.WithLogger(a.logger)}
		if s != nil {
			filterOpts = append(filterOpts, jarlinkrt.WithStore(s))
		}
		f, err := jarlinkrt.LoadFilter(path, filterOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, jarlink.WithFilter(f))
	}
	return opts, nil
}
