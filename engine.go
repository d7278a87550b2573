package jarlink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jward/jarlink/internal/classpath"
	"github.com/jward/jarlink/internal/logging"
	"github.com/jward/jarlink/internal/model"
	"github.com/jward/jarlink/internal/rules"
	jarlinkrt "github.com/jward/jarlink/internal/runtime"
	"github.com/jward/jarlink/internal/store"
)

// Engine runs the binary compatibility analysis: classpath assembly,
// per-class rule checks, issue filtering, and optional persistence.
// An Engine holds no per-run state and may be reused.
type Engine struct {
	strategy classpath.Strategy
	release  int
	checks   rules.Options

	// useParallel enables the worker pool for class checks.
	useParallel bool
	workers     int

	logger *slog.Logger
	filter *jarlinkrt.Filter
	store  *store.Store
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy sets the class loading strategy between the analyzed
// classpath and its parents. Default is parent-last.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		e.strategy = s
	}
}

// WithTargetRelease selects multi-release variants for a Java release and
// enables the version check for versioned entries. 0 means every declared
// release is eligible.
func WithTargetRelease(release int) Option {
	return func(e *Engine) {
		e.release = release
	}
}

// WithIgnoreMissingAnnotations drops annotation-not-found issues.
func WithIgnoreMissingAnnotations(ignore bool) Option {
	return func(e *Engine) {
		e.checks.IgnoreMissingAnnotations = ignore
	}
}

// WithReportOwnerClassNotFound reports member references whose owner class
// is missing as member-not-found instead of dropping them.
func WithReportOwnerClassNotFound(report bool) Option {
	return func(e *Engine) {
		e.checks.ReportOwnerClassNotFound = report
	}
}

// WithParallel controls parallel class checks. When true (default), Analyze
// uses a worker pool; results are collected in class order either way.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithWorkers bounds the worker pool. 0 (default) uses runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger sets the logger. Default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFilter applies a Risor filter script to every issue; issues the
// script rejects are left out of the report.
func WithFilter(f *jarlinkrt.Filter) Option {
	return func(e *Engine) {
		e.filter = f
	}
}

// WithStore persists every report as a run. The caller owns s.
func WithStore(s *Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		strategy:    ParentLast,
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewDiscardLogger()
	}
	return e
}

// OpenStore opens (creating if needed) the SQLite database at dbPath and
// migrates it.
func OpenStore(dbPath string) (*Store, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("jarlink: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("jarlink: migrate: %w", err)
	}
	return s, nil
}

// Store returns the store set with WithStore, or nil.
func (e *Engine) Store() *Store {
	return e.store
}

// Input is what the loader produced: the archives under analysis plus the
// archives they are resolved against. Provided archives are resolved
// before Runtime ones; neither is reported on.
type Input struct {
	Archives []*model.Archive
	Provided []*model.Archive
	Runtime  []*model.Archive
}

// Analyze checks every archive of in.Archives and returns the report.
// Linkage problems are report content; errors are only returned for
// invalid input, filter script failures, storage failures, or a cancelled
// context.
func (e *Engine) Analyze(ctx context.Context, in Input) (*Report, error) {
	start := time.Now()

	cp, err := e.assemble(in)
	if err != nil {
		return nil, err
	}
	checker, err := rules.NewChecker(cp, e.checks)
	if err != nil {
		return nil, fmt.Errorf("jarlink: %w", err)
	}

	var rows []Row
	if e.useParallel {
		rows, err = e.checkParallel(ctx, cp, checker)
	} else {
		rows, err = e.checkSerial(ctx, cp, checker)
	}
	if err != nil {
		return nil, err
	}

	if e.filter != nil {
		if rows, err = e.applyFilter(ctx, rows); err != nil {
			return nil, err
		}
	}

	report := &Report{
		Strategy:   e.strategy.String(),
		Release:    e.release,
		Archives:   len(in.Archives),
		Rows:       rows,
		Duplicates: duplicates(cp),
		Shadowed:   shadowed(cp),
	}

	if e.store != nil {
		if err := e.persist(report); err != nil {
			return nil, err
		}
	}

	e.logger.Info("analysis complete",
		"archives", report.Archives,
		"issues", report.IssueCount(),
		"duplicates", len(report.Duplicates),
		"took", time.Since(start).Round(time.Millisecond))
	return report, nil
}

// assemble chains classpath -> provided -> runtime.
func (e *Engine) assemble(in Input) (*classpath.Classpath, error) {
	opts := []classpath.Option{classpath.WithRelease(e.release)}
	rt, err := classpath.Assemble("runtime", in.Runtime, nil, e.strategy, opts...)
	if err != nil {
		return nil, fmt.Errorf("jarlink: %w", err)
	}
	provided, err := classpath.Assemble("provided", in.Provided, rt, e.strategy, opts...)
	if err != nil {
		return nil, fmt.Errorf("jarlink: %w", err)
	}
	cp, err := classpath.Assemble("classpath", in.Archives, provided, e.strategy, opts...)
	if err != nil {
		return nil, fmt.Errorf("jarlink: %w", err)
	}
	e.logger.Debug("classpath assembled",
		"archives", len(in.Archives),
		"provided", len(in.Provided),
		"runtime", len(in.Runtime),
		"strategy", e.strategy.String())
	return cp, nil
}

func (e *Engine) checkSerial(ctx context.Context, cp *classpath.Classpath, checker *rules.Checker) ([]Row, error) {
	rows := make([]Row, 0, len(cp.Archives()))
	for _, a := range cp.Archives() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("jarlink: analyze: %w", err)
		}
		blocks, err := checker.CheckArchive(a)
		if err != nil {
			return nil, fmt.Errorf("jarlink: check %s: %w", a.FileName, err)
		}
		e.logArchive(a, len(cp.Classes(a)), blocks)
		if len(blocks) > 0 {
			rows = append(rows, Row{Archive: a.FileName, Blocks: blocks})
		}
	}
	return rows, nil
}

// applyFilter drops the issues the filter script rejects, and blocks and
// rows left empty.
func (e *Engine) applyFilter(ctx context.Context, rows []Row) ([]Row, error) {
	kept := rows[:0]
	dropped := 0
	for _, row := range rows {
		var blocks []Block
		for _, b := range row.Blocks {
			var issues []Issue
			for _, is := range b.Issues {
				keep, err := e.filter.Keep(ctx, jarlinkrt.Issue{
					Kind:    is.Kind.String(),
					Archive: row.Archive,
					Class:   b.Headline,
					Text:    is.Text(),
					Notes:   is.Notes,
				})
				if err != nil {
					return nil, fmt.Errorf("jarlink: %w", err)
				}
				if keep {
					issues = append(issues, is)
				} else {
					dropped++
				}
			}
			if len(issues) > 0 {
				blocks = append(blocks, Block{Headline: b.Headline, Issues: issues})
			}
		}
		if len(blocks) > 0 {
			kept = append(kept, Row{Archive: row.Archive, Blocks: blocks})
		}
	}
	e.logger.Debug("filter applied", "script", e.filter.Label(), "dropped", dropped)
	return kept, nil
}

func (e *Engine) logArchive(a *model.Archive, classes int, blocks []Block) {
	issues := 0
	for _, b := range blocks {
		issues += len(b.Issues)
	}
	e.logger.Debug("archive checked", "archive", a.FileName, "classes", classes, "issues", issues)
}

func duplicates(cp *classpath.Classpath) []Duplicate {
	var out []Duplicate
	for _, d := range cp.Duplicates() {
		out = append(out, Duplicate{Class: d.ClassName, Archives: d.Archives})
	}
	return out
}

func shadowed(cp *classpath.Classpath) []Shadow {
	var out []Shadow
	for _, s := range cp.Shadowed() {
		out = append(out, Shadow{Class: s.ClassName, Archive: s.Archive, Source: s.Source, Shadowed: s.Shadowed})
	}
	return out
}
