package runtime

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// ErrEmptyFilter is returned for a filter script with no source.
var ErrEmptyFilter = errors.New("runtime: empty filter script")

// Issue is the view of a finding that filter scripts receive as the
// `issue` global.
type Issue struct {
	Kind    string
	Archive string
	Class   string // block headline: class name or manifest entry
	Text    string
	Notes   []string
}

// Filter embeds a Risor VM and evaluates a script once per issue. The
// issue is kept when the script's final value is truthy, or when the
// script produces no value at all.
//
// Scripts see the globals issue, log, and glob plus any added with
// WithGlobal. Import statements resolve against the script's directory or
// the configured fs.FS.
type Filter struct {
	source  string
	label   string
	dir     string
	fsys    fs.FS
	logger  *slog.Logger
	globals map[string]any
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// WithFS resolves import statements against fsys.
func WithFS(fsys fs.FS) FilterOption {
	return func(f *Filter) {
		f.fsys = fsys
	}
}

// WithScriptsDir resolves import statements against dir on disk.
func WithScriptsDir(dir string) FilterOption {
	return func(f *Filter) {
		f.dir = dir
	}
}

// WithLogger routes the script's log.Info/Warn/Error calls to logger.
func WithLogger(logger *slog.Logger) FilterOption {
	return func(f *Filter) {
		f.logger = logger
	}
}

// WithGlobal exposes an extra global to the script.
func WithGlobal(name string, value any) FilterOption {
	return func(f *Filter) {
		if f.globals == nil {
			f.globals = make(map[string]any)
		}
		f.globals[name] = value
	}
}

// withLabel names the script in errors and log lines.
func withLabel(label string) FilterOption {
	return func(f *Filter) {
		f.label = label
	}
}

// NewFilter creates a Filter from Risor source code.
func NewFilter(source string, opts ...FilterOption) (*Filter, error) {
	f := &Filter{
		source: source,
		label:  "<inline>",
	}
	for _, opt := range opts {
		opt(f)
	}
	if strings.TrimSpace(f.source) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFilter, f.label)
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	return f, nil
}

// LoadFilter reads a .risor file from disk. Imports resolve relative to
// the file's directory unless WithScriptsDir or WithFS says otherwise.
func LoadFilter(path string, opts ...FilterOption) (*Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runtime: loading filter %s: %w", path, err)
	}
	opts = append([]FilterOption{WithScriptsDir(filepath.Dir(path)), withLabel(path)}, opts...)
	return NewFilter(string(data), opts...)
}

// LoadFilterFS reads a filter script from fsys; imports resolve against
// the same fsys.
func LoadFilterFS(fsys fs.FS, path string, opts ...FilterOption) (*Filter, error) {
	fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
	data, err := fs.ReadFile(fsys, fsPath)
	if err != nil {
		return nil, fmt.Errorf("runtime: loading filter %s from fs: %w", fsPath, err)
	}
	opts = append([]FilterOption{WithFS(fsys), withLabel(fsPath)}, opts...)
	return NewFilter(string(data), opts...)
}

// Label returns the script's path, or "<inline>".
func (f *Filter) Label() string { return f.label }

// Keep evaluates the script for one issue.
func (f *Filter) Keep(ctx context.Context, is Issue) (bool, error) {
	globals := f.buildGlobals(is)

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]risor.Option, 0, len(globals)+1)
	for _, name := range names {
		opts = append(opts, risor.WithGlobal(name, globals[name]))
	}
	if imp := f.buildImporter(names); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, f.source, opts...)
	if err != nil {
		return false, fmt.Errorf("runtime: filter %s: %w", f.label, err)
	}
	if result == nil || result == object.Nil {
		return true, nil
	}
	return result.IsTruthy(), nil
}

// buildImporter returns a Risor importer for the Filter's script source.
// Returns nil if neither fs.FS nor a scripts directory is configured.
func (f *Filter) buildImporter(globalNames []string) importer.Importer {
	if f.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    f.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if f.dir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   f.dir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// buildGlobals constructs the full set of globals exposed to the script.
func (f *Filter) buildGlobals(is Issue) map[string]any {
	globals := map[string]any{
		"issue": issueObject(is),
		"log":   mustProxy(&logObject{logger: f.logger, script: f.label}),
		"glob":  globBuiltin,
	}
	for k, v := range f.globals {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
