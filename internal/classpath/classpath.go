// Package classpath assembles archives from one source (classpath,
// provided, runtime) into a queryable view that delegates to a parent
// source the way class loaders do.
package classpath

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jward/jarlink/internal/model"
)

// ErrNilArchive is returned when Assemble receives a nil archive.
var ErrNilArchive = errors.New("classpath: nil archive")

// Strategy selects the class-loader delegation order.
type Strategy int

const (
	// ParentLast resolves from the own archives first and falls back to
	// the parent.
	ParentLast Strategy = iota
	// ParentFirst lets the parent's definition win whenever it has one.
	ParentFirst
)

func (s Strategy) String() string {
	if s == ParentFirst {
		return "parent-first"
	}
	return "parent-last"
}

// ParseStrategy accepts "parent-first"/"ParentFirst" and
// "parent-last"/"ParentLast" (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "parentfirst":
		return ParentFirst, nil
	case "parentlast", "":
		return ParentLast, nil
	default:
		return ParentLast, fmt.Errorf("classpath: unknown strategy %q: must be parent-first or parent-last", s)
	}
}

// Classpath is an ordered set of archives from one logical source, indexed
// by class name, optionally chained to a parent. The index is built once by
// Assemble; lookups are safe for concurrent use.
type Classpath struct {
	name     string
	archives []*model.Archive
	parent   *Classpath
	strategy Strategy
	release  int

	classes  map[string][]*model.ClassRecord
	selected map[*model.Archive][]*model.ClassRecord
	byFile   map[string]*model.Archive
	packages map[string]bool
	resolved sync.Map // class name -> *model.ClassRecord (nil when absent)
}

// Option configures Assemble.
type Option func(*Classpath)

// WithRelease selects multi-release variants for the given Java release.
// 0 accepts the highest variant each archive declares.
func WithRelease(release int) Option {
	return func(cp *Classpath) { cp.release = release }
}

// Assemble indexes archives in order. Same-named classes are all retained;
// the first one in archive order is what Resolve returns.
func Assemble(name string, archives []*model.Archive, parent *Classpath, strategy Strategy, opts ...Option) (*Classpath, error) {
	cp := &Classpath{
		name:     name,
		archives: make([]*model.Archive, 0, len(archives)),
		parent:   parent,
		strategy: strategy,
		classes:  make(map[string][]*model.ClassRecord),
		selected: make(map[*model.Archive][]*model.ClassRecord, len(archives)),
		byFile:   make(map[string]*model.Archive, len(archives)),
		packages: make(map[string]bool),
	}
	if parent != nil {
		cp.release = parent.release
	}
	for _, opt := range opts {
		opt(cp)
	}

	for i, a := range archives {
		if a == nil {
			return nil, fmt.Errorf("classpath: assemble %s: archive #%d: %w", name, i, ErrNilArchive)
		}
		cp.archives = append(cp.archives, a)
		if _, dup := cp.byFile[a.FileName]; !dup {
			cp.byFile[a.FileName] = a
		}
		classes := a.Select(cp.release)
		cp.selected[a] = classes
		for _, c := range classes {
			cp.classes[c.Name] = append(cp.classes[c.Name], c)
			if c.IsRegular() {
				cp.packages[c.PackageName()] = true
			}
		}
	}
	return cp, nil
}

// Name returns the source name ("classpath", "provided", "runtime").
func (cp *Classpath) Name() string { return cp.name }

// Parent returns the parent classpath, or nil.
func (cp *Classpath) Parent() *Classpath { return cp.parent }

// Strategy returns the delegation strategy.
func (cp *Classpath) Strategy() Strategy { return cp.strategy }

// Release returns the Java release used to select multi-release variants.
func (cp *Classpath) Release() int { return cp.release }

// Archives returns the own archives in classpath order.
func (cp *Classpath) Archives() []*model.Archive { return cp.archives }

// Classes returns the classes of an own archive visible at the configured
// release, sorted by name.
func (cp *Classpath) Classes(a *model.Archive) []*model.ClassRecord { return cp.selected[a] }

// Resolve finds the class linkage would bind name to, honoring the
// delegation strategy. It returns nil when no source defines the class.
func (cp *Classpath) Resolve(name string) *model.ClassRecord {
	if v, ok := cp.resolved.Load(name); ok {
		return v.(*model.ClassRecord)
	}
	c := cp.resolve(name)
	cp.resolved.Store(name, c)
	return c
}

func (cp *Classpath) resolve(name string) *model.ClassRecord {
	if cp.strategy == ParentFirst && cp.parent != nil {
		if c := cp.parent.Resolve(name); c != nil {
			return c
		}
	}
	if own := cp.classes[name]; len(own) > 0 {
		return own[0]
	}
	if cp.strategy == ParentLast && cp.parent != nil {
		return cp.parent.Resolve(name)
	}
	return nil
}

// Candidates returns every own definition of name in archive order. More
// than one candidate means the class is duplicated across (or within)
// archives.
func (cp *Classpath) Candidates(name string) []*model.ClassRecord {
	return cp.classes[name]
}

// ContainsPackage reports whether this source or any parent defines a class
// in pkg.
func (cp *Classpath) ContainsPackage(pkg string) bool {
	for c := cp; c != nil; c = c.parent {
		if c.packages[pkg] {
			return true
		}
	}
	return false
}

// Archive returns the archive with the given file name from this source or
// its parents.
func (cp *Classpath) Archive(fileName string) *model.Archive {
	for c := cp; c != nil; c = c.parent {
		if a, ok := c.byFile[fileName]; ok {
			return a
		}
	}
	return nil
}

// Duplicate is a class name defined more than once in one source.
type Duplicate struct {
	ClassName string
	Archives  []string
}

// Duplicates lists classes with more than one own candidate, sorted by name.
func (cp *Classpath) Duplicates() []Duplicate {
	var dups []Duplicate
	for name, cands := range cp.classes {
		if len(cands) < 2 || !cands[0].IsRegular() {
			continue
		}
		dups = append(dups, Duplicate{ClassName: name, Archives: archiveNames(cands)})
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].ClassName < dups[j].ClassName })
	return dups
}

// Shadow is an own class that a parent source also defines.
type Shadow struct {
	ClassName string
	Archive   string
	Source    string
	Shadowed  string // archive of the parent definition
}

// Shadowed lists own classes also defined by a parent source, sorted by
// name. Source names the parent classpath that defines the other copy.
func (cp *Classpath) Shadowed() []Shadow {
	var out []Shadow
	for name, cands := range cp.classes {
		if !cands[0].IsRegular() {
			continue
		}
		for p := cp.parent; p != nil; p = p.parent {
			pc := p.Candidates(name)
			if len(pc) == 0 {
				continue
			}
			out = append(out, Shadow{
				ClassName: name,
				Archive:   archiveName(cands[0]),
				Source:    p.name,
				Shadowed:  archiveName(pc[0]),
			})
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out
}

func archiveNames(classes []*model.ClassRecord) []string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = archiveName(c)
	}
	return names
}

func archiveName(c *model.ClassRecord) string {
	if a := c.Archive(); a != nil {
		return a.FileName
	}
	return ""
}

func (cp *Classpath) String() string {
	return fmt.Sprintf("Classpath[%s,%d]", cp.name, len(cp.archives))
}
