package model

import (
	"fmt"
	"sort"
)

// Resource is a non-class entry of an archive.
type Resource struct {
	Name     string
	Checksum string
}

// Archive is a loaded JAR, WAR, or JMOD file. Classes are sorted by name
// (then release) and indexed once at construction.
type Archive struct {
	FileName string
	Size     int64
	Checksum string

	// Module is nil for archives on the plain classpath.
	Module *ModuleDescriptor

	// Releases lists the versions a multi-release archive bundles classes
	// for (META-INF/versions/<n>). Empty for regular archives.
	Releases []int

	// Manifest holds META-INF/MANIFEST.MF main attributes.
	Manifest map[string]string

	classes   []*ClassRecord
	resources []Resource
	byName    map[string][]*ClassRecord
	resByName map[string]int
	packages  map[string]bool
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*Archive)

func WithSize(size int64) ArchiveOption            { return func(a *Archive) { a.Size = size } }
func WithChecksum(sum string) ArchiveOption        { return func(a *Archive) { a.Checksum = sum } }
func WithModule(m *ModuleDescriptor) ArchiveOption { return func(a *Archive) { a.Module = m } }

// WithReleases marks the archive as multi-release.
func WithReleases(releases ...int) ArchiveOption {
	return func(a *Archive) {
		a.Releases = append([]int(nil), releases...)
		sort.Ints(a.Releases)
	}
}

// WithManifest sets the manifest main attributes.
func WithManifest(attrs map[string]string) ArchiveOption {
	return func(a *Archive) { a.Manifest = attrs }
}

// WithResources adds non-class entries.
func WithResources(resources ...Resource) ArchiveOption {
	return func(a *Archive) { a.resources = append(a.resources, resources...) }
}

// NewArchive builds an archive and links every class back to it. Classes
// sharing a name are all retained.
func NewArchive(fileName string, classes []*ClassRecord, opts ...ArchiveOption) (*Archive, error) {
	if fileName == "" {
		return nil, fmt.Errorf("model: new archive: empty file name")
	}
	a := &Archive{
		FileName:  fileName,
		classes:   make([]*ClassRecord, 0, len(classes)),
		byName:    make(map[string][]*ClassRecord, len(classes)),
		resByName: make(map[string]int),
		packages:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	for _, c := range classes {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("model: new archive %s: %w", fileName, err)
		}
		if c.archive != nil && c.archive != a {
			return nil, fmt.Errorf("model: new archive %s: %w: %s already belongs to %s",
				fileName, ErrInvalidClass, c.Name, c.archive.FileName)
		}
		c.archive = a
		c.once.Do(c.index)
		a.classes = append(a.classes, c)
	}
	sort.SliceStable(a.classes, func(i, j int) bool {
		if a.classes[i].Name != a.classes[j].Name {
			return a.classes[i].Name < a.classes[j].Name
		}
		return a.classes[i].Release < a.classes[j].Release
	})
	for _, c := range a.classes {
		a.byName[c.Name] = append(a.byName[c.Name], c)
		if c.IsRegular() {
			a.packages[c.PackageName()] = true
		}
	}
	sort.SliceStable(a.resources, func(i, j int) bool { return a.resources[i].Name < a.resources[j].Name })
	for i, r := range a.resources {
		if _, dup := a.resByName[r.Name]; !dup {
			a.resByName[r.Name] = i
		}
	}
	return a, nil
}

// Classes returns every class record, including all release variants.
func (a *Archive) Classes() []*ClassRecord { return a.classes }

// Resources returns the non-class entries sorted by name.
func (a *Archive) Resources() []Resource { return a.resources }

// Class returns the base entry for name, or the first variant if the class
// only exists in versioned directories.
func (a *Archive) Class(name string) *ClassRecord {
	variants := a.byName[name]
	if len(variants) == 0 {
		return nil
	}
	return variants[0]
}

// Resource returns the resource with the given name.
func (a *Archive) Resource(name string) (Resource, bool) {
	i, ok := a.resByName[name]
	if !ok {
		return Resource{}, false
	}
	return a.resources[i], true
}

// ContainsPackage reports whether any class of the archive is in pkg.
func (a *Archive) ContainsPackage(pkg string) bool { return a.packages[pkg] }

// Packages returns the packages of the archive, sorted.
func (a *Archive) Packages() []string {
	pkgs := make([]string, 0, len(a.packages))
	for p := range a.packages {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	return pkgs
}

// IsMultiRelease reports whether the archive declares versioned entries.
func (a *Archive) IsMultiRelease() bool { return len(a.Releases) > 0 }

// Select returns the classes visible to a runtime of the given release,
// sorted by name. For every class name the variant from the highest
// declared release not above target wins over the base entry; target <= 0
// accepts every declared release. Versioned entries are ignored in archives
// that are not multi-release. Duplicate base entries are all returned.
func (a *Archive) Select(target int) []*ClassRecord {
	out := make([]*ClassRecord, 0, len(a.classes))
	for i := 0; i < len(a.classes); {
		name := a.classes[i].Name
		j := i
		for j < len(a.classes) && a.classes[j].Name == name {
			j++
		}
		out = append(out, a.selectVariants(a.classes[i:j], target)...)
		i = j
	}
	return out
}

func (a *Archive) selectVariants(variants []*ClassRecord, target int) []*ClassRecord {
	var base []*ClassRecord
	var best *ClassRecord
	for _, c := range variants {
		if c.Release <= 0 {
			base = append(base, c)
			continue
		}
		if !a.releaseEligible(c.Release, target) {
			continue
		}
		if best == nil || c.Release > best.Release {
			best = c
		}
	}
	if best != nil {
		return []*ClassRecord{best}
	}
	return base
}

func (a *Archive) releaseEligible(release, target int) bool {
	if !a.IsMultiRelease() || release < 9 {
		return false
	}
	if target > 0 && release > target {
		return false
	}
	for _, r := range a.Releases {
		if r == release {
			return true
		}
	}
	return false
}

func (a *Archive) String() string {
	return fmt.Sprintf("Archive[%s,%d]", a.FileName, len(a.classes))
}
