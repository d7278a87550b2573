// Package snapshot decodes classpath snapshots: the loader's description of
// archives, their classes, and the references those classes make. A
// snapshot is YAML; JSON documents decode as well.
//
// A minimal snapshot:
//
//	classpath:
//	  - file: app.jar
//	    classes:
//	      - name: app.Main
//	        access: [public]
//	        refs:
//	          - class: lib.Util
//	          - method: lib.Util.run
//	            desc: ()V
//	            static: true
//	  - file: lib.jar
//	    classes:
//	      - name: lib.Util
//	        access: [public]
//	        methods:
//	          - {name: run, desc: ()V, access: [public, static]}
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jward/jarlink/internal/model"
)

// ErrInvalidRef is returned for a ref entry that does not name exactly one
// class, annotation, field, or method.
var ErrInvalidRef = errors.New("snapshot: invalid ref")

// defaultMajor is Java 8.
const defaultMajor = 52

// Snapshot is a decoded classpath snapshot.
type Snapshot struct {
	Options   Options   `yaml:"options"`
	Classpath []Archive `yaml:"classpath"`
	Provided  []Archive `yaml:"provided"`
	Runtime   []Archive `yaml:"runtime"`
}

// Options carries analysis settings recorded with the snapshot. Zero
// values mean "not set".
type Options struct {
	Strategy                 string `yaml:"strategy"`
	Release                  int    `yaml:"release"`
	IgnoreMissingAnnotations bool   `yaml:"ignore-missing-annotations"`
	ReportOwnerClassNotFound bool   `yaml:"report-owner-class-not-found"`
}

type Archive struct {
	File      string            `yaml:"file"`
	Size      int64             `yaml:"size"`
	Checksum  string            `yaml:"checksum"`
	Releases  []int             `yaml:"releases"`
	Manifest  map[string]string `yaml:"manifest"`
	Module    *Module           `yaml:"module"`
	Resources []Resource        `yaml:"resources"`
	Classes   []Class           `yaml:"classes"`
}

type Module struct {
	Name      string              `yaml:"name"`
	Automatic bool                `yaml:"automatic"`
	Requires  []string            `yaml:"requires"`
	Exports   map[string][]string `yaml:"exports"`
	Opens     map[string][]string `yaml:"opens"`
}

type Resource struct {
	Name     string `yaml:"name"`
	Checksum string `yaml:"checksum"`
}

type Class struct {
	Name       string   `yaml:"name"`
	Access     []string `yaml:"access"`
	Super      *string  `yaml:"super"`
	Interfaces []string `yaml:"interfaces"`
	Permits    []string `yaml:"permits"`
	Version    int      `yaml:"version"`
	Minor      int      `yaml:"minor"`
	Release    int      `yaml:"release"`
	Fields     []Member `yaml:"fields"`
	Methods    []Member `yaml:"methods"`
	Refs       []Ref    `yaml:"refs"`
}

// Member is a declared field (Type) or method (Desc).
type Member struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Desc   string   `yaml:"desc"`
	Access []string `yaml:"access"`
}

// Ref is one outgoing reference. Field and method targets are written as
// owner.name; Owner overrides the split when set.
type Ref struct {
	Class      string `yaml:"class"`
	Annotation string `yaml:"annotation"`
	Field      string `yaml:"field"`
	Method     string `yaml:"method"`
	Owner      string `yaml:"owner"`
	Type       string `yaml:"type"`
	Desc       string `yaml:"desc"`
	Static     bool   `yaml:"static"`
	Write      bool   `yaml:"write"`
	Interface  bool   `yaml:"interface"`
	Reflective bool   `yaml:"reflective"`
}

// Decode reads a snapshot. Unknown keys are errors.
func Decode(r io.Reader) (*Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return &s, nil
}

// Load decodes the snapshot file at path.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return s, nil
}

// Sources are the archives of a snapshot as model values, grouped by the
// classpath they belong to.
type Sources struct {
	Classpath []*model.Archive
	Provided  []*model.Archive
	Runtime   []*model.Archive
}

// Build converts the snapshot to model archives. Each call returns fresh
// values.
func (s *Snapshot) Build() (*Sources, error) {
	var out Sources
	var err error
	if out.Runtime, err = buildArchives(s.Runtime); err != nil {
		return nil, err
	}
	if out.Provided, err = buildArchives(s.Provided); err != nil {
		return nil, err
	}
	if out.Classpath, err = buildArchives(s.Classpath); err != nil {
		return nil, err
	}
	return &out, nil
}

func buildArchives(specs []Archive) ([]*model.Archive, error) {
	archives := make([]*model.Archive, 0, len(specs))
	for _, spec := range specs {
		a, err := spec.build()
		if err != nil {
			return nil, err
		}
		archives = append(archives, a)
	}
	return archives, nil
}

func (a Archive) build() (*model.Archive, error) {
	classes := make([]*model.ClassRecord, 0, len(a.Classes))
	for _, spec := range a.Classes {
		c, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("snapshot: archive %s: class %s: %w", a.File, spec.Name, err)
		}
		classes = append(classes, c)
	}

	opts := []model.ArchiveOption{model.WithSize(a.Size), model.WithChecksum(a.Checksum)}
	if len(a.Releases) > 0 {
		opts = append(opts, model.WithReleases(a.Releases...))
	}
	if len(a.Manifest) > 0 {
		opts = append(opts, model.WithManifest(a.Manifest))
	}
	if a.Module != nil {
		opts = append(opts, model.WithModule(a.Module.build()))
	}
	for _, r := range a.Resources {
		opts = append(opts, model.WithResources(model.Resource{Name: r.Name, Checksum: r.Checksum}))
	}

	archive, err := model.NewArchive(a.File, classes, opts...)
	if err != nil {
		return nil, fmt.Errorf("snapshot: archive %s: %w", a.File, err)
	}
	return archive, nil
}

func (m *Module) build() *model.ModuleDescriptor {
	return &model.ModuleDescriptor{
		Name:      m.Name,
		Automatic: m.Automatic,
		Requires:  m.Requires,
		Exports:   nonNilTable(m.Exports),
		Opens:     nonNilTable(m.Opens),
	}
}

// nonNilTable turns YAML nulls (`pkg:` with no readers) into empty lists.
func nonNilTable(t map[string][]string) map[string][]string {
	out := make(map[string][]string, len(t))
	for pkg, readers := range t {
		if readers == nil {
			readers = []string{}
		}
		out[pkg] = readers
	}
	return out
}

func (c Class) build() (*model.ClassRecord, error) {
	rec := &model.ClassRecord{
		Name:                c.Name,
		Access:              model.ParseAccess(c.Access),
		Interfaces:          c.Interfaces,
		PermittedSubclasses: c.Permits,
		MajorVersion:        c.Version,
		MinorVersion:        c.Minor,
		Release:             c.Release,
	}
	switch {
	case c.Super != nil:
		rec.SuperName = *c.Super
	case c.Name != model.ObjectClass && c.Name != "module-info":
		rec.SuperName = model.ObjectClass
	}
	if rec.MajorVersion == 0 {
		rec.MajorVersion = defaultMajor
	}
	for _, f := range c.Fields {
		rec.Fields = append(rec.Fields, model.NewField(c.Name, f.Name, f.Type, model.ParseAccess(f.Access)))
	}
	for _, m := range c.Methods {
		rec.Methods = append(rec.Methods, model.NewMethod(c.Name, m.Name, m.Desc, model.ParseAccess(m.Access)))
	}
	for i, r := range c.Refs {
		ref, err := r.build()
		if err != nil {
			return nil, fmt.Errorf("ref %d: %w", i, err)
		}
		rec.Refs = append(rec.Refs, ref)
	}
	return rec, nil
}

func (r Ref) build() (model.Ref, error) {
	set := 0
	for _, s := range []string{r.Class, r.Annotation, r.Field, r.Method} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return model.Ref{}, fmt.Errorf("%w: want exactly one of class, annotation, field, method", ErrInvalidRef)
	}

	switch {
	case r.Class != "":
		ref := model.ClassRef(r.Class)
		ref.Reflective = r.Reflective
		return ref, nil
	case r.Annotation != "":
		return model.AnnotationRef(r.Annotation), nil
	case r.Field != "":
		owner, name := r.split(r.Field)
		return model.FieldRef(owner, name, r.Type, r.Static, r.Write), nil
	default:
		owner, name := r.split(r.Method)
		return model.MethodRef(owner, name, r.Desc, r.Interface, r.Static), nil
	}
}

// split separates "owner.name" at the last dot. An explicit Owner takes the
// whole string as the member name.
func (r Ref) split(target string) (owner, name string) {
	if r.Owner != "" {
		return r.Owner, target
	}
	i := strings.LastIndexByte(target, '.')
	if i < 0 {
		return "", target
	}
	return target[:i], target[i+1:]
}
