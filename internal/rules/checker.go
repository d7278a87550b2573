package rules

import (
	"errors"
	"fmt"

	"github.com/jward/jarlink/internal/classpath"
	"github.com/jward/jarlink/internal/model"
	"github.com/jward/jarlink/internal/resolve"
)

// ErrNilClass is returned by Check for a nil class.
var ErrNilClass = errors.New("rules: nil class")

// Options tunes which findings are reported.
type Options struct {
	// IgnoreMissingAnnotations drops annotation-not-found issues.
	IgnoreMissingAnnotations bool

	// ReportOwnerClassNotFound reports field and method references whose
	// owner class is missing as member-not-found. By default they are
	// dropped because the class reference already reports the class.
	ReportOwnerClassNotFound bool
}

// Checker runs every rule against classes of one classpath. It is safe for
// concurrent use by multiple goroutines.
type Checker struct {
	cp       *classpath.Classpath
	resolver *resolve.Resolver
	access   *resolve.AccessCheck
	opts     Options
}

// NewChecker returns a Checker resolving against cp.
func NewChecker(cp *classpath.Classpath, opts Options) (*Checker, error) {
	r, err := resolve.New(cp)
	if err != nil {
		return nil, fmt.Errorf("rules: new checker: %w", err)
	}
	return &Checker{cp: cp, resolver: r, access: resolve.NewAccessCheck(r), opts: opts}, nil
}

// Check returns the issues of class c in a stable order: class file version,
// class hierarchy, abstract methods, then one group per outgoing reference
// in declaration order. Identical issues are reported once.
func (ch *Checker) Check(c *model.ClassRecord) ([]Issue, error) {
	if c == nil {
		return nil, ErrNilClass
	}
	var out issueSet
	ch.checkVersion(c, &out)
	ch.checkHierarchy(c, &out)
	ch.checkAbstractMethods(c, &out)
	for _, ref := range c.Refs {
		if err := ref.Validate(); err != nil {
			return nil, fmt.Errorf("rules: check %s: %w", c.Name, err)
		}
		switch ref.Kind {
		case model.RefClass:
			ch.checkClassRef(c, ref, &out)
		case model.RefAnnotation:
			ch.checkAnnotationRef(c, ref, &out)
		case model.RefField:
			ch.checkFieldRef(c, ref.Member, &out)
		case model.RefMethod:
			ch.checkMethodRef(c, ref.Member, &out)
		}
	}
	return out.issues, nil
}

// CheckArchive checks the manifest and every selected class of archive a,
// returning blocks ordered manifest first, then classes by name.
func (ch *Checker) CheckArchive(a *model.Archive) ([]Block, error) {
	blocks := ch.CheckManifest(a)
	for _, c := range ch.cp.Classes(a) {
		issues, err := ch.Check(c)
		if err != nil {
			return nil, err
		}
		if len(issues) > 0 {
			blocks = append(blocks, Block{Headline: c.Name, Issues: issues})
		}
	}
	return blocks, nil
}

func (ch *Checker) checkVersion(c *model.ClassRecord, out *issueSet) {
	// base entries carry no bundling intent
	if c.Release <= 8 {
		return
	}
	if v := model.JavaVersion(c.MajorVersion); v > c.Release {
		out.add(Issue{Kind: VersionMismatch, Subject: c.Name, Compiled: v, Bundled: c.Release})
	}
}

func (ch *Checker) checkClassRef(c *model.ClassRecord, ref model.Ref, out *issueSet) {
	target := ch.resolver.Class(ref.Class)
	if target == nil {
		out.add(Issue{Kind: ClassNotFound, Subject: ref.Class, PackageFound: ch.packageFound(ref.Class)})
		return
	}
	ch.checkClassAccess(c, target, ref.Reflective, out)
}

func (ch *Checker) checkAnnotationRef(c *model.ClassRecord, ref model.Ref, out *issueSet) {
	target := ch.resolver.Class(ref.Class)
	if target == nil {
		if !ch.opts.IgnoreMissingAnnotations {
			out.add(Issue{Kind: AnnotationNotFound, Subject: ref.Class, PackageFound: ch.packageFound(ref.Class)})
		}
		return
	}
	ch.checkClassAccess(c, target, ref.Reflective, out)
	if !target.IsAnnotation() {
		out.add(Issue{Kind: NotAnAnnotation, Subject: target.DisplayName()})
	}
}

func (ch *Checker) packageFound(className string) bool {
	return ch.cp.ContainsPackage(model.PackageName(className))
}

// checkClassAccess applies access control and module boundaries to a
// resolved class reference.
func (ch *Checker) checkClassAccess(c, target *model.ClassRecord, reflective bool, out *issueSet) {
	display := target.DisplayName()
	if !ch.access.ClassAccess(c, target) {
		// already reported for the superclass or an interface
		if !out.has(SuperclassNotAccessible, display) && !out.has(InterfaceNotAccessible, display) {
			kind := ClassNotAccessible
			if target.IsAnnotation() {
				kind = AnnotationNotAccessible
			}
			out.add(Issue{Kind: kind, Subject: display})
		}
	}

	src, dst := c.Module(), target.Module()
	if !dst.IsNamed() || dst.IsAutomatic() || dst.IsSame(src) {
		return
	}
	pkg := target.PackageName()
	granted := dst.IsExported(pkg, src.ReaderName())
	if !granted && reflective {
		granted = dst.IsOpen(pkg, src.ReaderName())
	}
	if !granted {
		out.add(Issue{Kind: ModuleNotExported, Subject: display, Module: dst.Name})
	}
}

func (ch *Checker) checkFieldRef(c *model.ClassRecord, ref model.MemberRef, out *issueSet) {
	if _, ok := ch.checkOwner(c, ref, out); !ok {
		return
	}
	res, err := ch.resolver.Field(ref)
	if err != nil {
		return
	}
	trace := traceNotes(res.Trace)
	if res.Outcome != resolve.Found {
		out.add(Issue{Kind: MemberNotFound, Member: model.FieldMember, Subject: ref.DisplayName(), Notes: trace})
		return
	}

	var found []Issue
	f := res.Member
	subject, declared := ref.DisplayName(), f.DisplayName()
	if !ch.access.MemberAccess(c, f) {
		found = append(found, Issue{Kind: MemberNotAccessible, From: c.Name, Subject: subject, Declared: declared, Member: model.FieldMember})
	}
	if f.Descriptor != ref.Descriptor {
		found = append(found, Issue{Kind: IncompatibleMemberType, Subject: subject, Declared: declared, Member: model.FieldMember})
	}
	found = append(found, staticMismatch(ref, f)...)
	if f.IsFinal() && ref.Write {
		found = append(found, Issue{Kind: IllegalWriteToFinalField, Subject: subject, Declared: declared, Member: model.FieldMember})
	}
	out.addGroup(found, trace)
}

func (ch *Checker) checkMethodRef(c *model.ClassRecord, ref model.MemberRef, out *issueSet) {
	owner, ok := ch.checkOwner(c, ref, out)
	if !ok {
		return
	}
	res, err := ch.resolver.Method(ref)
	if err != nil {
		return
	}
	trace := traceNotes(res.Trace)
	if res.Outcome != resolve.Found {
		out.add(Issue{Kind: MemberNotFound, Member: model.MethodMember, Subject: ref.DisplayName(), Notes: trace})
		return
	}

	var found []Issue
	m := res.Member
	subject, declared := ref.DisplayName(), m.DisplayName()
	if !ch.access.MemberAccess(c, m) {
		found = append(found, Issue{Kind: MemberNotAccessible, From: c.Name, Subject: subject, Declared: declared, Member: model.MethodMember})
	}
	found = append(found, staticMismatch(ref, m)...)
	if ref.Interface != owner.IsInterface() {
		found = append(found, Issue{Kind: InterfaceClassMismatch, Subject: subject, Declared: owner.DisplayName(), Interface: owner.IsInterface()})
	}
	out.addGroup(found, trace)
}

// checkOwner resolves the owner class of a member reference and checks
// access to it. ok is false when no member checks should follow.
func (ch *Checker) checkOwner(c *model.ClassRecord, ref model.MemberRef, out *issueSet) (owner *model.ClassRecord, ok bool) {
	owner = ch.resolver.Class(ref.Owner)
	if owner == nil {
		if ch.opts.ReportOwnerClassNotFound {
			out.add(Issue{
				Kind:    MemberNotFound,
				Member:  ref.Kind,
				Subject: ref.DisplayName(),
				Notes:   []string{note(ref.Owner, "owner class not found")},
			})
		}
		return nil, false
	}
	if !ch.access.ClassAccess(c, owner) {
		out.add(Issue{Kind: OwnerClassNotAccessible, From: c.Name, Subject: ref.Owner})
		return nil, false
	}
	return owner, true
}

func staticMismatch(ref model.MemberRef, m *model.MemberRecord) []Issue {
	subject, declared := ref.DisplayName(), m.DisplayName()
	switch {
	case m.IsStatic() && !ref.Static:
		return []Issue{{Kind: StaticInstanceMismatch, Subject: subject, Declared: declared, Member: ref.Kind}}
	case !m.IsStatic() && ref.Static:
		return []Issue{{Kind: InstanceStaticMismatch, Subject: subject, Declared: declared, Member: ref.Kind}}
	}
	return nil
}

func traceNotes(steps []resolve.Step) []string {
	notes := make([]string, len(steps))
	for i, s := range steps {
		notes[i] = note(s.Class, s.String())
	}
	return notes
}

func note(className, msg string) string {
	return "> " + className + " (" + msg + ")"
}

// issueSet keeps issues in insertion order and drops exact repeats.
type issueSet struct {
	issues []Issue
	seen   map[string]bool
}

func (s *issueSet) add(is Issue) {
	key := is.String()
	if s.seen[key] {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	s.seen[key] = true
	s.issues = append(s.issues, is)
}

// addGroup adds the issues of one member reference; the resolution trace is
// attached to the last of them.
func (s *issueSet) addGroup(group []Issue, trace []string) {
	if len(group) == 0 {
		return
	}
	group[len(group)-1].Notes = trace
	for _, is := range group {
		s.add(is)
	}
}

func (s *issueSet) has(kind Kind, subject string) bool {
	for _, is := range s.issues {
		if is.Kind == kind && is.Subject == subject {
			return true
		}
	}
	return false
}
