// Package resolve re-implements linkage-time lookup of classes, fields,
// and methods against an assembled classpath.
package resolve

import (
	"errors"
	"fmt"

	"github.com/jward/jarlink/internal/classpath"
	"github.com/jward/jarlink/internal/model"
)

// ErrNilClasspath is returned by New for a nil classpath.
var ErrNilClasspath = errors.New("resolve: nil classpath")

// Outcome classifies a member lookup.
type Outcome int

const (
	Found Outcome = iota
	ClassNotFound
	MemberNotFound
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case ClassNotFound:
		return "class not found"
	default:
		return "member not found"
	}
}

// StepStatus is what the lookup learned about one class of the hierarchy.
type StepStatus int

const (
	StepClassNotFound StepStatus = iota
	StepMemberNotFound
	StepMemberFound
)

// Step records one visited type during a member lookup.
type Step struct {
	Class  string
	Status StepStatus
	Kind   model.MemberKind
}

func (s Step) String() string {
	switch s.Status {
	case StepClassNotFound:
		return "class not found"
	case StepMemberFound:
		return s.Kind.String() + " found"
	default:
		return s.Kind.String() + " not found"
	}
}

// Result is the outcome of resolving a member reference.
type Result struct {
	Outcome Outcome

	// Owner is the resolved class named by the reference; nil when
	// Outcome is ClassNotFound.
	Owner *model.ClassRecord

	// Member and Declaring are set when Outcome is Found.
	Member    *model.MemberRecord
	Declaring *model.ClassRecord

	// Trace lists the visited types in search order.
	Trace []Step
}

// Resolver looks up references against one classpath. It holds no mutable
// state besides the classpath's own memo and is safe for concurrent use.
type Resolver struct {
	cp *classpath.Classpath
}

// New returns a Resolver for cp.
func New(cp *classpath.Classpath) (*Resolver, error) {
	if cp == nil {
		return nil, ErrNilClasspath
	}
	return &Resolver{cp: cp}, nil
}

// Classpath returns the classpath the resolver searches.
func (r *Resolver) Classpath() *classpath.Classpath { return r.cp }

// Class resolves a class name; nil means the class is not found.
func (r *Resolver) Class(name string) *model.ClassRecord {
	return r.cp.Resolve(name)
}

// Field resolves a field reference. Only the name has to match: a
// descriptor mismatch is an incompatibility, not a missing field.
func (r *Resolver) Field(ref model.MemberRef) (Result, error) {
	if err := ref.Validate(); err != nil {
		return Result{}, fmt.Errorf("resolve field: %w", err)
	}
	return r.search(ref.Owner, model.FieldMember, func(c *model.ClassRecord) *model.MemberRecord {
		return c.Field(ref.Name)
	}, nil), nil
}

// Method resolves a method reference by name and descriptor. Unresolved
// calls on signature-polymorphic MethodHandle/VarHandle methods are retried
// with their generic descriptor.
func (r *Resolver) Method(ref model.MemberRef) (Result, error) {
	if err := ref.Validate(); err != nil {
		return Result{}, fmt.Errorf("resolve method: %w", err)
	}
	res := r.search(ref.Owner, model.MethodMember, func(c *model.ClassRecord) *model.MemberRecord {
		return c.Method(ref.Name, ref.Descriptor)
	}, nil)
	if res.Outcome != MemberNotFound {
		return res, nil
	}
	if desc, ok := polymorphicDescriptor(ref.Owner, ref.Name); ok {
		return r.search(ref.Owner, model.MethodMember, func(c *model.ClassRecord) *model.MemberRecord {
			return c.Method(ref.Name, desc)
		}, res.Trace), nil
	}
	return res, nil
}

// search walks the owner, then its superinterfaces in declaration order
// (depth first), then its superclass. A visited set guards against cyclic
// hierarchies; types that fail to resolve are recorded and skipped.
func (r *Resolver) search(owner string, kind model.MemberKind, match func(*model.ClassRecord) *model.MemberRecord, trace []Step) Result {
	res := Result{Trace: trace}
	res.Owner = r.cp.Resolve(owner)
	if res.Owner == nil {
		res.Outcome = ClassNotFound
		res.Trace = append(res.Trace, Step{Class: owner, Status: StepClassNotFound, Kind: kind})
		return res
	}

	visited := make(map[string]bool)
	stack := []string{owner}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		visited[name] = true

		c := r.cp.Resolve(name)
		if c == nil {
			res.Trace = append(res.Trace, Step{Class: name, Status: StepClassNotFound, Kind: kind})
			continue
		}
		if m := match(c); m != nil {
			res.Trace = append(res.Trace, Step{Class: name, Status: StepMemberFound, Kind: kind})
			res.Outcome = Found
			res.Member = m
			res.Declaring = c
			return res
		}
		res.Trace = append(res.Trace, Step{Class: name, Status: StepMemberNotFound, Kind: kind})

		if c.SuperName != "" {
			stack = append(stack, c.SuperName)
		}
		for i := len(c.Interfaces) - 1; i >= 0; i-- {
			stack = append(stack, c.Interfaces[i])
		}
	}
	res.Outcome = MemberNotFound
	return res
}

const (
	methodHandleClass = "java.lang.invoke.MethodHandle"
	varHandleClass    = "java.lang.invoke.VarHandle"
)

// polymorphicDescriptor returns the descriptor under which a
// signature-polymorphic method is declared.
func polymorphicDescriptor(owner, name string) (string, bool) {
	switch owner {
	case methodHandleClass:
		return "([Ljava/lang/Object;)Ljava/lang/Object;", true
	case varHandleClass:
		switch name {
		case "set", "setOpaque", "setRelease", "setVolatile":
			return "([Ljava/lang/Object;)V", true
		case "compareAndSet", "weakCompareAndSet", "weakCompareAndSetPlain",
			"weakCompareAndSetAcquire", "weakCompareAndSetRelease":
			return "([Ljava/lang/Object;)Z", true
		default:
			return "([Ljava/lang/Object;)Ljava/lang/Object;", true
		}
	}
	return "", false
}
