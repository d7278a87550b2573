package model

import "fmt"

// RefKind tags the variant held by a Ref.
type RefKind int

const (
	RefClass RefKind = iota
	RefField
	RefMethod
	RefAnnotation
)

func (k RefKind) String() string {
	switch k {
	case RefClass:
		return "class"
	case RefField:
		return "field"
	case RefMethod:
		return "method"
	case RefAnnotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// Ref is one outgoing symbolic reference of a class. Class and annotation
// references use Class; field and method references use Member.
type Ref struct {
	Kind   RefKind
	Class  string
	Member MemberRef

	// Reflective marks a class reference that is only used reflectively;
	// an opened (not exported) package satisfies the module check.
	Reflective bool
}

// ClassRef references a class by name.
func ClassRef(name string) Ref {
	return Ref{Kind: RefClass, Class: name}
}

// AnnotationRef references an annotation type by name.
func AnnotationRef(name string) Ref {
	return Ref{Kind: RefAnnotation, Class: name}
}

// FieldRef references a field. static selects getstatic/putstatic, write
// selects putfield/putstatic.
func FieldRef(owner, name, descriptor string, static, write bool) Ref {
	return Ref{Kind: RefField, Member: MemberRef{
		Kind: FieldMember, Owner: owner, Name: name, Descriptor: descriptor, Static: static, Write: write,
	}}
}

// MethodRef references a method. iface marks an InterfaceMethodref.
func MethodRef(owner, name, descriptor string, iface, static bool) Ref {
	return Ref{Kind: RefMethod, Member: MemberRef{
		Kind: MethodMember, Owner: owner, Name: name, Descriptor: descriptor, Interface: iface, Static: static,
	}}
}

// Target returns the class name the reference points at.
func (r Ref) Target() string {
	if r.Kind == RefField || r.Kind == RefMethod {
		return r.Member.Owner
	}
	return r.Class
}

// Validate rejects references with an empty target.
func (r Ref) Validate() error {
	switch r.Kind {
	case RefField, RefMethod:
		return r.Member.Validate()
	default:
		if r.Class == "" {
			return fmt.Errorf("%w: empty %s reference", ErrInvalidReference, r.Kind)
		}
		return nil
	}
}
