package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidReference is returned for symbolic references that no loader
// could have produced, such as an empty owner or member name.
var ErrInvalidReference = errors.New("invalid reference")

// MemberKind distinguishes fields from methods.
type MemberKind int

const (
	FieldMember MemberKind = iota
	MethodMember
)

func (k MemberKind) String() string {
	if k == MethodMember {
		return "method"
	}
	return "field"
}

// MemberRecord is a field or method declared by a class.
type MemberRecord struct {
	Kind       MemberKind
	Owner      string
	Name       string
	Descriptor string
	Access     AccessFlags

	// OwnerInterface is true when the declaring class is an interface.
	OwnerInterface bool
}

// NewField returns a field declaration.
func NewField(owner, name, descriptor string, access AccessFlags) *MemberRecord {
	return &MemberRecord{Kind: FieldMember, Owner: owner, Name: name, Descriptor: descriptor, Access: access}
}

// NewMethod returns a method declaration.
func NewMethod(owner, name, descriptor string, access AccessFlags) *MemberRecord {
	return &MemberRecord{Kind: MethodMember, Owner: owner, Name: name, Descriptor: descriptor, Access: access}
}

func (m *MemberRecord) IsStatic() bool   { return m.Access.IsStatic() }
func (m *MemberRecord) IsFinal() bool    { return m.Access.IsFinal() }
func (m *MemberRecord) IsAbstract() bool { return m.Access.IsAbstract() }
func (m *MemberRecord) IsPrivate() bool  { return m.Access.IsPrivate() }

// Modifiers renders the member's modifier keywords.
func (m *MemberRecord) Modifiers() string {
	parts := m.Access.visibility()
	if m.Access.IsFinal() {
		parts = append(parts, "final")
	}
	if m.Kind == FieldMember {
		if m.Access.Has(AccVolatile) {
			parts = append(parts, "volatile")
		}
		if m.Access.Has(AccTransient) {
			parts = append(parts, "transient")
		}
	} else {
		if m.Access.Has(AccSynchronized) {
			parts = append(parts, "synchronized")
		}
		if m.Access.Has(AccNative) {
			parts = append(parts, "native")
		}
		if m.Access.IsAbstract() {
			parts = append(parts, "abstract")
		}
	}
	if m.Access.IsSynthetic() {
		parts = append(parts, "(synthetic)")
	}
	return strings.Join(parts, " ")
}

// DisplayName renders the member as Java-like source, e.g.
// "public static int a.A.count" or "public void a.A.run(java.lang.String)".
func (m *MemberRecord) DisplayName() string {
	var sig string
	if m.Kind == FieldMember {
		sig = fmt.Sprintf("%s %s.%s", TypeName(m.Descriptor), m.Owner, m.Name)
	} else {
		sig = fmt.Sprintf("%s %s.%s(%s)", ReturnType(m.Descriptor), m.Owner, m.Name, strings.Join(ParameterTypes(m.Descriptor), ","))
	}
	if mods := m.Modifiers(); mods != "" {
		return mods + " " + sig
	}
	return sig
}

// MemberRef is a symbolic field or method reference as it appears at an
// access site. It is comparable; equal values denote the same reference.
type MemberRef struct {
	Kind       MemberKind
	Owner      string
	Name       string
	Descriptor string
	Static     bool

	// Interface is set for InterfaceMethodref constants.
	Interface bool

	// Write is set for putfield/putstatic access.
	Write bool
}

// Validate rejects references that lack an owner or a name.
func (r MemberRef) Validate() error {
	if r.Owner == "" {
		return fmt.Errorf("%w: %s reference %q has no owner", ErrInvalidReference, r.Kind, r.Name)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: %s reference on %s has no name", ErrInvalidReference, r.Kind, r.Owner)
	}
	return nil
}

// DisplayName renders the reference, e.g. "static int a.A.count" or
// "void a.A.run(java.lang.String)".
func (r MemberRef) DisplayName() string {
	var b strings.Builder
	if r.Static {
		b.WriteString("static ")
	}
	if r.Kind == FieldMember {
		fmt.Fprintf(&b, "%s %s.%s", TypeName(r.Descriptor), r.Owner, r.Name)
	} else {
		fmt.Fprintf(&b, "%s %s.%s(%s)", ReturnType(r.Descriptor), r.Owner, r.Name, strings.Join(ParameterTypes(r.Descriptor), ","))
	}
	return b.String()
}
