package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidClass is returned when a class record cannot be indexed.
var ErrInvalidClass = errors.New("invalid class")

// ObjectClass is the root of every class hierarchy.
const ObjectClass = "java.lang.Object"

// ClassRecord is one loaded class. Records are built by a loader, indexed
// once when added to an Archive, and read-only afterwards.
type ClassRecord struct {
	Name   string
	Access AccessFlags

	// SuperName is empty only for java.lang.Object (and module-info).
	SuperName           string
	Interfaces          []string
	PermittedSubclasses []string

	MajorVersion int
	MinorVersion int

	// Release is the multi-release branch the class was loaded from
	// (META-INF/versions/<Release>/), or 0 for the base entry.
	Release int

	Fields  []*MemberRecord
	Methods []*MemberRecord

	// Refs lists outgoing references in the order the loader found them.
	Refs []Ref

	archive *Archive

	once     sync.Once
	fieldIdx map[string]*MemberRecord
	methIdx  map[methodKey]*MemberRecord
}

type methodKey struct {
	name, descriptor string
}

func (c *ClassRecord) index() {
	c.fieldIdx = make(map[string]*MemberRecord, len(c.Fields))
	for _, f := range c.Fields {
		if f.Owner == "" {
			f.Owner = c.Name
		}
		f.Kind = FieldMember
		f.OwnerInterface = c.IsInterface()
		if _, dup := c.fieldIdx[f.Name]; !dup {
			c.fieldIdx[f.Name] = f
		}
	}
	c.methIdx = make(map[methodKey]*MemberRecord, len(c.Methods))
	for _, m := range c.Methods {
		if m.Owner == "" {
			m.Owner = c.Name
		}
		m.Kind = MethodMember
		m.OwnerInterface = c.IsInterface()
		k := methodKey{m.Name, m.Descriptor}
		if _, dup := c.methIdx[k]; !dup {
			c.methIdx[k] = m
		}
	}
}

func (c *ClassRecord) validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil class record", ErrInvalidClass)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: class record without a name", ErrInvalidClass)
	}
	for i, r := range c.Refs {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: %s ref #%d: %w", ErrInvalidClass, c.Name, i, err)
		}
	}
	return nil
}

// Archive returns the archive that contains the class, or nil for a class
// that was never added to one.
func (c *ClassRecord) Archive() *Archive { return c.archive }

// Module returns the module of the owning archive, or Unnamed.
func (c *ClassRecord) Module() *ModuleDescriptor {
	if c.archive == nil || c.archive.Module == nil {
		return Unnamed
	}
	return c.archive.Module
}

// PackageName returns the class's package.
func (c *ClassRecord) PackageName() string { return PackageName(c.Name) }

func (c *ClassRecord) IsPublic() bool     { return c.Access.IsPublic() }
func (c *ClassRecord) IsFinal() bool      { return c.Access.IsFinal() }
func (c *ClassRecord) IsAbstract() bool   { return c.Access.IsAbstract() }
func (c *ClassRecord) IsInterface() bool  { return c.Access.IsInterface() }
func (c *ClassRecord) IsAnnotation() bool { return c.Access.IsAnnotation() }
func (c *ClassRecord) IsEnum() bool       { return c.Access.IsEnum() }
func (c *ClassRecord) IsRecord() bool     { return c.Access.IsRecord() }

// IsSealed reports whether the class declares permitted subclasses.
func (c *ClassRecord) IsSealed() bool { return len(c.PermittedSubclasses) > 0 }

// IsRegular is false for module-info and package-info pseudo classes.
func (c *ClassRecord) IsRegular() bool {
	return c.Name != "module-info" && !strings.HasSuffix(c.Name, ".package-info")
}

// Permits reports whether name is one of the permitted subclasses.
func (c *ClassRecord) Permits(name string) bool {
	for _, p := range c.PermittedSubclasses {
		if p == name {
			return true
		}
	}
	return false
}

// Field returns the field declared with the given name, regardless of its
// descriptor.
func (c *ClassRecord) Field(name string) *MemberRecord {
	c.once.Do(c.index)
	return c.fieldIdx[name]
}

// Method returns the method declared with the given name and descriptor.
func (c *ClassRecord) Method(name, descriptor string) *MemberRecord {
	c.once.Do(c.index)
	return c.methIdx[methodKey{name, descriptor}]
}

// Modifiers renders the class modifiers and kind, e.g. "public sealed class".
func (c *ClassRecord) Modifiers() string {
	parts := c.Access.visibility()
	if c.IsFinal() && !c.IsEnum() && !c.IsRecord() {
		parts = append(parts, "final")
	}
	if c.IsAbstract() && !c.IsInterface() {
		parts = append(parts, "abstract")
	}
	if c.IsSealed() {
		parts = append(parts, "sealed")
	}
	if c.Access.IsSynthetic() {
		parts = append(parts, "(synthetic)")
	}
	switch {
	case c.IsAnnotation():
		parts = append(parts, "@interface")
	case c.IsEnum():
		parts = append(parts, "enum")
	case c.IsInterface():
		parts = append(parts, "interface")
	case c.IsRecord():
		parts = append(parts, "record")
	default:
		parts = append(parts, "class")
	}
	return strings.Join(parts, " ")
}

// DisplayName renders the class as "public final class a.A".
func (c *ClassRecord) DisplayName() string {
	return c.Modifiers() + " " + c.Name
}

func (c *ClassRecord) String() string {
	return fmt.Sprintf("ClassRecord[%s]", c.Name)
}
