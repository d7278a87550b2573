package model

import "strings"

// AccessFlags is a class-file access_flags bitmask as reported by the loader.
// AccRecord is not part of the class-file format; loaders set it when the
// class carries a Record attribute.
type AccessFlags uint32

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccRecord       AccessFlags = 0x10000
)

// Has reports whether all bits of flag are set.
func (a AccessFlags) Has(flag AccessFlags) bool { return a&flag == flag }

func (a AccessFlags) IsPublic() bool     { return a.Has(AccPublic) }
func (a AccessFlags) IsPrivate() bool    { return a.Has(AccPrivate) }
func (a AccessFlags) IsProtected() bool  { return a.Has(AccProtected) }
func (a AccessFlags) IsStatic() bool     { return a.Has(AccStatic) }
func (a AccessFlags) IsFinal() bool      { return a.Has(AccFinal) }
func (a AccessFlags) IsInterface() bool  { return a.Has(AccInterface) }
func (a AccessFlags) IsAbstract() bool   { return a.Has(AccAbstract) }
func (a AccessFlags) IsSynthetic() bool  { return a.Has(AccSynthetic) }
func (a AccessFlags) IsAnnotation() bool { return a.Has(AccAnnotation) }
func (a AccessFlags) IsEnum() bool       { return a.Has(AccEnum) }
func (a AccessFlags) IsRecord() bool     { return a.Has(AccRecord) }

// visibility returns the visibility and static keywords shared by classes,
// fields, and methods.
func (a AccessFlags) visibility() []string {
	var parts []string
	switch {
	case a.IsPublic():
		parts = append(parts, "public")
	case a.IsProtected():
		parts = append(parts, "protected")
	case a.IsPrivate():
		parts = append(parts, "private")
	}
	if a.IsStatic() {
		parts = append(parts, "static")
	}
	return parts
}

// ParseAccess converts modifier keywords ("public", "final", "interface",
// "record", ...) into flags. Unknown keywords are ignored.
func ParseAccess(keywords []string) AccessFlags {
	var a AccessFlags
	for _, kw := range keywords {
		switch strings.ToLower(strings.TrimSpace(kw)) {
		case "public":
			a |= AccPublic
		case "private":
			a |= AccPrivate
		case "protected":
			a |= AccProtected
		case "static":
			a |= AccStatic
		case "final":
			a |= AccFinal
		case "synchronized":
			a |= AccSynchronized
		case "volatile":
			a |= AccVolatile
		case "transient":
			a |= AccTransient
		case "native":
			a |= AccNative
		case "interface":
			a |= AccInterface | AccAbstract
		case "abstract":
			a |= AccAbstract
		case "synthetic":
			a |= AccSynthetic
		case "annotation", "@interface":
			a |= AccAnnotation | AccInterface | AccAbstract
		case "enum":
			a |= AccEnum
		case "record":
			a |= AccRecord | AccFinal
		}
	}
	return a
}
