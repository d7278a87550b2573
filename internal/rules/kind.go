// Package rules checks classes against the linkage rules of the Java
// platform and reports violations as Issue values.
package rules

// Kind identifies the check an Issue comes from. The set is closed; every
// Kind has a stable kebab-case name used in reports and persisted findings.
type Kind int

const (
	ClassNotFound Kind = iota
	ClassNotAccessible
	ModuleNotExported

	AnnotationNotFound
	AnnotationNotAccessible
	NotAnAnnotation

	MemberNotFound
	OwnerClassNotAccessible
	MemberNotAccessible
	StaticInstanceMismatch
	InstanceStaticMismatch
	IllegalWriteToFinalField
	IncompatibleMemberType
	InterfaceClassMismatch

	SuperclassNotFound
	SuperclassFinal
	SuperclassAnnotation
	SuperclassInterface
	SuperclassEnum
	SuperclassIsRecord
	SuperclassNotAccessible

	InterfaceNotFound
	InterfaceEnum
	InterfaceAbstractClass
	InterfaceIsClass
	InterfaceNotAccessible

	PermittedSubclassNotFound
	PermittedSubclassInvalidHierarchy
	PermittedSubclassWrongScope
	PermittedSubclassNotAccessible
	NotAPermittedSubclass
	SealedSuperclassWrongScope

	AbstractMethodNotImplemented
	VersionMismatch

	MainClassNotFound
	MainMethodNotFound
	MainMethodNotPublic
	MainMethodNotStatic
	ClassPathJarNotFound
	ClassPathNotAJar
)

var kindNames = [...]string{
	ClassNotFound:                     "class-not-found",
	ClassNotAccessible:                "class-not-accessible",
	ModuleNotExported:                 "module-not-exported",
	AnnotationNotFound:                "annotation-not-found",
	AnnotationNotAccessible:           "annotation-not-accessible",
	NotAnAnnotation:                   "not-an-annotation",
	MemberNotFound:                    "member-not-found",
	OwnerClassNotAccessible:           "owner-class-not-accessible",
	MemberNotAccessible:               "member-not-accessible",
	StaticInstanceMismatch:            "static-instance-mismatch",
	InstanceStaticMismatch:            "instance-static-mismatch",
	IllegalWriteToFinalField:          "illegal-write-to-final-field",
	IncompatibleMemberType:            "incompatible-member-type",
	InterfaceClassMismatch:            "interface-class-mismatch",
	SuperclassNotFound:                "superclass-not-found",
	SuperclassFinal:                   "superclass-final",
	SuperclassAnnotation:              "superclass-annotation",
	SuperclassInterface:               "superclass-interface",
	SuperclassEnum:                    "superclass-enum",
	SuperclassIsRecord:                "superclass-is-record",
	SuperclassNotAccessible:           "superclass-not-accessible",
	InterfaceNotFound:                 "interface-not-found",
	InterfaceEnum:                     "interface-enum",
	InterfaceAbstractClass:            "interface-abstract-class",
	InterfaceIsClass:                  "interface-is-class",
	InterfaceNotAccessible:            "interface-not-accessible",
	PermittedSubclassNotFound:         "permitted-subclass-not-found",
	PermittedSubclassInvalidHierarchy: "permitted-subclass-invalid-hierarchy",
	PermittedSubclassWrongScope:       "permitted-subclass-wrong-scope",
	PermittedSubclassNotAccessible:    "permitted-subclass-not-accessible",
	NotAPermittedSubclass:             "not-a-permitted-subclass",
	SealedSuperclassWrongScope:        "sealed-superclass-wrong-scope",
	AbstractMethodNotImplemented:      "abstract-method-not-implemented",
	VersionMismatch:                   "version-mismatch",
	MainClassNotFound:                 "main-class-not-found",
	MainMethodNotFound:                "main-method-not-found",
	MainMethodNotPublic:               "main-method-not-public",
	MainMethodNotStatic:               "main-method-not-static",
	ClassPathJarNotFound:              "class-path-jar-not-found",
	ClassPathNotAJar:                  "class-path-not-a-jar",
}

// Kinds returns every Kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the Kind with the given kebab-case name.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Scope is the module/package relation violated by a sealed hierarchy.
type Scope int

const (
	// NotSameModule: both named, different modules.
	NotSameModule Scope = iota
	// InNamedModule: the other class is named, this one unnamed.
	InNamedModule
	// InUnnamedModule: the other class is unnamed, this one named.
	InUnnamedModule
	// NotSamePackage: both unnamed, different packages.
	NotSamePackage
)

func (s Scope) phrase() string {
	switch s {
	case NotSameModule:
		return "is not in same module"
	case InNamedModule:
		return "is in a named module"
	case InUnnamedModule:
		return "is in unnamed module"
	default:
		return "is not in same package"
	}
}
