package rules

import (
	"fmt"
	"strings"

	"github.com/jward/jarlink/internal/model"
)

// Issue is one linkage problem found in a class or archive. Only the fields
// relevant to Kind are set; Text renders them.
type Issue struct {
	Kind Kind

	// Subject is what the issue is about: a class name, a class or member
	// display name, a manifest entry.
	Subject string

	// Declared is the display name of the declaration a reference resolved
	// to, for the member kinds.
	Declared string

	// From is the referencing class, for the illegal access kinds.
	From string

	// Member distinguishes field from method wording.
	Member model.MemberKind

	// PackageFound is set for not-found classes whose package exists.
	PackageFound bool

	// Module names the module that does not export the package.
	Module string

	// Interface is set when a class method reference hit an interface.
	Interface bool

	Scope Scope

	// Compiled and Bundled are Java versions for VersionMismatch.
	Compiled int
	Bundled  int

	// Notes are follow-up lines such as resolution trace steps.
	Notes []string
}

// Text renders the issue's headline.
func (i Issue) Text() string {
	switch i.Kind {
	case ClassNotFound:
		return "Class not found: " + i.Subject + packageHint(i.PackageFound)
	case AnnotationNotFound:
		return "Annotation not found: " + i.Subject + packageHint(i.PackageFound)
	case ClassNotAccessible:
		return "Class is not accessible: " + i.Subject
	case AnnotationNotAccessible:
		return "Annotation is not accessible: " + i.Subject
	case ModuleNotExported:
		return fmt.Sprintf("Class is not exported by module %s: %s", i.Module, i.Subject)
	case NotAnAnnotation:
		return "Class is not an annotation: " + i.Subject
	case MemberNotFound:
		return memberWord(i.Member) + " not found: " + i.Subject
	case OwnerClassNotAccessible:
		return fmt.Sprintf("Illegal access from %s to class: %s", i.From, i.Subject)
	case MemberNotAccessible:
		return fmt.Sprintf("Illegal access from %s: %s -> %s", i.From, i.Subject, i.Declared)
	case StaticInstanceMismatch:
		return fmt.Sprintf("Instance access to static %s: %s -> %s", i.Member, i.Subject, i.Declared)
	case InstanceStaticMismatch:
		return fmt.Sprintf("Static access to instance %s: %s -> %s", i.Member, i.Subject, i.Declared)
	case IllegalWriteToFinalField:
		return fmt.Sprintf("Write access to final field: %s -> %s", i.Subject, i.Declared)
	case IncompatibleMemberType:
		return fmt.Sprintf("Incompatible %s type: %s -> %s", i.Member, i.Subject, i.Declared)
	case InterfaceClassMismatch:
		if i.Interface {
			return fmt.Sprintf("Class method reference to interface: %s -> %s", i.Subject, i.Declared)
		}
		return fmt.Sprintf("Interface method reference to class: %s -> %s", i.Subject, i.Declared)
	case SuperclassNotFound:
		return "Superclass not found: " + i.Subject
	case SuperclassFinal:
		return "Superclass is final: " + i.Subject
	case SuperclassAnnotation:
		return "Superclass is an annotation: " + i.Subject
	case SuperclassInterface:
		return "Superclass is an interface: " + i.Subject
	case SuperclassEnum:
		return "Superclass is an enum: " + i.Subject
	case SuperclassIsRecord:
		return "Superclass is a record class: " + i.Subject
	case SuperclassNotAccessible:
		return "Superclass is not accessible: " + i.Subject
	case InterfaceNotFound:
		return "Interface not found: " + i.Subject
	case InterfaceEnum:
		return "Interface is an enum: " + i.Subject
	case InterfaceAbstractClass:
		return "Interface is an abstract class: " + i.Subject
	case InterfaceIsClass:
		return "Interface is a class: " + i.Subject
	case InterfaceNotAccessible:
		return "Interface is not accessible: " + i.Subject
	case PermittedSubclassNotFound:
		return "Permitted subclass not found: " + i.Subject
	case PermittedSubclassInvalidHierarchy:
		return "Permitted subclass does not extend sealed class: " + i.Subject
	case PermittedSubclassWrongScope:
		return "Permitted subclass " + i.Scope.phrase() + ": " + i.Subject
	case PermittedSubclassNotAccessible:
		return "Permitted subclass is not accessible: " + i.Subject
	case NotAPermittedSubclass:
		return "Class is not a permitted subclass of sealed superclass: " + i.Subject
	case SealedSuperclassWrongScope:
		return "Sealed superclass " + i.Scope.phrase() + ": " + i.Subject
	case AbstractMethodNotImplemented:
		return "Abstract method not implemented: " + i.Subject
	case VersionMismatch:
		return fmt.Sprintf("Compiled for Java %d, but bundled for Java %d.", i.Compiled, i.Bundled)
	case MainClassNotFound:
		return "Class not found: " + i.Subject
	case MainMethodNotFound:
		return "Main method not found: public static void main(String[])"
	case MainMethodNotPublic:
		return "Main method is not public: " + i.Subject
	case MainMethodNotStatic:
		return "Main method is not static: " + i.Subject
	case ClassPathJarNotFound:
		return "JAR file not found: " + i.Subject
	case ClassPathNotAJar:
		return "Element is not a JAR file: " + i.Subject
	default:
		return i.Kind.String() + ": " + i.Subject
	}
}

// Lines renders the headline followed by the notes.
func (i Issue) Lines() []string {
	return append([]string{i.Text()}, i.Notes...)
}

func (i Issue) String() string {
	return strings.Join(i.Lines(), "\n")
}

func packageHint(found bool) string {
	if found {
		return " (package found)"
	}
	return " (package not found)"
}

func memberWord(k model.MemberKind) string {
	if k == model.FieldMember {
		return "Field"
	}
	return "Method"
}

// Block groups the issues of one class, or of one manifest attribute,
// under a headline.
type Block struct {
	Headline string
	Issues   []Issue
}

// Bullet prefixes every issue headline in rendered blocks.
const Bullet = "•"

// Text renders the block as the headline followed by one bulleted line per
// issue; notes follow their issue unbulleted.
func (b Block) Text() string {
	var sb strings.Builder
	sb.WriteString(b.Headline)
	for _, is := range b.Issues {
		sb.WriteString("\n")
		sb.WriteString(Bullet)
		sb.WriteString(" ")
		sb.WriteString(is.Text())
		for _, n := range is.Notes {
			sb.WriteString("\n")
			sb.WriteString(n)
		}
	}
	return sb.String()
}
