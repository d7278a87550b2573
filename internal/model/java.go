package model

import (
	"strconv"
	"strings"
)

// PackageName returns the package of a fully-qualified class name, or "" for
// the default package.
func PackageName(className string) string {
	if i := strings.LastIndexByte(className, '.'); i >= 0 {
		return className[:i]
	}
	return ""
}

// InSamePackage reports whether two class names share a package.
func InSamePackage(a, b string) bool {
	return PackageName(a) == PackageName(b)
}

// TopLevelClassName strips nested class suffixes ("a.Outer$Inner" -> "a.Outer").
func TopLevelClassName(className string) string {
	if i := strings.IndexByte(className, '$'); i >= 0 {
		return className[:i]
	}
	return className
}

// InSameTopLevelClass reports whether two classes are the same class, or an
// outer/inner pair, or siblings nested in the same outer class.
func InSameTopLevelClass(a, b string) bool {
	return TopLevelClassName(a) == TopLevelClassName(b)
}

// TypeName converts a field descriptor ("I", "[Ljava/lang/String;") into a
// Java type name ("int", "java.lang.String[]"). Malformed input is returned
// unchanged.
func TypeName(descriptor string) string {
	name, n := typeName(descriptor, 0)
	if n != len(descriptor) {
		return descriptor
	}
	return name
}

// ReturnType returns the Java type name of a method descriptor's return type.
func ReturnType(methodDescriptor string) string {
	i := strings.IndexByte(methodDescriptor, ')')
	if i < 0 {
		return methodDescriptor
	}
	return TypeName(methodDescriptor[i+1:])
}

// ParameterTypes returns the Java type names of a method descriptor's
// parameters, in order.
func ParameterTypes(methodDescriptor string) []string {
	if !strings.HasPrefix(methodDescriptor, "(") {
		return nil
	}
	var types []string
	pos := 1
	for pos < len(methodDescriptor) && methodDescriptor[pos] != ')' {
		name, next := typeName(methodDescriptor, pos)
		if next <= pos {
			break
		}
		types = append(types, name)
		pos = next
	}
	return types
}

// typeName decodes one field type starting at pos and returns the type name
// and the position after it. On malformed input the returned position is
// not advanced past pos.
func typeName(d string, pos int) (string, int) {
	dims := 0
	for pos < len(d) && d[pos] == '[' {
		dims++
		pos++
	}
	if pos >= len(d) {
		return d, pos - dims
	}
	var base string
	switch d[pos] {
	case 'B':
		base = "byte"
	case 'C':
		base = "char"
	case 'D':
		base = "double"
	case 'F':
		base = "float"
	case 'I':
		base = "int"
	case 'J':
		base = "long"
	case 'S':
		base = "short"
	case 'Z':
		base = "boolean"
	case 'V':
		base = "void"
	case 'L':
		end := strings.IndexByte(d[pos:], ';')
		if end < 0 {
			return d, pos - dims
		}
		base = strings.ReplaceAll(d[pos+1:pos+end], "/", ".")
		pos += end
	default:
		return d, pos - dims
	}
	return base + strings.Repeat("[]", dims), pos + 1
}

// JavaVersion maps a class-file major version to the Java release number
// (52 -> 8, 61 -> 17). Versions before Java 5 map to 1..4 (1.1 .. 1.4).
func JavaVersion(major int) int {
	if major < 45 {
		return 0
	}
	return major - 44
}

// JavaVersionName renders a class-file major version as "Java 1.4" or "Java 17".
func JavaVersionName(major int) string {
	v := JavaVersion(major)
	switch {
	case v == 0:
		return "unknown"
	case v < 5:
		return "Java 1." + strconv.Itoa(v)
	default:
		return "Java " + strconv.Itoa(v)
	}
}
