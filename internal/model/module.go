package model

import (
	"fmt"
	"slices"
	"sort"
)

// AllUnnamed is the reader name used in qualified exports/opens to target
// every unnamed module.
const AllUnnamed = "ALL-UNNAMED"

// ModuleDescriptor describes the module an archive belongs to.
//
// Exports and Opens map a package name to the modules allowed to read it; an
// empty list is an unqualified export/open.
type ModuleDescriptor struct {
	Name      string
	Automatic bool
	Requires  []string
	Exports   map[string][]string
	Opens     map[string][]string
}

// Unnamed is the descriptor shared by all classes outside a named module.
var Unnamed = &ModuleDescriptor{Name: "UNNAMED"}

// IsNamed reports whether m is a named (explicit or automatic) module.
func (m *ModuleDescriptor) IsNamed() bool { return m != nil && m != Unnamed }

// IsUnnamed reports whether m is the unnamed module.
func (m *ModuleDescriptor) IsUnnamed() bool { return !m.IsNamed() }

// IsAutomatic reports whether m is an automatic module.
func (m *ModuleDescriptor) IsAutomatic() bool { return m.IsNamed() && m.Automatic }

// IsSame reports whether both descriptors denote the same module.
func (m *ModuleDescriptor) IsSame(other *ModuleDescriptor) bool {
	if m.IsUnnamed() || other.IsUnnamed() {
		return m.IsUnnamed() && other.IsUnnamed()
	}
	return m.Name == other.Name
}

// ReaderName is the name other modules see this module under when checking
// qualified exports.
func (m *ModuleDescriptor) ReaderName() string {
	if m.IsUnnamed() {
		return AllUnnamed
	}
	return m.Name
}

// IsExported reports whether pkg is exported to the reader module. Unnamed
// and automatic modules export every package.
func (m *ModuleDescriptor) IsExported(pkg, reader string) bool {
	if m.IsUnnamed() || m.Automatic {
		return true
	}
	return grants(m.Exports, pkg, reader)
}

// IsOpen reports whether pkg is opened for reflection to the reader module.
// Unnamed and automatic modules open every package.
func (m *ModuleDescriptor) IsOpen(pkg, reader string) bool {
	if m.IsUnnamed() || m.Automatic {
		return true
	}
	return grants(m.Opens, pkg, reader)
}

func grants(table map[string][]string, pkg, reader string) bool {
	readers, ok := table[pkg]
	if !ok {
		return false
	}
	if len(readers) == 0 {
		return true
	}
	if reader == Unnamed.Name {
		reader = AllUnnamed
	}
	return slices.Contains(readers, reader)
}

// ExportedPackages returns the exported package names, sorted.
func (m *ModuleDescriptor) ExportedPackages() []string {
	pkgs := make([]string, 0, len(m.Exports))
	for p := range m.Exports {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	return pkgs
}

func (m *ModuleDescriptor) String() string {
	switch {
	case m.IsUnnamed():
		return "ModuleDescriptor[UNNAMED]"
	case m.Automatic:
		return fmt.Sprintf("ModuleDescriptor[%s,automatic]", m.Name)
	default:
		return fmt.Sprintf("ModuleDescriptor[%s,requires=%v,exports=%v]", m.Name, m.Requires, m.ExportedPackages())
	}
}
