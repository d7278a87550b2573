package rules

import (
	"strings"

	"github.com/jward/jarlink/internal/model"
)

func (ch *Checker) checkHierarchy(c *model.ClassRecord, out *issueSet) {
	if c.SuperName != "" {
		if super := ch.resolver.Class(c.SuperName); super == nil {
			out.add(Issue{Kind: SuperclassNotFound, Subject: c.SuperName})
		} else {
			ch.checkSuperclass(c, super, out)
		}
	}

	for _, name := range c.Interfaces {
		if iface := ch.resolver.Class(name); iface == nil {
			out.add(Issue{Kind: InterfaceNotFound, Subject: name})
		} else {
			ch.checkInterface(c, iface, out)
		}
	}

	for _, name := range c.PermittedSubclasses {
		if sub := ch.resolver.Class(name); sub == nil {
			out.add(Issue{Kind: PermittedSubclassNotFound, Subject: name})
		} else {
			ch.checkPermittedSubclass(c, sub, out)
		}
	}
}

func (ch *Checker) checkSuperclass(c, super *model.ClassRecord, out *issueSet) {
	display := super.DisplayName()
	if super.IsFinal() {
		out.add(Issue{Kind: SuperclassFinal, Subject: display})
	}

	if super.IsSealed() {
		if !super.Permits(c.Name) {
			out.add(Issue{Kind: NotAPermittedSubclass, Subject: display})
		} else if scope, bad := sealedScope(c, super); bad {
			out.add(Issue{Kind: SealedSuperclassWrongScope, Subject: display, Scope: scope})
		}
	}

	switch {
	case super.IsAnnotation():
		out.add(Issue{Kind: SuperclassAnnotation, Subject: display})
	case super.IsInterface():
		out.add(Issue{Kind: SuperclassInterface, Subject: display})
	case super.IsEnum():
		// constant bodies of an enum extend their enclosing enum
		if !c.IsEnum() || !strings.HasPrefix(c.Name, super.Name+"$") {
			out.add(Issue{Kind: SuperclassEnum, Subject: display})
		}
	case super.IsRecord():
		out.add(Issue{Kind: SuperclassIsRecord, Subject: display})
	}

	if !ch.access.ClassAccess(c, super) {
		out.add(Issue{Kind: SuperclassNotAccessible, Subject: display})
	}
}

func (ch *Checker) checkInterface(c, iface *model.ClassRecord, out *issueSet) {
	display := iface.DisplayName()
	switch {
	case iface.IsInterface():
		// includes annotation interfaces
	case iface.IsEnum():
		out.add(Issue{Kind: InterfaceEnum, Subject: display})
	case iface.IsAbstract():
		out.add(Issue{Kind: InterfaceAbstractClass, Subject: display})
	default:
		out.add(Issue{Kind: InterfaceIsClass, Subject: display})
	}

	if !ch.access.ClassAccess(c, iface) {
		out.add(Issue{Kind: InterfaceNotAccessible, Subject: display})
	}
}

// checkPermittedSubclass validates one permitted subclass of the sealed
// class c.
func (ch *Checker) checkPermittedSubclass(c, sub *model.ClassRecord, out *issueSet) {
	display := sub.DisplayName()
	if sub.SuperName != c.Name && !contains(sub.Interfaces, c.Name) {
		out.add(Issue{Kind: PermittedSubclassInvalidHierarchy, Subject: display})
	}
	if scope, bad := sealedScope(c, sub); bad {
		out.add(Issue{Kind: PermittedSubclassWrongScope, Subject: display, Scope: scope})
	}
	if !ch.access.ClassAccess(c, sub) {
		out.add(Issue{Kind: PermittedSubclassNotAccessible, Subject: display})
	}
}

// sealedScope checks that a sealed class and its permitted subclass share
// a named module, or a package of the unnamed module.
func sealedScope(c, other *model.ClassRecord) (Scope, bool) {
	mod, otherMod := c.Module(), other.Module()
	switch {
	case otherMod.IsNamed() && mod.IsNamed():
		return NotSameModule, !otherMod.IsSame(mod)
	case otherMod.IsNamed():
		return InNamedModule, true
	case mod.IsNamed():
		return InUnnamedModule, true
	default:
		return NotSamePackage, !model.InSamePackage(c.Name, other.Name)
	}
}

// checkAbstractMethods reports abstract methods of supertypes that a
// concrete class does not implement.
func (ch *Checker) checkAbstractMethods(c *model.ClassRecord, out *issueSet) {
	if c.IsAbstract() || c.IsInterface() {
		return
	}
	concrete, abstract := ch.collectMethods(c)
	for _, am := range abstract {
		implemented := false
		for _, cm := range concrete {
			if cm.Name == am.Name && cm.Descriptor == am.Descriptor {
				implemented = true
				break
			}
		}
		if !implemented {
			out.add(Issue{Kind: AbstractMethodNotImplemented, Subject: am.DisplayName()})
		}
	}
}

// collectMethods gathers the non-static, non-private methods of c and all
// its resolvable supertypes, superclass chain before interfaces, each type
// visited once.
func (ch *Checker) collectMethods(c *model.ClassRecord) (concrete, abstract []*model.MemberRecord) {
	visited := make(map[string]bool)
	var order []*model.ClassRecord

	// post-order walk: supertypes before the types that extend them
	type frame struct {
		class    *model.ClassRecord
		expanded bool
	}
	stack := []frame{{class: c}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.expanded {
			order = append(order, top.class)
			stack = stack[:len(stack)-1]
			continue
		}
		if visited[top.class.Name] {
			stack = stack[:len(stack)-1]
			continue
		}
		visited[top.class.Name] = true
		top.expanded = true
		cls := top.class

		var supers []*model.ClassRecord
		if cls.SuperName != "" {
			if s := ch.resolver.Class(cls.SuperName); s != nil {
				supers = append(supers, s)
			}
		}
		for _, name := range cls.Interfaces {
			if i := ch.resolver.Class(name); i != nil {
				supers = append(supers, i)
			}
		}
		for i := len(supers) - 1; i >= 0; i-- {
			if !visited[supers[i].Name] {
				stack = append(stack, frame{class: supers[i]})
			}
		}
	}

	for _, cls := range order {
		for _, m := range cls.Methods {
			if m.IsStatic() || m.IsPrivate() {
				continue
			}
			if m.IsAbstract() {
				abstract = append(abstract, m)
			} else {
				concrete = append(concrete, m)
			}
		}
	}
	return concrete, abstract
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
