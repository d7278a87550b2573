package resolve

import "github.com/jward/jarlink/internal/model"

// AccessCheck applies Java access control between classes and members.
// Module readability is checked separately by the rule engine.
type AccessCheck struct {
	r *Resolver
}

// NewAccessCheck returns an AccessCheck that resolves supertypes through r.
func NewAccessCheck(r *Resolver) *AccessCheck {
	return &AccessCheck{r: r}
}

// ClassAccess reports whether src may access the target class: public
// classes are accessible from everywhere, package-private ones only from
// the same package.
func (a *AccessCheck) ClassAccess(src, target *model.ClassRecord) bool {
	if target.IsPublic() {
		return true
	}
	if src.Name == target.Name {
		return true
	}
	return model.InSamePackage(src.Name, target.Name)
}

// MemberAccess reports whether src may access member m.
func (a *AccessCheck) MemberAccess(src *model.ClassRecord, m *model.MemberRecord) bool {
	if m.Access.IsPublic() {
		return true
	}
	// nestmates: outer and inner classes are compiled together
	if model.InSameTopLevelClass(src.Name, m.Owner) {
		return true
	}
	if m.Access.IsPrivate() {
		return false
	}
	if model.InSamePackage(src.Name, m.Owner) {
		return true
	}
	if !m.Access.IsProtected() {
		return false
	}
	return a.IsSubtype(src, m.Owner)
}

// IsSubtype reports whether target is a proper supertype of src. Supertypes
// that cannot be resolved end their branch of the walk.
func (a *AccessCheck) IsSubtype(src *model.ClassRecord, target string) bool {
	visited := map[string]bool{src.Name: true}
	queue := supertypes(src)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == target {
			return true
		}
		if visited[name] {
			continue
		}
		visited[name] = true
		if c := a.r.Class(name); c != nil {
			queue = append(queue, supertypes(c)...)
		}
	}
	return false
}

func supertypes(c *model.ClassRecord) []string {
	names := make([]string, 0, len(c.Interfaces)+1)
	if c.SuperName != "" {
		names = append(names, c.SuperName)
	}
	return append(names, c.Interfaces...)
}
