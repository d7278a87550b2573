package rules

import (
	"strings"

	"github.com/jward/jarlink/internal/model"
)

const mainDescriptor = "([Ljava/lang/String;)V"

// CheckManifest validates the Main-Class and Class-Path attributes of the
// archive's manifest.
func (ch *Checker) CheckManifest(a *model.Archive) []Block {
	var blocks []Block
	if main, ok := a.Manifest["Main-Class"]; ok {
		if issues := checkMainClass(a, main); len(issues) > 0 {
			blocks = append(blocks, Block{Headline: "Main-Class: " + main, Issues: issues})
		}
	}
	if cp, ok := a.Manifest["Class-Path"]; ok {
		if issues := ch.checkClassPath(cp); len(issues) > 0 {
			blocks = append(blocks, Block{Headline: "Class-Path: " + cp, Issues: issues})
		}
	}
	return blocks
}

func checkMainClass(a *model.Archive, name string) []Issue {
	c := a.Class(name)
	if c == nil {
		return []Issue{{Kind: MainClassNotFound, Subject: name}}
	}
	m := c.Method("main", mainDescriptor)
	if m == nil {
		return []Issue{{Kind: MainMethodNotFound, Subject: name}}
	}
	var issues []Issue
	if !m.Access.IsPublic() {
		issues = append(issues, Issue{Kind: MainMethodNotPublic, Subject: m.DisplayName()})
	}
	if !m.IsStatic() {
		issues = append(issues, Issue{Kind: MainMethodNotStatic, Subject: m.DisplayName()})
	}
	return issues
}

func (ch *Checker) checkClassPath(value string) []Issue {
	var set issueSet
	for _, elem := range strings.Fields(value) {
		if !strings.HasSuffix(elem, ".jar") {
			set.add(Issue{Kind: ClassPathNotAJar, Subject: elem})
			continue
		}
		if ch.cp.Archive(elem) == nil {
			set.add(Issue{Kind: ClassPathJarNotFound, Subject: elem})
		}
	}
	return set.issues
}
