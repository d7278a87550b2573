package jarlink

import (
	"github.com/jward/jarlink/internal/classpath"
	"github.com/jward/jarlink/internal/model"
	"github.com/jward/jarlink/internal/rules"
	"github.com/jward/jarlink/internal/store"
)

// Public type aliases for the internal types that appear in the Engine and
// Report APIs. These are Go type aliases (=), so no conversion is needed.

type Store = store.Store
type Issue = rules.Issue
type Block = rules.Block
type Kind = rules.Kind
type Strategy = classpath.Strategy
type Archive = model.Archive
type ClassRecord = model.ClassRecord
type ModuleDescriptor = model.ModuleDescriptor

const (
	ParentFirst = classpath.ParentFirst
	ParentLast  = classpath.ParentLast
)

// ParseStrategy accepts "parent-first" and "parent-last"; "" is parent-last.
func ParseStrategy(s string) (Strategy, error) {
	return classpath.ParseStrategy(s)
}
