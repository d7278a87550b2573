package jarlink

import (
	"fmt"

	"github.com/jward/jarlink/internal/snapshot"
)

// LoadInput reads a classpath snapshot file and returns the Input it
// describes, plus the Options recorded in the snapshot. Callers append
// their own options after these to override them.
func LoadInput(path string) (Input, []Option, error) {
	s, err := snapshot.Load(path)
	if err != nil {
		return Input{}, nil, fmt.Errorf("jarlink: %w", err)
	}
	return SnapshotInput(s)
}

// SnapshotInput converts a decoded snapshot.
func SnapshotInput(s *snapshot.Snapshot) (Input, []Option, error) {
	src, err := s.Build()
	if err != nil {
		return Input{}, nil, fmt.Errorf("jarlink: %w", err)
	}
	in := Input{
		Archives: src.Classpath,
		Provided: src.Provided,
		Runtime:  src.Runtime,
	}

	var opts []Option
	if s.Options.Strategy != "" {
		strategy, err := ParseStrategy(s.Options.Strategy)
		if err != nil {
			return Input{}, nil, fmt.Errorf("jarlink: snapshot options: %w", err)
		}
		opts = append(opts, WithStrategy(strategy))
	}
	if s.Options.Release != 0 {
		opts = append(opts, WithTargetRelease(s.Options.Release))
	}
	if s.Options.IgnoreMissingAnnotations {
		opts = append(opts, WithIgnoreMissingAnnotations(true))
	}
	if s.Options.ReportOwnerClassNotFound {
		opts = append(opts, WithReportOwnerClassNotFound(true))
	}
	return in, opts, nil
}
