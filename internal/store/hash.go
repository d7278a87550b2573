package store

import (
	"crypto/sha256"
	"fmt"
)

// ComputeReportHash computes a deterministic hash of a run's findings. Order
// is significant: two runs with the same hash rendered the same report.
// Sequence numbers and IDs do not affect the hash.
func ComputeReportHash(findings []Finding) string {
	h := sha256.New()
	for _, f := range findings {
		fmt.Fprintf(h, "archive:%s\n", f.Archive)
		fmt.Fprintf(h, "headline:%s\n", f.Headline)
		fmt.Fprintf(h, "kind:%s\n", f.Kind)
		fmt.Fprintf(h, "text:%s\n", f.Text)
		for _, n := range f.Notes {
			fmt.Fprintf(h, "note:%s\n", n)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
