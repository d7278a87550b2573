// Package jarlink finds binary compatibility problems between the JAR files
// of a Java classpath before the JVM does: references to classes, fields,
// and methods that are missing, inaccessible, or incompatible, broken class
// hierarchies, and invalid manifest entries.
//
// # Pipeline
//
// An analysis runs in four steps:
//
//  1. Assemble: the analyzed archives, the provided archives, and the
//     runtime archives are indexed as a chain of classpaths. The loading
//     strategy decides whether a parent's definition of a class wins over
//     the analyzed archive's own (parent-first) or not (parent-last).
//
//  2. Check: every class of every analyzed archive is checked against the
//     chain. Classes are checked by a worker pool unless [WithParallel] is
//     false; results are always collected in archive and class order.
//
//  3. Filter: with [WithFilter], a Risor script decides issue by issue
//     what stays in the report.
//
//  4. Persist: with [WithStore], the report is written to SQLite as a run
//     that later commands can list and query.
//
// # Usage
//
// Load a classpath snapshot, analyze it, and print the report:
//
//	in, opts, err := jarlink.LoadInput("snapshot.yaml")
//	if err != nil { ... }
//
//	e := jarlink.New(append(opts, jarlink.WithTargetRelease(17))...)
//	report, err := e.Analyze(ctx, in)
//	if err != nil { ... }
//	fmt.Print(report.Text())
//
// Archives can also be built directly with the model types and passed in an
// [Input].
//
// # Report
//
// A [Report] has one [Row] per archive with issues. Each row holds blocks:
// manifest attribute blocks first, then one block per class in name order.
// Issues within a class follow the order of the checks and of the class's
// references; the resolution trace of a member reference is attached to the
// last issue of that reference.
//
// # Stored runs
//
// [QueryBuilder] reads persisted runs back. [QueryBuilder.Diff] compares two
// runs and reports which findings appeared and which were fixed:
//
//	d, err := e.Query().Diff(baseID, "") // "" is the latest run
//
// # Scripts
//
// Filter scripts receive the issue as a map (kind, archive, class, text,
// notes) and return whether to keep it. Given a store, scripts can also
// ask whether an earlier run already reported the issue. Ready-made filters
// live under scripts/filters/.
package jarlink
