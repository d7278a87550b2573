package jarlink

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/jarlink/internal/classpath"
	"github.com/jward/jarlink/internal/model"
	"github.com/jward/jarlink/internal/rules"
)

// workItem is one class to check and the slot its issues go to.
type workItem struct {
	archive int
	slot    int
	class   *model.ClassRecord
}

// archiveSlots collects the results for one archive in class order.
type archiveSlots struct {
	archive  *model.Archive
	manifest []Block
	classes  []*model.ClassRecord
	issues   [][]Issue
}

// checkParallel checks classes using a three-phase pipeline:
//
//	Phase A (serial):   Manifest checks, enumerate classes into indexed slots.
//	Phase B (parallel): Check classes via a worker pool.
//	Phase C (serial):   Collect results by slot and build rows in class order.
//
// The classpath is read-only during Phase B, so workers share it without
// locking.
func (e *Engine) checkParallel(ctx context.Context, cp *classpath.Classpath, checker *rules.Checker) ([]Row, error) {
	// ---- Phase A: Serial preparation ----
	archives := cp.Archives()
	slots := make([]archiveSlots, len(archives))
	var items []workItem
	for i, a := range archives {
		classes := cp.Classes(a)
		slots[i] = archiveSlots{
			archive:  a,
			manifest: checker.CheckManifest(a),
			classes:  classes,
			issues:   make([][]Issue, len(classes)),
		}
		for j, c := range classes {
			items = append(items, workItem{archive: i, slot: j, class: c})
		}
	}

	if len(items) > 0 {
		if err := e.runWorkers(ctx, checker, items, slots); err != nil {
			return nil, err
		}
	}

	// ---- Phase C: Ordered assembly ----
	rows := make([]Row, 0, len(slots))
	for _, s := range slots {
		blocks := s.manifest
		for j, issues := range s.issues {
			if len(issues) > 0 {
				blocks = append(blocks, Block{Headline: s.classes[j].Name, Issues: issues})
			}
		}
		e.logArchive(s.archive, len(s.classes), blocks)
		if len(blocks) > 0 {
			rows = append(rows, Row{Archive: s.archive.FileName, Blocks: blocks})
		}
	}
	return rows, nil
}

// runWorkers is Phase B. Results land in slots by index, never in
// completion order.
func (e *Engine) runWorkers(ctx context.Context, checker *rules.Checker, items []workItem, slots []archiveSlots) error {
	numWorkers := e.workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = max(1, min(numWorkers, len(items)))

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item   workItem
		issues []Issue
		err    error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				if err := ctx.Err(); err != nil {
					resultCh <- result{item: item, err: err}
					continue
				}
				issues, err := checker.Check(item.class)
				resultCh <- result{item: item, issues: issues, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var errs []error
	for res := range resultCh {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("check %s: %w", res.item.class.Name, res.err))
			continue
		}
		slots[res.item.archive].issues[res.item.slot] = res.issues
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("jarlink: analyze: %w", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("jarlink: parallel check had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}
