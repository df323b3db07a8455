// Package pipeline resolves an input path into work items, drives a
// per-command processor over them, and reports the batch outcome.
//
// Types:
//   - WorkItem: a file, or a group directory (plus optional sub-folder)
//   - Processor: Anonymizer, Sorter, Loader, and Rewriter (also the dumper)
//   - Orchestrator / BatchResult: sequential run, per-item failure isolation
//   - Reporter / Report: ordered failure list and its YAML form
//   - RunStats: counters and byte totals
//
// Each item moves through read, parse, transform and place/write. A failure
// at any stage is terminal for that item only; in single-item runs it is the
// run's failure. There is no retry, no parallelism and no cancellation.
package pipeline
