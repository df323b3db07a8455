package pipeline

import (
	"os"

	"github.com/backmassage/dcmtool/internal/display"
	"github.com/backmassage/dcmtool/internal/fault"
	"github.com/backmassage/dcmtool/internal/logging"
)

// Stage names the step of an item's processing that failed.
type Stage string

const (
	StageRead      Stage = "read"
	StageParse     Stage = "parse"
	StageTransform Stage = "transform"
	StagePlace     Stage = "place"
	StageWrite     Stage = "write"
)

// StageError ties a per-item failure to the stage it happened in. The message
// is the cause's; the stage is reported separately.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

func failAt(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Outcome is what a processor reports for a successful item.
type Outcome struct {
	Dest     string // Written or placed file, if any.
	Detail   string // Short human note for the log line.
	Skipped  bool
	InBytes  int64
	OutBytes int64
}

// Processor handles one work item end to end. A returned error is terminal
// for that item only.
type Processor interface {
	// Verb labels the log line of each item ("Sorting", "Loading").
	Verb() string
	Process(item WorkItem) (Outcome, error)
}

// Shape is the execution shape of a run.
type Shape int

const (
	// ShapeSingle: exactly one item; its failure is the run's failure.
	ShapeSingle Shape = iota
	// ShapeBatch: failures are recorded and the loop moves on.
	ShapeBatch
)

// ItemResult is the outcome of one item, in processing order.
type ItemResult struct {
	Item    WorkItem
	Outcome Outcome
	Err     error
}

// BatchResult is the finalized record of a run.
type BatchResult struct {
	Shape   Shape
	Items   []ItemResult
	Stats   RunStats
	Summary Summary
}

// Err returns the failure of a single-item run, or nil.
func (r *BatchResult) Err() error {
	if r.Shape != ShapeSingle {
		return nil
	}
	for _, it := range r.Items {
		if it.Err != nil {
			return it.Err
		}
	}
	return nil
}

// ExitCode maps the result onto the process exit status: a single-item
// failure is 1; a batch is 0 unless strict is set and something failed.
func (r *BatchResult) ExitCode(strict bool) int {
	if r.Err() != nil {
		return 1
	}
	if strict && r.Stats.Failed > 0 {
		return 1
	}
	return 0
}

// Report converts the result into its persisted form.
func (r *BatchResult) Report(command, input string) Report {
	return Report{
		Command:   command,
		Input:     input,
		Total:     r.Stats.Total,
		Processed: r.Stats.Processed,
		Skipped:   r.Stats.Skipped,
		Failed:    r.Stats.Failed,
		Failures:  r.Summary.Failures,
	}
}

// Orchestrator drives a processor over work items, one at a time, with no
// retry. Every per-item failure goes to the reporter.
type Orchestrator struct {
	log *logging.Logger
}

// NewOrchestrator returns an orchestrator logging through log.
func NewOrchestrator(log *logging.Logger) *Orchestrator {
	return &Orchestrator{log: log}
}

// Run processes items in order and returns the finalized result.
func (o *Orchestrator) Run(items []WorkItem, p Processor, shape Shape) *BatchResult {
	res := &BatchResult{Shape: shape, Items: make([]ItemResult, 0, len(items))}
	stats := &res.Stats
	stats.Total = len(items)
	reporter := NewReporter()

	if shape == ShapeBatch {
		o.log.Info("Found %s", display.Plural(stats.Total, "item"))
	}

	for i, item := range items {
		stats.Current = i + 1
		if shape == ShapeBatch {
			o.log.Info("[%d/%d] %s %s", stats.Current, stats.Total, p.Verb(), item)
		} else {
			o.log.Debug("%s %s", p.Verb(), item)
		}

		out, err := o.process(p, item)
		res.Items = append(res.Items, ItemResult{Item: item, Outcome: out, Err: err})
		if err != nil {
			stats.Failed++
			reporter.Record(item, err)
			o.log.Error("%s: %v", item, err)
			continue
		}

		stats.TotalInputBytes += out.InBytes
		stats.TotalOutputBytes += out.OutBytes
		if out.Skipped {
			stats.Skipped++
			o.log.Warn("Skip (exists): %s", out.Dest)
			continue
		}
		stats.Processed++
		switch {
		case out.Dest != "" && out.Detail != "":
			o.log.Success("  -> %s (%s)", out.Dest, out.Detail)
		case out.Dest != "":
			o.log.Success("  -> %s", out.Dest)
		case out.Detail != "":
			o.log.Success("  %s", out.Detail)
		}
	}

	res.Summary = reporter.Summarize()
	if shape == ShapeBatch {
		o.logSummary(res)
	}
	return res
}

// process runs one item. Errors without a kind are reported as IO faults.
func (o *Orchestrator) process(p Processor, item WorkItem) (Outcome, error) {
	out, err := p.Process(item)
	if err == nil {
		return out, nil
	}
	if _, ok := fault.KindOf(err); !ok {
		err = fault.New(fault.KindIO, "process", item.String(), err)
	}
	return Outcome{}, err
}

func (o *Orchestrator) logSummary(res *BatchResult) {
	s := res.Stats
	o.log.Info("==============================")
	o.log.Info("Done: %d processed, %d skipped, %d failed", s.Processed, s.Skipped, s.Failed)
	if s.TotalInputBytes > 0 || s.TotalOutputBytes > 0 {
		o.log.Info("Data: %s in, %s out", display.FormatBytes(s.TotalInputBytes), display.FormatBytes(s.TotalOutputBytes))
	}
	if res.Summary.Count == 0 {
		o.log.Success("All good!")
		return
	}
	o.log.Warn("Received %d error(s)", res.Summary.Count)
	o.log.Warn("Path(s):")
	for _, f := range res.Summary.Failures {
		o.log.Warn("- %s", f.Input)
	}
}

// readItem reads a work item file in full.
func readItem(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failAt(StageRead, fault.New(fault.KindIO, "read", path, err))
	}
	return data, nil
}
