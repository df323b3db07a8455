package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/dcmtool/internal/fault"
)

// Failure is one failed work item with enough context to reproduce it.
type Failure struct {
	Input  string `yaml:"input"`
	Stage  Stage  `yaml:"stage"`
	Kind   string `yaml:"kind"`
	Reason string `yaml:"reason"`
}

// Summary is the finalized failure list of a run.
type Summary struct {
	Count    int
	Failures []Failure
}

// Reporter collects per-item failures in the order they happen. Nothing it
// records is ever dropped or escalated.
type Reporter struct {
	failures []Failure
}

// NewReporter returns an empty reporter.
func NewReporter() *Reporter { return &Reporter{} }

// Record appends the failure of item. The stage and kind are taken from err
// when it carries them.
func (r *Reporter) Record(item WorkItem, err error) {
	f := Failure{Input: item.String(), Reason: "unknown error"}
	if err != nil {
		f.Reason = err.Error()
	}
	var se *StageError
	if errors.As(err, &se) {
		f.Stage = se.Stage
	}
	if k, ok := fault.KindOf(err); ok {
		f.Kind = k.String()
	}
	r.failures = append(r.failures, f)
}

// Len returns the number of recorded failures.
func (r *Reporter) Len() int { return len(r.failures) }

// Summarize returns the failure count and a copy of the failures.
func (r *Reporter) Summarize() Summary {
	return Summary{
		Count:    len(r.failures),
		Failures: append([]Failure(nil), r.failures...),
	}
}

// Report is the persisted form of a run, written with --report.
type Report struct {
	Command   string    `yaml:"command"`
	Input     string    `yaml:"input"`
	Total     int       `yaml:"total"`
	Processed int       `yaml:"processed"`
	Skipped   int       `yaml:"skipped"`
	Failed    int       `yaml:"failed"`
	Failures  []Failure `yaml:"failures,omitempty"`
}

// WriteYAML writes rep to path, replacing any existing file.
func WriteYAML(path string, rep Report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := writeAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// ReadYAML loads a report written by WriteYAML.
func ReadYAML(path string) (Report, error) {
	var rep Report
	data, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return rep, fmt.Errorf("parse report %s: %w", path, err)
	}
	return rep, nil
}
