package pipeline

import (
	"path/filepath"

	"github.com/backmassage/dcmtool/internal/dicomstore"
	"github.com/backmassage/dcmtool/internal/fault"
	"github.com/backmassage/dcmtool/internal/rules"
)

// Anonymizer re-encodes each file under a rule set and writes it to
// <outDir>/<basename>. The rule set is shared read-only by every item.
type Anonymizer struct {
	store  dicomstore.Store
	rules  *rules.RuleSet
	outDir string
}

// NewAnonymizer returns an anonymizer writing into outDir, which must exist.
func NewAnonymizer(store dicomstore.Store, rs *rules.RuleSet, outDir string) *Anonymizer {
	return &Anonymizer{store: store, rules: rs, outDir: outDir}
}

// Verb implements Processor.
func (a *Anonymizer) Verb() string { return "Anonymizing" }

// Process implements Processor: read, parse, encode, write.
func (a *Anonymizer) Process(item WorkItem) (Outcome, error) {
	data, err := readItem(item.Path)
	if err != nil {
		return Outcome{}, err
	}
	md, err := a.store.Parse(data)
	if err != nil {
		return Outcome{}, failAt(StageParse, err)
	}
	out, err := a.store.Encode(md, a.rules)
	if err != nil {
		return Outcome{}, failAt(StageTransform, err)
	}

	dest := filepath.Join(a.outDir, filepath.Base(item.Path))
	if err := writeAtomic(dest, out, 0o644); err != nil {
		return Outcome{}, failAt(StageWrite, fault.New(fault.KindIO, "write", dest, err))
	}
	return Outcome{Dest: dest, InBytes: int64(len(data)), OutBytes: int64(len(out))}, nil
}
