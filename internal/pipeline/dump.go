package pipeline

import (
	"io"

	"github.com/backmassage/dcmtool/internal/dicomstore"
	"github.com/backmassage/dcmtool/internal/display"
	"github.com/backmassage/dcmtool/internal/fault"
	"github.com/backmassage/dcmtool/internal/rules"
)

// Rewriter parses one file, optionally dumps its metadata to w, and
// optionally writes it back to output under a rule set.
type Rewriter struct {
	store  dicomstore.Store
	w      io.Writer
	dump   bool
	rules  *rules.RuleSet
	output string
	verb   string
}

// NewDumper returns a processor that only prints the metadata to w.
func NewDumper(store dicomstore.Store, w io.Writer) *Rewriter {
	return &Rewriter{store: store, w: w, dump: true, verb: "Dumping"}
}

// NewRewriter returns the parse/dump/write processor. When output is empty
// nothing is written; rs may be nil only then.
func NewRewriter(store dicomstore.Store, w io.Writer, dump bool, rs *rules.RuleSet, output string) *Rewriter {
	return &Rewriter{store: store, w: w, dump: dump, rules: rs, output: output, verb: "Rewriting"}
}

// Verb implements Processor.
func (r *Rewriter) Verb() string { return r.verb }

// Process implements Processor.
func (r *Rewriter) Process(item WorkItem) (Outcome, error) {
	data, err := readItem(item.Path)
	if err != nil {
		return Outcome{}, err
	}
	md, err := r.store.Parse(data)
	if err != nil {
		return Outcome{}, failAt(StageParse, err)
	}
	out := Outcome{Detail: display.Plural(md.Len(), "attribute"), InBytes: int64(len(data))}

	if r.dump {
		if err := dicomstore.Dump(r.w, md); err != nil {
			return Outcome{}, failAt(StageWrite, fault.New(fault.KindIO, "dump", item.Path, err))
		}
	}
	if r.output == "" {
		return out, nil
	}

	encoded, err := r.store.Encode(md, r.rules)
	if err != nil {
		return Outcome{}, failAt(StageTransform, err)
	}
	if err := writeAtomic(r.output, encoded, 0o644); err != nil {
		return Outcome{}, failAt(StageWrite, fault.New(fault.KindIO, "write", r.output, err))
	}
	out.Dest = r.output
	out.OutBytes = int64(len(encoded))
	return out, nil
}
