package pipeline

import (
	"errors"
	"path/filepath"

	"github.com/backmassage/dcmtool/internal/dcmtag"
	"github.com/backmassage/dcmtool/internal/dicomstore"
	"github.com/backmassage/dcmtool/internal/display"
	"github.com/backmassage/dcmtool/internal/fault"
)

var errNoFiles = errors.New("no files")

// Loader validates a group directory: it must hold at least one file, every
// file must parse, and all images must share one Rows x Columns size. A group
// is fully loaded before the next one starts.
type Loader struct {
	store dicomstore.Store
}

// NewLoader returns a loader.
func NewLoader(store dicomstore.Store) *Loader {
	return &Loader{store: store}
}

// Verb implements Processor.
func (l *Loader) Verb() string { return "Loading" }

// Process implements Processor.
func (l *Loader) Process(item WorkItem) (Outcome, error) {
	files, err := GroupFiles(item)
	if err != nil {
		return Outcome{}, failAt(StageRead, err)
	}
	if len(files) == 0 {
		return Outcome{}, failAt(StageRead, fault.New(fault.KindIO, "load", item.String(), errNoFiles))
	}

	var (
		total int64
		first string
		size  [2]int
	)
	for _, f := range files {
		data, err := readItem(f)
		if err != nil {
			return Outcome{}, err
		}
		total += int64(len(data))

		md, err := l.store.Parse(data)
		if err != nil {
			return Outcome{}, failAt(StageParse, fault.New(fault.KindParse, "load", f, err))
		}
		rows, cols, ok := imageSize(md)
		if !ok {
			continue
		}
		if first == "" {
			first, size = f, [2]int{rows, cols}
			continue
		}
		if size != [2]int{rows, cols} {
			return Outcome{}, failAt(StageTransform, fault.Errorf(fault.KindParse, "load",
				"%s is %dx%d but %s is %dx%d",
				filepath.Base(f), rows, cols, filepath.Base(first), size[0], size[1]))
		}
	}
	return Outcome{Detail: display.Plural(len(files), "file"), InBytes: total}, nil
}

// imageSize returns Rows and Columns when both are present.
func imageSize(md *dicomstore.Metadata) (int, int, bool) {
	r, ok := md.Lookup(dcmtag.Rows)
	if !ok || len(r.Ints) == 0 {
		return 0, 0, false
	}
	c, ok := md.Lookup(dcmtag.Columns)
	if !ok || len(c.Ints) == 0 {
		return 0, 0, false
	}
	return r.Ints[0], c.Ints[0], true
}
