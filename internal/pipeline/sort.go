package pipeline

import (
	"path/filepath"

	"github.com/backmassage/dcmtool/internal/classify"
	"github.com/backmassage/dcmtool/internal/dicomstore"
	"github.com/backmassage/dcmtool/internal/placement"
)

// Sorter places each file into <dir(file)>/<group key>.
type Sorter struct {
	store      dicomstore.Store
	classifier *classify.Classifier
	engine     *placement.Engine
	mode       placement.Mode
}

// NewSorter returns a sorter. The classifier, and through it the orientation
// registry, lives as long as the sorter.
func NewSorter(store dicomstore.Store, c *classify.Classifier, e *placement.Engine, mode placement.Mode) *Sorter {
	return &Sorter{store: store, classifier: c, engine: e, mode: mode}
}

// Verb implements Processor.
func (s *Sorter) Verb() string {
	if s.mode == placement.ModeMove {
		return "Moving"
	}
	return "Copying"
}

// Process implements Processor: read, parse, classify, place.
func (s *Sorter) Process(item WorkItem) (Outcome, error) {
	data, err := readItem(item.Path)
	if err != nil {
		return Outcome{}, err
	}
	md, err := s.store.Parse(data)
	if err != nil {
		return Outcome{}, failAt(StageParse, err)
	}
	key, err := s.classifier.Classify(md)
	if err != nil {
		return Outcome{}, failAt(StageTransform, err)
	}

	res, err := s.engine.Place(item.Path, filepath.Join(filepath.Dir(item.Path), key), s.mode)
	if err != nil {
		return Outcome{}, failAt(StagePlace, err)
	}
	return Outcome{
		Dest:     res.Dest,
		Detail:   key,
		Skipped:  res.Skipped,
		InBytes:  res.Bytes,
		OutBytes: res.Bytes,
	}, nil
}
