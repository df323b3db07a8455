// Package classify derives the destination group of a file from its metadata.
package classify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/dcmtool/internal/dcmtag"
	"github.com/backmassage/dcmtool/internal/dicomstore"
	"github.com/backmassage/dcmtool/internal/fault"
)

// Mode selects the attribute a batch is grouped by.
type Mode string

const (
	ModeSeriesUID   Mode = "seriesUID"   // Group by Series Instance UID, verbatim (default).
	ModeOrientation Mode = "orientation" // Group by image orientation, as "orientation<N>".
)

// OrientationPrefix prefixes the registry index in orientation keys.
const OrientationPrefix = "orientation"

// ParseMode accepts the mode names case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "seriesuid":
		return ModeSeriesUID, nil
	case "orientation":
		return ModeOrientation, nil
	default:
		return "", fmt.Errorf("invalid sort key %q (use 'seriesUID' or 'orientation')", s)
	}
}

// Attributes is the read access a classifier needs.
type Attributes interface {
	Lookup(t dcmtag.Tag) (dicomstore.Value, bool)
}

// Classifier turns metadata into a group key. The orientation registry is
// injected so its lifetime is the caller's run, not the process.
type Classifier struct {
	mode         Mode
	orientations *Registry
}

// New returns a classifier for mode. A nil registry gets a fresh one.
func New(mode Mode, orientations *Registry) *Classifier {
	if orientations == nil {
		orientations = NewRegistry()
	}
	return &Classifier{mode: mode, orientations: orientations}
}

// Mode returns the grouping mode.
func (c *Classifier) Mode() Mode { return c.mode }

// Classify returns the group key for attrs. The key is always a single path
// component; anything else is a classification fault.
func (c *Classifier) Classify(attrs Attributes) (string, error) {
	var key string
	switch c.mode {
	case ModeSeriesUID:
		v, err := required(attrs, dcmtag.SeriesInstanceUID)
		if err != nil {
			return "", err
		}
		key = v.Canonical()
	case ModeOrientation:
		v, err := required(attrs, dcmtag.ImageOrientationPatient)
		if err != nil {
			return "", err
		}
		key = OrientationPrefix + strconv.Itoa(c.orientations.Index(v.Canonical()))
	default:
		return "", fault.Errorf(fault.KindClassification, "classify", "unknown mode %q", c.mode)
	}
	if !safeComponent(key) {
		return "", fault.Errorf(fault.KindClassification, "classify", "group key %q is not a usable directory name", key)
	}
	return key, nil
}

func required(attrs Attributes, t dcmtag.Tag) (dicomstore.Value, error) {
	v, ok := attrs.Lookup(t)
	if !ok {
		return v, fault.Errorf(fault.KindClassification, "classify", "%s %s is undefined", dcmtag.Name(t), t)
	}
	if v.Empty() {
		return v, fault.Errorf(fault.KindClassification, "classify", "%s %s is empty", dcmtag.Name(t), t)
	}
	return v, nil
}

func safeComponent(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`+"\x00")
}
