// Package dicomstore is the thin facade between the batch core and the DICOM
// codec. The core only sees [Store]: bytes in, read-only [Metadata] out, and
// metadata plus a rule set back to bytes. All file I/O stays with the caller.
package dicomstore

import (
	"strconv"
	"strings"

	"github.com/backmassage/dcmtool/internal/dcmtag"
	"github.com/backmassage/dcmtool/internal/rules"
)

// Store parses and encodes DICOM data. Implementations must not perform I/O
// beyond the byte transformation.
type Store interface {
	// Parse decodes data. It never returns partial metadata: on failure the
	// metadata is nil and the error is a fault.KindParse.
	Parse(data []byte) (*Metadata, error)
	// Encode applies rs to md and serializes the result. The same inputs always
	// produce the same bytes. Failures are fault.KindEncode.
	Encode(md *Metadata, rs *rules.RuleSet) ([]byte, error)
}

// Kind describes which primitive slice of a Value is populated.
type Kind int

const (
	KindStrings Kind = iota + 1
	KindInts
	KindFloats
	KindBytes
	KindPixelData
	KindSequence
	KindOther
)

// Value describes one attribute's value. Exactly one of Strings, Ints or
// Floats is set for the scalar kinds; Size counts bytes (KindBytes) or items
// (KindSequence).
type Value struct {
	VR      string
	Kind    Kind
	Strings []string
	Ints    []int
	Floats  []float64
	Size    int
}

// Empty reports whether the value has no components.
func (v Value) Empty() bool {
	switch v.Kind {
	case KindStrings:
		for _, s := range v.Strings {
			if s != "" {
				return false
			}
		}
		return true
	case KindInts:
		return len(v.Ints) == 0
	case KindFloats:
		return len(v.Floats) == 0
	default:
		return v.Size == 0
	}
}

// Canonical is the exact-equality identity of a value: its components joined
// with the DICOM multi-value delimiter. Two values that differ only in number
// formatting ("1" vs "1.0") are different.
func (v Value) Canonical() string {
	switch v.Kind {
	case KindStrings:
		return strings.Join(v.Strings, `\`)
	case KindInts:
		parts := make([]string, len(v.Ints))
		for i, n := range v.Ints {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, `\`)
	case KindFloats:
		parts := make([]string, len(v.Floats))
		for i, f := range v.Floats {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, `\`)
	default:
		return ""
	}
}

// String is the human-readable form used by dumps.
func (v Value) String() string {
	switch v.Kind {
	case KindStrings, KindInts, KindFloats:
		return v.Canonical()
	case KindBytes:
		return "<" + strconv.Itoa(v.Size) + " bytes>"
	case KindPixelData:
		return "<pixel data>"
	case KindSequence:
		return "<" + strconv.Itoa(v.Size) + " item(s)>"
	default:
		return "<unknown>"
	}
}

// Entry pairs a tag with its value, for building Metadata by hand.
type Entry struct {
	Tag   dcmtag.Tag
	Value Value
}

// Metadata is the parsed, read-only view of one file. It is owned by the
// processing step that parsed it.
type Metadata struct {
	order  []dcmtag.Tag
	values map[dcmtag.Tag]Value

	// source is the codec's own representation, needed to re-encode. Nil for
	// metadata built with NewMetadata.
	source interface{}
}

// NewMetadata builds metadata from entries in the given order. A repeated tag
// keeps its first position and its last value.
func NewMetadata(entries ...Entry) *Metadata {
	md := &Metadata{values: make(map[dcmtag.Tag]Value, len(entries))}
	for _, e := range entries {
		md.put(e.Tag, e.Value)
	}
	return md
}

func (m *Metadata) put(t dcmtag.Tag, v Value) {
	if _, seen := m.values[t]; !seen {
		m.order = append(m.order, t)
	}
	m.values[t] = v
}

// Lookup returns the value of t.
func (m *Metadata) Lookup(t dcmtag.Tag) (Value, bool) {
	v, ok := m.values[t]
	return v, ok
}

// Tags returns the attribute tags in file order.
func (m *Metadata) Tags() []dcmtag.Tag {
	out := make([]dcmtag.Tag, len(m.order))
	copy(out, m.order)
	return out
}

// Len is the number of attributes.
func (m *Metadata) Len() int { return len(m.order) }

// StringsValue builds a string-valued Value.
func StringsValue(vr string, values ...string) Value {
	return Value{VR: vr, Kind: KindStrings, Strings: values}
}

// IntsValue builds an int-valued Value.
func IntsValue(vr string, values ...int) Value {
	return Value{VR: vr, Kind: KindInts, Ints: values}
}
