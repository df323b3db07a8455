package dicomstore

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/backmassage/dcmtool/internal/dcmtag"
	"github.com/backmassage/dcmtool/internal/fault"
	"github.com/backmassage/dcmtool/internal/rules"
)

// Codec is the Store backed by github.com/suyashkumar/dicom.
type Codec struct{}

var _ Store = (*Codec)(nil)

// NewCodec returns a ready-to-use codec. It holds no state.
func NewCodec() *Codec { return &Codec{} }

// Parse implements Store.
func (c *Codec) Parse(data []byte) (*Metadata, error) {
	if len(data) == 0 {
		return nil, fault.Errorf(fault.KindParse, "parse", "empty input")
	}
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, fault.New(fault.KindParse, "parse", "", err)
	}

	md := &Metadata{values: make(map[dcmtag.Tag]Value, len(ds.Elements))}
	for _, elem := range ds.Elements {
		md.put(dcmtag.FromCodec(elem.Tag), convertValue(elem))
	}
	md.source = &ds
	return md, nil
}

func convertValue(elem *dicom.Element) Value {
	v := Value{VR: elem.RawValueRepresentation}
	if elem.Value == nil {
		v.Kind = KindOther
		return v
	}
	if elem.Value.ValueType() == dicom.PixelData {
		v.Kind = KindPixelData
		return v
	}
	switch raw := elem.Value.GetValue().(type) {
	case []string:
		v.Kind = KindStrings
		v.Strings = make([]string, len(raw))
		for i, s := range raw {
			// Even-length padding is encoding, not content.
			v.Strings[i] = strings.TrimRight(s, " \x00")
		}
	case []int:
		v.Kind = KindInts
		v.Ints = append([]int(nil), raw...)
	case []float64:
		v.Kind = KindFloats
		v.Floats = append([]float64(nil), raw...)
	case []byte:
		v.Kind = KindBytes
		v.Size = len(raw)
	case []*dicom.SequenceItemValue:
		v.Kind = KindSequence
		v.Size = len(raw)
	default:
		v.Kind = KindOther
	}
	return v
}

// Encode implements Store. md is never modified: replaced attributes are new
// elements in a new dataset.
func (c *Codec) Encode(md *Metadata, rs *rules.RuleSet) ([]byte, error) {
	if md == nil {
		return nil, fault.Errorf(fault.KindEncode, "encode", "no metadata")
	}
	src, ok := md.source.(*dicom.Dataset)
	if !ok || src == nil {
		return nil, fault.Errorf(fault.KindEncode, "encode", "metadata was not produced by this codec")
	}
	if rs == nil {
		rs = rules.New(nil, nil)
	}

	out := dicom.Dataset{Elements: make([]*dicom.Element, 0, len(src.Elements))}
	for _, elem := range src.Elements {
		t := dcmtag.FromCodec(elem.Tag)
		rule := rs.RuleFor(t)
		next, keep, err := applyRule(elem, t, rule)
		if err != nil {
			return nil, fault.New(fault.KindEncode, "encode", "", fmt.Errorf("%s %s: %w", rule.Action, t, err))
		}
		if keep {
			out.Elements = append(out.Elements, next)
		}
	}

	var buf bytes.Buffer
	if err := dicom.Write(&buf, out); err != nil {
		return nil, fault.New(fault.KindEncode, "encode", "", err)
	}
	if buf.Len() == 0 {
		return nil, fault.Errorf(fault.KindEncode, "encode", "codec produced no output")
	}
	return buf.Bytes(), nil
}

// applyRule returns the element to write and whether to write it at all.
func applyRule(elem *dicom.Element, t dcmtag.Tag, rule rules.Rule) (*dicom.Element, bool, error) {
	switch rule.Action {
	case rules.ActionKeep:
		return elem, true, nil
	case rules.ActionRemove:
		return nil, false, nil
	case rules.ActionClear:
		v, err := emptyValue(elem)
		if err != nil {
			return nil, false, err
		}
		return withValue(elem, v), true, nil
	case rules.ActionReplace:
		v, err := replacementValue(elem, rule.Value)
		if err != nil {
			return nil, false, err
		}
		return withValue(elem, v), true, nil
	case rules.ActionGenerate:
		v, err := generatedValue(elem, rule.Salt())
		if err != nil {
			return nil, false, err
		}
		return withValue(elem, v), true, nil
	default:
		return nil, false, fmt.Errorf("unsupported action")
	}
}

func withValue(elem *dicom.Element, v dicom.Value) *dicom.Element {
	next := &dicom.Element{
		Tag:                    elem.Tag,
		ValueRepresentation:    elem.ValueRepresentation,
		RawValueRepresentation: elem.RawValueRepresentation,
		Value:                  v,
	}
	if elem.ValueLength == tag.VLUndefinedLength {
		next.ValueLength = elem.ValueLength
	}
	return next
}

var errNoValue = errors.New("attribute has no value")

func emptyValue(elem *dicom.Element) (dicom.Value, error) {
	if elem.Value == nil {
		return nil, errNoValue
	}
	switch elem.Value.ValueType() {
	case dicom.Strings:
		return dicom.NewValue([]string{})
	case dicom.Ints:
		return dicom.NewValue([]int{})
	case dicom.Floats:
		return dicom.NewValue([]float64{})
	case dicom.Bytes:
		return dicom.NewValue([]byte{})
	case dicom.Sequences:
		return dicom.NewValue([][]*dicom.Element{})
	default:
		return nil, fmt.Errorf("cannot clear a %s value", elem.RawValueRepresentation)
	}
}

// replacementValue converts the rule's textual components into the value type
// the element already has, so the VR stays consistent.
func replacementValue(elem *dicom.Element, comps []string) (dicom.Value, error) {
	if elem.Value == nil {
		return nil, errNoValue
	}
	switch elem.Value.ValueType() {
	case dicom.Strings:
		return dicom.NewValue(append([]string(nil), comps...))
	case dicom.Ints:
		ints := make([]int, len(comps))
		for i, s := range comps {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("value %q is not an integer", s)
			}
			ints[i] = n
		}
		return dicom.NewValue(ints)
	case dicom.Floats:
		floats := make([]float64, len(comps))
		for i, s := range comps {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("value %q is not a number", s)
			}
			floats[i] = f
		}
		return dicom.NewValue(floats)
	default:
		return nil, fmt.Errorf("cannot replace a %s value", elem.RawValueRepresentation)
	}
}

func generatedValue(elem *dicom.Element, salt string) (dicom.Value, error) {
	if elem.Value == nil || elem.Value.ValueType() != dicom.Strings {
		return nil, fmt.Errorf("generate applies to text attributes only")
	}
	orig := elem.Value.GetValue().([]string)
	gen := make([]string, len(orig))
	for i, s := range orig {
		gen[i] = Generate(elem.RawValueRepresentation, s, salt)
	}
	return dicom.NewValue(gen)
}
