// Package dcmtag provides the fixed-width attribute identifier used as the key
// of parsed metadata and rule sets, independent of the codec's own tag type.
package dcmtag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// Tag is a DICOM attribute identifier: group in the high 16 bits, element in
// the low 16 bits.
type Tag uint32

// MetaGroup is the file-meta information group. Its attributes describe the
// encoding, not the content, and are never subject to rules.
const MetaGroup uint16 = 0x0002

// Well-known attributes.
var (
	TransferSyntaxUID       = New(0x0002, 0x0010)
	SpecificCharacterSet    = New(0x0008, 0x0005)
	SOPInstanceUID          = New(0x0008, 0x0018)
	PatientName             = New(0x0010, 0x0010)
	PatientID               = New(0x0010, 0x0020)
	StudyInstanceUID        = New(0x0020, 0x000D)
	SeriesInstanceUID       = New(0x0020, 0x000E)
	ImageOrientationPatient = New(0x0020, 0x0037)
	Rows                    = New(0x0028, 0x0010)
	Columns                 = New(0x0028, 0x0011)
	PixelData               = New(0x7FE0, 0x0010)
)

// New builds a Tag from its group and element numbers.
func New(group, element uint16) Tag {
	return Tag(uint32(group)<<16 | uint32(element))
}

func (t Tag) Group() uint16   { return uint16(t >> 16) }
func (t Tag) Element() uint16 { return uint16(t) }

// String renders the conventional "(GGGG,EEEE)" form.
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group(), t.Element())
}

// Hex renders the compact "GGGGEEEE" form.
func (t Tag) Hex() string {
	return fmt.Sprintf("%04X%04X", t.Group(), t.Element())
}

// IsMeta reports whether t belongs to the file-meta group.
func (t Tag) IsMeta() bool { return t.Group() == MetaGroup }

// Parse accepts "GGGGEEEE", "xGGGGEEEE", "(GGGG,EEEE)", "GGGG,EEEE" or a
// dictionary keyword such as "PatientName".
func Parse(s string) (Tag, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty tag")
	}
	hex := strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
	hex = strings.ReplaceAll(hex, ",", "")
	if len(hex) == 9 && (hex[0] == 'x' || hex[0] == 'X') {
		hex = hex[1:]
	}
	if len(hex) == 8 {
		if n, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return Tag(n), nil
		}
	}
	info, err := tag.FindByName(raw)
	if err != nil {
		return 0, fmt.Errorf("unknown tag %q", s)
	}
	return New(info.Tag.Group, info.Tag.Element), nil
}

// Name returns the dictionary keyword for t, or "" when the dictionary does
// not know it (private or retired attributes).
func Name(t Tag) string {
	info, err := tag.Find(t.codec())
	if err != nil {
		return ""
	}
	return info.Name
}

// FromCodec converts the codec's tag representation.
func FromCodec(ct tag.Tag) Tag { return New(ct.Group, ct.Element) }

func (t Tag) codec() tag.Tag {
	return tag.Tag{Group: t.Group(), Element: t.Element()}
}
