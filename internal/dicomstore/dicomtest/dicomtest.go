// Package dicomtest builds small, valid DICOM files for tests.
package dicomtest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Explicit VR Little Endian.
const transferSyntax = "1.2.840.10008.1.2.1"

// CT Image Storage.
const sopClass = "1.2.840.10008.5.1.4.1.1.2"

// Spec describes the attributes of a synthetic file. Empty fields are left out
// of the file entirely.
type Spec struct {
	SOPInstanceUID string
	PatientName    string
	PatientID      string
	SeriesUID      string
	Orientation    []string
	Rows, Columns  int
}

// Encode returns the bytes of a DICOM file matching s.
func Encode(tb testing.TB, s Spec) []byte {
	tb.Helper()
	instance := s.SOPInstanceUID
	if instance == "" {
		instance = "1.2.826.0.1.3680043.2.1125.1"
	}

	elems := []*dicom.Element{
		mustElement(tb, tag.MediaStorageSOPClassUID, []string{sopClass}),
		mustElement(tb, tag.MediaStorageSOPInstanceUID, []string{instance}),
		mustElement(tb, tag.TransferSyntaxUID, []string{transferSyntax}),
		mustElement(tb, tag.SOPInstanceUID, []string{instance}),
	}
	if s.PatientName != "" {
		elems = append(elems, mustElement(tb, tag.PatientName, []string{s.PatientName}))
	}
	if s.PatientID != "" {
		elems = append(elems, mustElement(tb, tag.PatientID, []string{s.PatientID}))
	}
	if s.SeriesUID != "" {
		elems = append(elems, mustElement(tb, tag.SeriesInstanceUID, []string{s.SeriesUID}))
	}
	if len(s.Orientation) > 0 {
		elems = append(elems, mustElement(tb, tag.ImageOrientationPatient, s.Orientation))
	}
	if s.Rows > 0 {
		elems = append(elems, mustElement(tb, tag.Rows, []int{s.Rows}))
	}
	if s.Columns > 0 {
		elems = append(elems, mustElement(tb, tag.Columns, []int{s.Columns}))
	}

	var buf bytes.Buffer
	if err := dicom.Write(&buf, dicom.Dataset{Elements: elems}); err != nil {
		tb.Fatalf("dicomtest: write: %v", err)
	}
	return buf.Bytes()
}

// WriteFile encodes s into dir/name and returns the full path.
func WriteFile(tb testing.TB, dir, name string, s Spec) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Encode(tb, s), 0o644); err != nil {
		tb.Fatalf("dicomtest: %v", err)
	}
	return path
}

func mustElement(tb testing.TB, t tag.Tag, data interface{}) *dicom.Element {
	tb.Helper()
	e, err := dicom.NewElement(t, data)
	if err != nil {
		tb.Fatalf("dicomtest: element %v: %v", t, err)
	}
	return e
}
