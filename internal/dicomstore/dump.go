package dicomstore

import (
	"fmt"
	"io"

	"github.com/backmassage/dcmtool/internal/dcmtag"
)

// Dump writes one line per attribute in file order:
//
//	(0010,0010) PN PatientName = Doe^John
func Dump(w io.Writer, md *Metadata) error {
	for _, t := range md.order {
		v := md.values[t]
		name := dcmtag.Name(t)
		if name == "" {
			name = "?"
		}
		vr := v.VR
		if vr == "" {
			vr = "--"
		}
		if _, err := fmt.Fprintf(w, "%s %s %s = %s\n", t, vr, name, v); err != nil {
			return err
		}
	}
	return nil
}
