package display

import (
	"fmt"
	"io"

	"github.com/backmassage/dcmtool/internal/term"
)

const banner = `     _                _              _
  __| | ___ _ __ ___ | |_ ___   ___ | |
 / _` + "`" + ` |/ __| '_ ` + "`" + ` _ \| __/ _ \ / _ \| |
| (_| | (__| | | | | | || (_) | (_) | |
 \__,_|\___|_| |_| |_|\__\___/ \___/|_|`

// PrintBanner writes the ASCII art banner, magenta when colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Paint(term.Magenta, banner))
}

// Header returns the one-line run header printed before any work.
func Header(version, command, input string) string {
	return fmt.Sprintf("> Running dcmtool v%s %s on: %s", version, command, input)
}
