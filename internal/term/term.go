// Package term provides color state and terminal detection.
//
// Styles are package-level because multiple packages (logging, display) need
// them for output formatting. [Configure] picks the color profile once during
// startup; when colors are disabled [Paint] returns its input unchanged.
package term

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/backmassage/dcmtool/internal/config"
)

// Named styles used by the logger and the banner.
var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Bold(true)
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	Blue    = lipgloss.NewStyle().Foreground(lipgloss.Color("#86AAEC")).Bold(true)
	Cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Bold(true)
	Magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("#BD93F9")).Bold(true)
	Faint   = lipgloss.NewStyle().Faint(true)
)

var enabled bool

// Configure resolves the color mode and sets the lipgloss color profile.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	enabled = resolve(mode)
	if !enabled {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.NewOutput(os.Stdout).EnvColorProfile()
	if profile == termenv.Ascii {
		// --color on a pipe or dumb terminal: fall back to the 16 base colors.
		profile = termenv.ANSI
	}
	lipgloss.SetColorProfile(profile)
}

// Enabled reports whether colors are currently active.
func Enabled() bool { return enabled }

// Paint renders s with style when colors are enabled.
func Paint(style lipgloss.Style, s string) string {
	if !enabled {
		return s
	}
	return style.Render(s)
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
