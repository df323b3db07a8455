// Package config holds runtime configuration: defaults, an optional YAML
// settings file, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// Command selects the tool to run.
type Command string

const (
	CmdAnonymize Command = "anonymize" // Rewrite a file or folder of files under a rule set.
	CmdDump      Command = "dump"      // Print the parsed metadata of one file.
	CmdRewrite   Command = "rewrite"   // Parse one file, optionally dump it and write it back under rules.
	CmdLoad      Command = "load"      // Validate-load a folder, or each of its sub-folders.
	CmdSort      Command = "sort"      // Move or copy files into per-group sub-folders.
)

// Commands lists every command in help order.
var Commands = []Command{CmdAnonymize, CmdDump, CmdRewrite, CmdLoad, CmdSort}

// SortKey is the attribute files are grouped by. Values match classify.Mode.
type SortKey string

const (
	SortSeriesUID   SortKey = "seriesUID"   // Series Instance UID (default).
	SortOrientation SortKey = "orientation" // Image orientation, indexed per run.
)

// ConflictPolicy is what sort does when the destination file exists. Values
// match placement.Policy.
type ConflictPolicy string

const (
	ConflictOverwrite ConflictPolicy = "overwrite" // Replace silently (default).
	ConflictSkip      ConflictPolicy = "skip"      // Keep the existing file.
	ConflictRename    ConflictPolicy = "rename"    // Add a " - dupN" suffix.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// by [LoadFile] when --config is given, then by [ParseFlags]. The yaml tags
// name the keys accepted in the settings file.
type Config struct {
	Command    Command `yaml:"-"`
	InputPath  string  `yaml:"-"`
	ConfigFile string  `yaml:"-"`

	// Tool settings.
	OutputPath string         `yaml:"output"`      // anonymize: output folder; rewrite: output file.
	RulesPath  string         `yaml:"rules"`       // anonymize, rewrite.
	Folder     string         `yaml:"folder"`      // load: sub-folder loaded inside each group.
	SortKey    SortKey        `yaml:"sort_key"`    // sort. Default: "seriesUID".
	Move       bool           `yaml:"move"`        // sort: move instead of copy.
	OnConflict ConflictPolicy `yaml:"on_conflict"` // sort. Default: "overwrite".
	Dump       bool           `yaml:"dump"`        // rewrite: print metadata.

	// Batch behavior.
	Strict     bool   `yaml:"strict"` // Any per-item failure makes the run fail.
	ReportFile string `yaml:"report"` // Write the batch summary as YAML.

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"` // Default: "auto".
	LogFile   string    `yaml:"log"`   // Optional log file path.
}

// DefaultConfig returns the base configuration before file and flags apply.
func DefaultConfig() Config {
	return Config{
		SortKey:    SortSeriesUID,
		OnConflict: ConflictOverwrite,
		ColorMode:  ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and the per-command required options.
func (c *Config) Validate() error {
	switch c.Command {
	case CmdAnonymize, CmdDump, CmdRewrite, CmdLoad, CmdSort:
		// valid
	default:
		return fmt.Errorf("unknown command %q", c.Command)
	}

	switch c.SortKey {
	case SortSeriesUID, SortOrientation:
		// valid
	default:
		return errors.New("invalid sort key (use 'seriesUID' or 'orientation')")
	}

	switch c.OnConflict {
	case ConflictOverwrite, ConflictSkip, ConflictRename:
		// valid
	default:
		return errors.New("invalid conflict policy (use 'overwrite', 'skip' or 'rename')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.InputPath == "" {
		return errors.New("missing required option: --input")
	}

	switch c.Command {
	case CmdAnonymize:
		if c.OutputPath == "" || c.RulesPath == "" {
			return errors.New("anonymize needs --output and --rules")
		}
	case CmdRewrite:
		if (c.OutputPath == "") != (c.RulesPath == "") {
			return errors.New("--rules and --output must be given together")
		}
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory, so anonymized files never overwrite or
// mix with their sources. Both arguments must be absolute, symlink-resolved
// paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
