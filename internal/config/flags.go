package config

// This file implements CLI flag parsing and help text.
// Every command shares -i/--input, -v/--version, -h/--help and the display
// flags; the rest are registered per command so unknown flags are rejected.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrVersion is returned by ParseFlags when --version was requested.
// flag.ErrHelp is returned for --help.
var ErrVersion = errors.New("version requested")

// ParseFlags parses args (without the program name) into cfg. The first
// argument is the command. A --config file is applied before the flags so
// that flags win over file settings.
func ParseFlags(cfg *Config, args []string, version string) error {
	if len(args) == 0 {
		PrintUsage(os.Stderr, "", version)
		return errors.New("missing command")
	}
	switch args[0] {
	case "-h", "--help", "help":
		PrintUsage(os.Stdout, "", version)
		return flag.ErrHelp
	case "-v", "--version", "version":
		return ErrVersion
	}

	cmd := Command(args[0])
	if !knownCommand(cmd) {
		PrintUsage(os.Stderr, "", version)
		return fmt.Errorf("unknown command %q", args[0])
	}
	cfg.Command = cmd
	rest := args[1:]

	if path := findConfigArg(rest); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return err
		}
	}

	fs := flag.NewFlagSet("dcmtool "+string(cmd), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Negated/override flags: captured here, applied to cfg after Parse, so
	// that file and default values hold unless the user passes the flag.
	var negated negatedFlags

	defineCommonFlags(fs, cfg, &negated)
	switch cmd {
	case CmdAnonymize:
		defineOutputFlags(fs, cfg)
		defineBatchFlags(fs, cfg)
	case CmdRewrite:
		defineOutputFlags(fs, cfg)
		fs.BoolVar(&cfg.Dump, "dump", cfg.Dump, "Parse and dump content to output stream")
		fs.BoolVar(&cfg.Dump, "d", cfg.Dump, "Same as --dump")
	case CmdLoad:
		fs.StringVar(&cfg.Folder, "folder", cfg.Folder, "Sub-folder to load inside each group")
		fs.StringVar(&cfg.Folder, "f", cfg.Folder, "Same as --folder")
		defineBatchFlags(fs, cfg)
	case CmdSort:
		defineSortFlags(fs, cfg)
		defineBatchFlags(fs, cfg)
	}

	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			PrintUsage(os.Stdout, cmd, version)
			return flag.ErrHelp
		}
		PrintUsage(os.Stderr, cmd, version)
		return err
	}

	if negated.showHelp {
		PrintUsage(os.Stdout, cmd, version)
		return flag.ErrHelp
	}
	if negated.showVersion {
		return ErrVersion
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	applyNegatedFlags(cfg, &negated)
	cfg.InputPath = NormalizeDirArg(cfg.InputPath)
	if cmd == CmdAnonymize {
		cfg.OutputPath = NormalizeDirArg(cfg.OutputPath)
	}
	return nil
}

func knownCommand(cmd Command) bool {
	for _, c := range Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// findConfigArg returns the value of -config/--config in args, if any. It runs
// before the real parse so the file can supply defaults for other flags.
func findConfigArg(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineCommonFlags registers -i/--input, --config, display and utility flags.
func defineCommonFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.InputPath, "input", "", "Input file or folder")
	fs.StringVar(&cfg.InputPath, "i", "", "Same as --input")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML settings file")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "v", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// defineOutputFlags registers -o/--output and -r/--rules.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Output path")
	fs.StringVar(&cfg.OutputPath, "o", cfg.OutputPath, "Same as --output")
	fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "Writing rules file name")
	fs.StringVar(&cfg.RulesPath, "r", cfg.RulesPath, "Same as --rules")
}

// defineSortFlags registers -k/--key, -m/--move and --on-conflict.
func defineSortFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&sortKeyValue{&cfg.SortKey}, "key", "Sort key: seriesUID | orientation")
	fs.Var(&sortKeyValue{&cfg.SortKey}, "k", "Same as --key")
	fs.BoolVar(&cfg.Move, "move", cfg.Move, "Move the input files into the new folders")
	fs.BoolVar(&cfg.Move, "m", cfg.Move, "Same as --move")
	fs.Var(&conflictValue{&cfg.OnConflict}, "on-conflict", "Existing destination: overwrite | skip | rename")
}

// defineBatchFlags registers --strict and --report.
func defineBatchFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Exit non-zero if any item fails")
	fs.StringVar(&cfg.ReportFile, "report", cfg.ReportFile, "Write the batch summary as YAML")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

type usageLine struct {
	flags string
	desc  string
}

var commonUsage = []usageLine{
	{"  -i, --input <path>", "Input file or folder (required)"},
	{"  --config <path>", "YAML settings file (flags win)"},
	{"  --verbose", "Verbose output"},
	{"  --color", "Force colored logs"},
	{"  --no-color", "Disable colored logs"},
	{"  -l, --log <path>", "Append logs to file"},
	{"  -v, --version", "Print version and exit"},
	{"  -h, --help", "Show this help and exit"},
}

var batchUsage = []usageLine{
	{"  --strict", "Exit non-zero if any item fails"},
	{"  --report <path>", "Write the batch summary as YAML"},
}

var commandUsage = map[Command][]usageLine{
	CmdAnonymize: {
		{"  dcmtool anonymize -i <file|folder> -r <rules> -o <folder>", ""},
		{"", "Write back the input DICOM file(s) using the rules file."},
		{"  -o, --output <folder>", "Output folder (created if missing)"},
		{"  -r, --rules <path>", "Writing rules file (JSON or YAML)"},
	},
	CmdDump: {
		{"  dcmtool dump -i <file>", ""},
		{"", "Dump the content of the input DICOM file."},
	},
	CmdRewrite: {
		{"  dcmtool rewrite -i <file> [-d] [-r <rules> -o <file>]", ""},
		{"", "Parse the input file, optionally dump it and write it back under rules."},
		{"  -d, --dump", "Dump content to the output stream"},
		{"  -r, --rules <path>", "Writing rules file (needs --output)"},
		{"  -o, --output <file>", "Output file (needs --rules)"},
	},
	CmdLoad: {
		{"  dcmtool load -i <folder> [-f <name>]", ""},
		{"", "Load a folder, or each of its sub-folders, to check for errors."},
		{"  -f, --folder <name>", "Sub-folder to load inside each group"},
	},
	CmdSort: {
		{"  dcmtool sort -i <file|folder> [-k seriesUID|orientation] [-m]", ""},
		{"", "Move or copy files into folders named after their group key."},
		{"  -k, --key <name>", "seriesUID (default) | orientation"},
		{"  -m, --move", "Move instead of copy"},
		{"  --on-conflict <policy>", "overwrite (default) | skip | rename"},
	},
}

// PrintUsage writes help for cmd, or the command list when cmd is empty.
// Column-aligned for readability.
func PrintUsage(w io.Writer, cmd Command, version string) {
	lines := []usageLine{{"", "dcmtool v" + version + " - DICOM batch utilities"}, {"", ""}}
	if cmd == "" {
		lines = append(lines, usageLine{"  dcmtool <command> [OPTIONS]", ""}, usageLine{"", ""}, usageLine{"Commands", ""})
		for _, c := range Commands {
			lines = append(lines, usageLine{"  " + string(c), commandUsage[c][1].desc})
		}
		lines = append(lines, usageLine{"", ""}, usageLine{"", "Run 'dcmtool <command> --help' for command options."})
	} else {
		lines = append(lines, commandUsage[cmd]...)
		if cmd == CmdAnonymize || cmd == CmdLoad || cmd == CmdSort {
			lines = append(lines, batchUsage...)
		}
		lines = append(lines, usageLine{"", ""}, usageLine{"Common", ""})
		lines = append(lines, commonUsage...)
	}
	writeColumns(w, lines)
}

func writeColumns(w io.Writer, lines []usageLine) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	for _, l := range lines {
		switch {
		case l.flags == "" && l.desc == "":
			fmt.Fprintln(w)
		case l.desc == "":
			fmt.Fprintln(w, l.flags)
		case l.flags == "":
			fmt.Fprintln(w, "  "+l.desc)
		default:
			padding := col1 - len(l.flags)
			if padding < 1 {
				padding = 1
			}
			fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
		}
	}
}

// flag.Value adapters so we can use enum types with flag.Var.

type sortKeyValue struct{ p *SortKey }

func (s *sortKeyValue) String() string {
	if s.p == nil {
		return ""
	}
	return string(*s.p)
}
func (s *sortKeyValue) Set(v string) error {
	switch strings.ToLower(v) {
	case "seriesuid":
		*s.p = SortSeriesUID
	case "orientation":
		*s.p = SortOrientation
	default:
		return fmt.Errorf("invalid sort key %q (use 'seriesUID' or 'orientation')", v)
	}
	return nil
}

type conflictValue struct{ p *ConflictPolicy }

func (c *conflictValue) String() string {
	if c.p == nil {
		return ""
	}
	return string(*c.p)
}
func (c *conflictValue) Set(v string) error {
	switch strings.ToLower(v) {
	case "overwrite":
		*c.p = ConflictOverwrite
	case "skip":
		*c.p = ConflictSkip
	case "rename":
		*c.p = ConflictRename
	default:
		return fmt.Errorf("invalid conflict policy %q (use 'overwrite', 'skip' or 'rename')", v)
	}
	return nil
}
