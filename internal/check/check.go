// Package check provides the precondition checks run before any work item is
// touched: the input path must exist and be of the kind the command expects,
// and a required rules file must exist. Violations are fatal.
package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/dcmtool/internal/config"
	"github.com/backmassage/dcmtool/internal/fault"
)

// Sentinel errors wrapped by the checks; match them with errors.Is.
var (
	ErrInputNotFound     = errors.New("input path does not exist")
	ErrInputNotDir       = errors.New("input path is not a directory")
	ErrInputIsDir        = errors.New("input path is a directory, expected a file")
	ErrRulesNotFound     = errors.New("rules file does not exist")
	ErrRulesIsDir        = errors.New("rules path is a directory")
	ErrOutputInsideInput = errors.New("output directory must not be inside input directory")
)

// Logger is the minimal logging interface needed by Preconditions.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Debug(string, ...interface{})
}

// InputKind is what a command accepts as --input.
type InputKind int

const (
	FileOrDir InputKind = iota // anonymize, sort
	FileOnly                   // dump, rewrite
	DirOnly                    // load
)

// KindFor returns the input kind accepted by cmd.
func KindFor(cmd config.Command) InputKind {
	switch cmd {
	case config.CmdDump, config.CmdRewrite:
		return FileOnly
	case config.CmdLoad:
		return DirOnly
	default:
		return FileOrDir
	}
}

// Input verifies that path exists and matches kind. It reports whether path is
// a directory.
func Input(path string, kind InputKind) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, fault.New(fault.KindPrecondition, "check input", path, ErrInputNotFound)
		}
		return false, fault.New(fault.KindPrecondition, "check input", path, err)
	}
	switch {
	case kind == DirOnly && !fi.IsDir():
		return false, fault.New(fault.KindPrecondition, "check input", path, ErrInputNotDir)
	case kind == FileOnly && fi.IsDir():
		return true, fault.New(fault.KindPrecondition, "check input", path, ErrInputIsDir)
	}
	return fi.IsDir(), nil
}

// Rules verifies that the rules file exists and is not a directory.
func Rules(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fault.New(fault.KindPrecondition, "check rules", path, ErrRulesNotFound)
		}
		return fault.New(fault.KindPrecondition, "check rules", path, err)
	}
	if fi.IsDir() {
		return fault.New(fault.KindPrecondition, "check rules", path, ErrRulesIsDir)
	}
	return nil
}

// OutputOutsideInput rejects an anonymize output directory equal to or inside
// a directory input, so written files are never picked up as inputs. A missing
// output directory is resolved through its nearest existing parent.
func OutputOutsideInput(cfg *config.Config, inputDir, outputDir string) error {
	inputAbs, err := absPath(inputDir)
	if err != nil {
		return fault.New(fault.KindPrecondition, "check output", inputDir, err)
	}
	outputAbs, err := absPath(outputDir)
	if err != nil {
		return fault.New(fault.KindPrecondition, "check output", outputDir, err)
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		return fault.New(fault.KindPrecondition, "check output", outputDir, ErrOutputInsideInput)
	}
	return nil
}

// Preconditions runs every check required by cfg.Command and reports whether
// the input is a directory.
func Preconditions(cfg *config.Config, log Logger) (bool, error) {
	isDir, err := Input(cfg.InputPath, KindFor(cfg.Command))
	if err != nil {
		return false, err
	}
	log.Debug("Input %s (directory: %t)", cfg.InputPath, isDir)

	if cfg.RulesPath != "" {
		if err := Rules(cfg.RulesPath); err != nil {
			return false, err
		}
		log.Debug("Rules %s", cfg.RulesPath)
	}
	if cfg.Command == config.CmdAnonymize && isDir {
		if err := OutputOutsideInput(cfg, cfg.InputPath, cfg.OutputPath); err != nil {
			return false, err
		}
	}
	return isDir, nil
}

// absPath returns the absolute, symlink-resolved path for safe comparison of
// input vs output directory hierarchies. Trailing components that do not exist
// yet are joined back onto the resolved parent.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(abs)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("resolve %s: %w", path, err)
		}
		missing = append(missing, filepath.Base(abs))
		abs = parent
	}
}
