// Package placement puts a source file into a destination directory by move or
// copy, creating the directory on demand and applying a conflict policy when
// the destination name is taken.
package placement

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/backmassage/dcmtool/internal/fault"
)

// Mode is how the file gets to its destination.
type Mode string

const (
	ModeCopy Mode = "copy" // Byte-for-byte duplicate; source untouched (default).
	ModeMove Mode = "move" // Atomic rename; no copy+delete fallback.
)

// Policy decides what happens when the destination file already exists.
type Policy string

const (
	PolicyOverwrite Policy = "overwrite" // Replace the existing file (default).
	PolicySkip      Policy = "skip"      // Leave the existing file; report the item as skipped.
	PolicyRename    Policy = "rename"    // Place as "<stem> - dupN<ext>".
)

// Result describes a completed placement.
type Result struct {
	Dest    string // Final destination path.
	Skipped bool   // True when PolicySkip left an existing file in place.
	Bytes   int64  // Size of the placed file.
}

// Engine places files. It keeps no state between calls.
type Engine struct {
	policy Policy
}

// NewEngine returns an engine applying policy; an empty policy is overwrite.
func NewEngine(policy Policy) *Engine {
	if policy == "" {
		policy = PolicyOverwrite
	}
	return &Engine{policy: policy}
}

// Place moves or copies src into destDir under its base name. destDir itself is
// created when missing; its parent must already exist.
func (e *Engine) Place(src, destDir string, mode Mode) (Result, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Result{}, fault.New(fault.KindPlacement, "stat", src, err)
	}
	if info.IsDir() {
		return Result{}, fault.New(fault.KindPlacement, "place", src, errors.New("source is a directory"))
	}
	if err := EnsureDir(destDir); err != nil {
		return Result{}, err
	}

	dest := filepath.Join(destDir, filepath.Base(src))
	if sameFile(src, dest) {
		return Result{}, fault.New(fault.KindPlacement, "place", src, errors.New("source and destination are the same file"))
	}

	if _, err := os.Lstat(dest); err == nil {
		switch e.policy {
		case PolicySkip:
			return Result{Dest: dest, Skipped: true}, nil
		case PolicyRename:
			dest = freeName(dest)
		}
	}

	switch mode {
	case ModeMove:
		if err := os.Rename(src, dest); err != nil {
			return Result{}, fault.New(fault.KindPlacement, "move", src, err)
		}
	case ModeCopy, "":
		if err := copyFile(src, dest, info.Mode().Perm()); err != nil {
			return Result{}, fault.New(fault.KindPlacement, "copy", src, err)
		}
	default:
		return Result{}, fault.Errorf(fault.KindPlacement, "place", "unknown mode %q", mode)
	}
	return Result{Dest: dest, Bytes: info.Size()}, nil
}

// EnsureDir creates dir (one level only) unless it already exists as a
// directory. An existing non-directory is a placement fault.
func EnsureDir(dir string) error {
	err := os.Mkdir(dir, 0o755)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return fault.New(fault.KindPlacement, "mkdir", dir, err)
	}
	fi, statErr := os.Stat(dir)
	if statErr != nil {
		return fault.New(fault.KindPlacement, "mkdir", dir, statErr)
	}
	if !fi.IsDir() {
		return fault.New(fault.KindPlacement, "mkdir", dir, fmt.Errorf("exists and is not a directory"))
	}
	return nil
}

func copyFile(src, dest string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
