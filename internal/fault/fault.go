// Package fault defines the error-kind model shared by every stage of a run.
//
// A Precondition fault aborts the run before any work item is touched. Every
// other kind is per-item: the orchestrator records it and moves on.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies where and why a failure happened.
type Kind int

const (
	KindPrecondition   Kind = iota + 1 // Bad root path, missing rules file, bad flags.
	KindIO                             // Reading or writing a work item failed.
	KindParse                          // Malformed or undecodable input.
	KindClassification                 // Required grouping attribute absent or unusable.
	KindEncode                         // Rule application produced an unencodable result.
	KindPlacement                      // Directory creation, move or copy failed.
)

var kindNames = map[Kind]string{
	KindPrecondition:   "precondition",
	KindIO:             "io",
	KindParse:          "parse",
	KindClassification: "classification",
	KindEncode:         "encode",
	KindPlacement:      "placement",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure. Op names the operation that failed, Path the
// file or directory involved (may be empty).
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err as a fault of the given kind.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Errorf builds a fault from a formatted cause.
func Errorf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost fault in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// IsFatal reports whether err must abort the run instead of being recorded.
func IsFatal(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindPrecondition
}
