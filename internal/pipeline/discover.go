package pipeline

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/backmassage/dcmtool/internal/fault"
)

// WorkItem is one unit of batch processing: a file, or a group directory
// whose files are loaded together. Folder, when set, names the sub-folder of
// a group that holds its files.
type WorkItem struct {
	Path   string
	Folder string
}

// String returns the path the item is reported under.
func (w WorkItem) String() string {
	if w.Folder == "" {
		return w.Path
	}
	return filepath.Join(w.Path, w.Folder)
}

// ResolveMode selects how a root path expands into work items.
type ResolveMode int

const (
	// ResolveFlat: a file is its own single item; a directory yields each of
	// its direct children.
	ResolveFlat ResolveMode = iota
	// ResolveGrouped: a directory yields its sub-directories, or itself when
	// it has none.
	ResolveGrouped
)

// Resolve expands root into an ordered list of work items. Entries are sorted
// by name so two resolutions of an unchanged tree are identical. The second
// result reports whether root was a single file.
//
// Only the root itself is checked here: a missing root, or a file where a
// directory is required, is a precondition fault. Problems with individual
// entries surface later, when the item is processed.
func Resolve(root string, mode ResolveMode, folder string) ([]WorkItem, bool, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, false, fault.New(fault.KindPrecondition, "resolve", root, err)
	}
	if !fi.IsDir() {
		if mode == ResolveGrouped {
			return nil, false, fault.New(fault.KindPrecondition, "resolve", root, errors.New("not a directory"))
		}
		return []WorkItem{{Path: root}}, true, nil
	}

	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, false, fault.New(fault.KindPrecondition, "resolve", root, err)
	}

	var items []WorkItem
	switch mode {
	case ResolveGrouped:
		for _, e := range entries {
			if e.IsDir() {
				items = append(items, WorkItem{Path: filepath.Join(root, e.Name()), Folder: folder})
			}
		}
		if len(items) == 0 {
			items = []WorkItem{{Path: root, Folder: folder}}
		}
	default:
		items = make([]WorkItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, WorkItem{Path: filepath.Join(root, e.Name())})
		}
	}
	return items, false, nil
}

// GroupFiles lists the direct child files of a group item, sorted by name.
// Sub-directories are not descended into.
func GroupFiles(item WorkItem) ([]string, error) {
	dir := item.String()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fault.New(fault.KindIO, "list", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
