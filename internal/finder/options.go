// Package finder implements concurrent filesystem search with filtering.
package finder

import (
	"fmt"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// PathFormat controls how matched paths are rendered.
type PathFormat int

const (
	// PathFormatDefault reports paths as discovered, rooted at the
	// path the caller supplied.
	PathFormatDefault PathFormat = iota
	// PathFormatAbsolute reports absolute paths.
	PathFormatAbsolute
	// PathFormatRelative reports paths relative to their root.
	PathFormatRelative
)

// EntryType classifies a directory entry.
type EntryType int

const (
	TypeFile EntryType = iota
	TypeDir
	TypeSymlink
	TypeOther
)

// String returns the find-style single-letter code for the type.
func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "f"
	case TypeDir:
		return "d"
	case TypeSymlink:
		return "l"
	default:
		return "?"
	}
}

// ParseEntryType converts a find-style type code (f, d, l) into an EntryType.
func ParseEntryType(code string) (EntryType, error) {
	switch code {
	case "f":
		return TypeFile, nil
	case "d":
		return TypeDir, nil
	case "l":
		return TypeSymlink, nil
	default:
		return TypeOther, fmt.Errorf("invalid file type %q (expected f, d or l)", code)
	}
}

// SearchOptions configures a walk. The value is treated as immutable once a
// Walker has been created from it and is shared by all workers without
// locking.
type SearchOptions struct {
	// Roots are the starting paths for the traversal. At least one is
	// required.
	Roots []string

	// NamePatterns holds glob patterns matched against entry base names.
	// An entry matches when any pattern matches. Empty means all names.
	NamePatterns []string

	// IgnoreCase folds both patterns and candidate names before matching.
	IgnoreCase bool

	// MaxDepth bounds how many directory levels below each root are
	// expanded. 0 expands only the roots themselves, so only their direct
	// children are reported. Nil means unbounded.
	MaxDepth *int

	// FollowSymlinks expands symlinks that resolve to directories,
	// guarded by device+inode cycle detection.
	FollowSymlinks bool

	// Types restricts matches to the given entry types. Empty means all.
	Types []EntryType

	// IncludeHidden reports dot-prefixed entries and descends into
	// dot-prefixed directories. Hidden entries are skipped by default.
	IncludeHidden bool

	// PathFormat selects how matched paths are displayed.
	PathFormat PathFormat

	// Parallelism is the worker count. Zero or negative selects
	// runtime.NumCPU(). Parallelism 1 is the sequential degenerate case
	// of the same engine, not a separate code path.
	Parallelism int

	// Sort applies a final stable sort by display path to batch results.
	Sort bool

	// Progress, when set, is invoked periodically with walk statistics.
	Progress ProgressFn

	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// workers resolves the effective worker count.
func (o *SearchOptions) workers() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.NumCPU()
}

// depthOK reports whether a directory at the given depth may be expanded.
func (o *SearchOptions) depthOK(depth int) bool {
	return o.MaxDepth == nil || depth <= *o.MaxDepth
}

// Entry describes a single filesystem entry discovered during the walk.
type Entry struct {
	Path  string    // path as discovered (root-joined)
	Root  string    // the root this entry was found under
	Depth int       // path components below Root; roots sit at depth 0
	Type  EntryType // classification after symlink policy is applied
}

// Name returns the base name of the entry.
func (e Entry) Name() string {
	return filepath.Base(e.Path)
}

// Match is a reported entry together with its formatted display path.
type Match struct {
	Entry
	DisplayPath string
}

// Result carries either a match or a recoverable per-entry error. Exactly
// one of the two is set.
type Result struct {
	Match Match
	Err   error
}
