// Package find is the public API for the concurrent file-search engine.
//
// It re-exports the engine types from the internal package and adds
// convenience entry points for one-shot searches. The engine walks one or
// more roots with a pool of workers, applies a compiled filter pipeline to
// every entry and delivers matches and per-entry errors over a single
// result stream.
package find

import (
	"context"

	internal "github.com/sjkxq/gofind/internal/finder"
)

// Re-export the engine types.
type (
	// SearchOptions configures a walk.
	SearchOptions = internal.SearchOptions

	// Entry describes a discovered filesystem entry.
	Entry = internal.Entry

	// Match is a reported entry with its formatted display path.
	Match = internal.Match

	// Result carries either a match or a recoverable error.
	Result = internal.Result

	// WalkError is a recoverable failure on a single path.
	WalkError = internal.WalkError

	// Walker runs walks over one validated configuration.
	Walker = internal.Walker

	// Stats holds walk statistics.
	Stats = internal.Stats

	// ProgressFn receives periodic statistics during a walk.
	ProgressFn = internal.ProgressFn

	// EntryType classifies a directory entry.
	EntryType = internal.EntryType

	// PathFormat controls how matched paths are rendered.
	PathFormat = internal.PathFormat

	// Filter is a pure predicate over an entry.
	Filter = internal.Filter

	// WatchOptions configures watch mode.
	WatchOptions = internal.WatchOptions

	// WatchEvent represents a filesystem event type.
	WatchEvent = internal.WatchEvent

	// WatchHandler processes one watch result.
	WatchHandler = internal.WatchHandler
)

// Entry type codes.
const (
	TypeFile    = internal.TypeFile
	TypeDir     = internal.TypeDir
	TypeSymlink = internal.TypeSymlink
	TypeOther   = internal.TypeOther
)

// Path formats.
const (
	PathFormatDefault  = internal.PathFormatDefault
	PathFormatAbsolute = internal.PathFormatAbsolute
	PathFormatRelative = internal.PathFormatRelative
)

// Watch events.
const (
	EventCreate = internal.EventCreate
	EventModify = internal.EventModify
	EventDelete = internal.EventDelete
	EventRename = internal.EventRename
	EventChmod  = internal.EventChmod
)

// ErrNoRoots is returned when a walk is started without any root paths.
var ErrNoRoots = internal.ErrNoRoots

// New validates the options and returns a reusable Walker.
func New(opts SearchOptions) (*Walker, error) {
	return internal.New(opts)
}

// ParseEntryType converts a find-style type code (f, d, l) into an EntryType.
func ParseEntryType(code string) (EntryType, error) {
	return internal.ParseEntryType(code)
}

// ParseWatchEvent converts an event name into a WatchEvent.
func ParseWatchEvent(name string) (WatchEvent, error) {
	return internal.ParseWatchEvent(name)
}

// Find runs a batch search and returns all matches and recoverable errors
// once the walk completes.
func Find(ctx context.Context, opts SearchOptions) ([]Match, []*WalkError, error) {
	w, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	return w.Run(ctx)
}

// Stream runs a search and returns a channel the caller drains while the
// walk is still in progress.
func Stream(ctx context.Context, opts SearchOptions) (<-chan Result, error) {
	w, err := New(opts)
	if err != nil {
		return nil, err
	}
	return w.Stream(ctx)
}

// Paths is a convenience wrapper returning only the display paths of
// entries under root whose names match any of the given glob patterns.
// Recoverable errors are dropped.
func Paths(ctx context.Context, root string, patterns ...string) ([]string, error) {
	matches, _, err := Find(ctx, SearchOptions{
		Roots:        []string{root},
		NamePatterns: patterns,
		Sort:         true,
	})
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.DisplayPath
	}
	return paths, nil
}
