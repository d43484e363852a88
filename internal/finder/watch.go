package finder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEvent represents a filesystem event type.
type WatchEvent string

const (
	EventCreate WatchEvent = "create"
	EventModify WatchEvent = "modify"
	EventDelete WatchEvent = "delete"
	EventRename WatchEvent = "rename"
	EventChmod  WatchEvent = "chmod"
)

// ParseWatchEvent converts a user-supplied event name into a WatchEvent.
func ParseWatchEvent(name string) (WatchEvent, error) {
	switch WatchEvent(strings.ToLower(name)) {
	case EventCreate, EventModify, EventDelete, EventRename, EventChmod:
		return WatchEvent(strings.ToLower(name)), nil
	default:
		return "", fmt.Errorf("unknown watch event %q", name)
	}
}

// WatchOptions configures watch mode.
type WatchOptions struct {
	// Events to react to. Empty means all events.
	Events []WatchEvent

	// Timeout stops watching after the given duration. Zero watches until
	// the context is canceled.
	Timeout time.Duration
}

// WatchHandler processes one watch result. The result carries an entry that
// already passed the walker's filter pipeline, or a recoverable error.
type WatchHandler func(ctx context.Context, result Result) error

// Watch monitors the walker's roots for filesystem changes and runs every
// affected entry through the same filter pipeline as a regular walk.
// Subdirectories within the depth bound are watched recursively; new
// directories are added to the watch as they appear.
func (w *Walker) Watch(ctx context.Context, opts WatchOptions, handler WatchHandler) error {
	if handler == nil {
		handler = func(_ context.Context, r Result) error {
			if r.Err != nil {
				return r.Err
			}
			fmt.Println(r.Match.DisplayPath)
			return nil
		}
	}

	if err := validateRoots(w.opts.Roots); err != nil {
		return err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range w.opts.Roots {
		if err := w.addWatchTree(watcher, root); err != nil {
			return err
		}
	}

	wanted := make(map[WatchEvent]bool, len(opts.Events))
	for _, e := range opts.Events {
		wanted[e] = true
	}

	w.logger.Debug("watching for changes",
		zap.Strings("roots", w.opts.Roots),
		zap.Int("dirs", len(watcher.WatchList())),
	)

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil
			}
			return ctx.Err()

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err := handler(ctx, Result{Err: &WalkError{Err: werr}}); err != nil {
				return err
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			we := watchEventOf(event)
			if len(wanted) > 0 && !wanted[we] {
				continue
			}

			entry, ok := w.watchEntry(event.Name)
			if !ok {
				continue
			}

			// Newly created directories join the watch so events keep
			// flowing below them.
			if we == EventCreate && entry.Type == TypeDir && w.opts.depthOK(entry.Depth) {
				if err := watcher.Add(entry.Path); err != nil {
					w.logger.Debug("cannot watch new directory",
						zap.String("path", entry.Path), zap.Error(err))
				}
			}

			if !matchesAll(w.filters, entry) {
				continue
			}
			match := Match{Entry: entry, DisplayPath: w.displayPath(entry)}
			if err := handler(ctx, Result{Match: match}); err != nil {
				return err
			}
		}
	}
}

// addWatchTree registers root and its subdirectories, honoring the hidden
// policy and the depth bound. Containment is anchored on the seeded root
// itself, so relative roots such as "." work.
func (w *Walker) addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Debug("skipping unwatchable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return filepath.SkipDir
			}
			if !w.opts.IncludeHidden && strings.HasPrefix(filepath.Base(path), ".") {
				return filepath.SkipDir
			}
			depth := strings.Count(rel, string(os.PathSeparator)) + 1
			if !w.opts.depthOK(depth) {
				return filepath.SkipDir
			}
		}
		if err := watcher.Add(path); err != nil {
			w.logger.Debug("cannot watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// watchEntry builds an Entry for an event path. It returns false for paths
// outside the watch roots and for hidden entries when those are excluded.
func (w *Walker) watchEntry(path string) (Entry, bool) {
	root, ok := w.rootOf(path)
	if !ok {
		return Entry{}, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return Entry{}, false
	}
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		if !w.opts.IncludeHidden && strings.HasPrefix(part, ".") {
			return Entry{}, false
		}
	}

	entry := Entry{
		Path:  path,
		Root:  root,
		Depth: strings.Count(rel, string(os.PathSeparator)) + 1,
	}

	// The entry may already be gone (delete/rename events); report it
	// with whatever classification is still possible.
	info, err := os.Lstat(path)
	if err != nil {
		entry.Type = TypeOther
		return entry, true
	}
	if info.Mode()&os.ModeSymlink != 0 {
		entry.Type = TypeSymlink
		return entry, true
	}
	entry.Type = classifyInfo(info)
	return entry, true
}

// rootOf returns the configured root the path falls under. Containment is
// computed with filepath.Rel rather than prefix matching so relative roots
// like "." and the filesystem root are handled.
func (w *Walker) rootOf(path string) (string, bool) {
	for _, root := range w.opts.Roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			continue
		}
		return root, true
	}
	return "", false
}

// watchEventOf maps an fsnotify event onto a WatchEvent.
func watchEventOf(event fsnotify.Event) WatchEvent {
	switch {
	case event.Has(fsnotify.Create):
		return EventCreate
	case event.Has(fsnotify.Write):
		return EventModify
	case event.Has(fsnotify.Remove):
		return EventDelete
	case event.Has(fsnotify.Rename):
		return EventRename
	default:
		return EventChmod
	}
}
