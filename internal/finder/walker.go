package finder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/karrick/godirwalk"
	"go.uber.org/zap"
)

// resultBuffer is the capacity of the result channel handed to streaming
// consumers. Workers block once it fills, which gives natural backpressure.
const resultBuffer = 128

// progressInterval is how often Progress callbacks fire during a walk.
const progressInterval = 500 * time.Millisecond

// Stats holds walk statistics that are updated atomically while workers run.
type Stats struct {
	EntriesSeen  int64         // Entries discovered, matched or not
	DirsExpanded int64         // Directories listed
	Matches      int64         // Entries that passed the filter pipeline
	Errors       int64         // Recoverable per-entry failures
	ElapsedTime  time.Duration // Time since the walk started
}

// ProgressFn is called periodically with walk statistics. Implementations
// must be safe for concurrent use.
type ProgressFn func(stats Stats)

// Walker owns one search configuration and runs walks over it. The
// configuration is validated once in New; Stream and Run perform the
// traversal itself. A Walker may be reused, but each invocation gets fresh
// traversal state.
type Walker struct {
	opts    SearchOptions
	filters []Filter
	logger  *zap.Logger

	stats Stats
	start time.Time
}

// New validates the options and compiles the filter pipeline. Invalid glob
// patterns and missing roots are rejected here, before any traversal.
func New(opts SearchOptions) (*Walker, error) {
	if len(opts.Roots) == 0 {
		return nil, ErrNoRoots
	}
	if opts.MaxDepth != nil && *opts.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must be non-negative, got %d", *opts.MaxDepth)
	}

	roots := make([]string, len(opts.Roots))
	for i, root := range opts.Roots {
		roots[i] = filepath.Clean(root)
	}
	opts.Roots = roots

	filters, err := buildFilters(opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Walker{opts: opts, filters: filters, logger: logger}, nil
}

// Options returns the options the walker was built from.
func (w *Walker) Options() SearchOptions {
	return w.opts
}

// Stats returns a snapshot of the current walk statistics.
func (w *Walker) Stats() Stats {
	s := Stats{
		EntriesSeen:  atomic.LoadInt64(&w.stats.EntriesSeen),
		DirsExpanded: atomic.LoadInt64(&w.stats.DirsExpanded),
		Matches:      atomic.LoadInt64(&w.stats.Matches),
		Errors:       atomic.LoadInt64(&w.stats.Errors),
	}
	if !w.start.IsZero() {
		s.ElapsedTime = time.Since(w.start)
	}
	return s
}

// Stream starts the walk and returns a channel of results that the caller
// drains while workers are still producing. Matches and recoverable errors
// arrive on the same channel; the channel is closed once the frontier is
// exhausted and every worker has stopped. Only root validation failures are
// returned as an immediate error, before any worker starts.
//
// The caller must drain the channel or cancel the context; otherwise
// workers block on the full buffer.
func (w *Walker) Stream(ctx context.Context) (<-chan Result, error) {
	if err := validateRoots(w.opts.Roots); err != nil {
		return nil, err
	}

	w.stats = Stats{}
	w.start = time.Now()

	results := make(chan Result, resultBuffer)
	go w.run(ctx, results)
	return results, nil
}

// Run performs the walk in batch mode, returning all matches and all
// recoverable errors after the traversal completes. With Sort enabled the
// matches are stably sorted by display path as a final step, never during
// concurrent production.
func (w *Walker) Run(ctx context.Context) ([]Match, []*WalkError, error) {
	results, err := w.Stream(ctx)
	if err != nil {
		return nil, nil, err
	}

	var matches []Match
	var walkErrs []*WalkError
	for r := range results {
		if r.Err != nil {
			var we *WalkError
			if !errors.As(r.Err, &we) {
				we = &WalkError{Err: r.Err}
			}
			walkErrs = append(walkErrs, we)
			continue
		}
		matches = append(matches, r.Match)
	}

	if w.opts.Sort {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].DisplayPath < matches[j].DisplayPath
		})
	}
	return matches, walkErrs, nil
}

// run seeds the frontier, drives the worker pool to completion and closes
// the result channel.
func (w *Walker) run(ctx context.Context, results chan<- Result) {
	defer close(results)

	fr := newFrontier()
	visited := newVisitedSet()

	fields := []zap.Field{
		zap.Strings("roots", w.opts.Roots),
		zap.Int("workers", w.opts.workers()),
		zap.Bool("follow_symlinks", w.opts.FollowSymlinks),
	}
	if w.opts.MaxDepth != nil {
		fields = append(fields, zap.Int("max_depth", *w.opts.MaxDepth))
	}
	w.logger.Debug("starting walk", fields...)

	// Cancellation watcher: closing the frontier stops workers from
	// popping new tasks while they finish their current expansion.
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			w.logger.Debug("walk canceled", zap.Error(ctx.Err()))
			fr.close()
		case <-stop:
		}
	}()

	if w.opts.Progress != nil {
		go func() {
			ticker := time.NewTicker(progressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					w.opts.Progress(w.Stats())
				}
			}
		}()
	}

	// Seed before starting workers so an idle pool cannot observe an
	// empty frontier and exit early.
	for _, root := range w.opts.Roots {
		w.seedRoot(ctx, root, fr, results)
	}

	var wg sync.WaitGroup
	for i := 0; i < w.opts.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.worker(ctx, fr, visited, results)
		}()
	}
	wg.Wait()
	close(stop)

	if w.opts.Progress != nil {
		w.opts.Progress(w.Stats())
	}
	w.logger.Debug("walk complete",
		zap.Int64("matches", atomic.LoadInt64(&w.stats.Matches)),
		zap.Int64("errors", atomic.LoadInt64(&w.stats.Errors)),
	)
}

// seedRoot enqueues one frontier task per directory root. Roots that are
// not directories are treated as plain entries: filtered and reported, but
// never expanded. The root directory itself is not reported.
func (w *Walker) seedRoot(ctx context.Context, root string, fr *frontier, results chan<- Result) {
	entry := Entry{Path: root, Root: root, Depth: 0}

	info, err := os.Lstat(root)
	if err != nil {
		// Roots were validated moments ago; a failure here means the
		// entry vanished mid-walk.
		w.reportError(ctx, results, &WalkError{Path: root, Err: err})
		return
	}

	switch {
	case info.IsDir():
		entry.Type = TypeDir
		fr.push(task{entry: entry})
		return
	case info.Mode()&os.ModeSymlink != 0:
		entry.Type = TypeSymlink
		if w.opts.FollowSymlinks {
			target, err := os.Stat(root)
			if err != nil {
				w.reportError(ctx, results, &WalkError{Path: root, Err: err})
				return
			}
			if target.IsDir() {
				entry.Type = TypeDir
				fr.push(task{entry: entry})
				return
			}
			entry.Type = classifyInfo(target)
		}
	case info.Mode().IsRegular():
		entry.Type = TypeFile
	default:
		entry.Type = TypeOther
	}

	atomic.AddInt64(&w.stats.EntriesSeen, 1)
	if matchesAll(w.filters, entry) {
		w.reportMatch(ctx, results, entry)
	}
}

// worker pops frontier tasks and expands them until the frontier reports
// completion or cancellation.
func (w *Walker) worker(ctx context.Context, fr *frontier, visited *visitedSet, results chan<- Result) {
	scratch := make([]byte, godirwalk.MinimumScratchBufferSize)
	for {
		t, ok := fr.pop()
		if !ok {
			return
		}
		w.expand(ctx, t.entry, fr, visited, results, scratch)
		fr.done()
	}
}

// expand lists one directory, reports its matching children and re-enqueues
// subdirectories within the depth bound. Every per-entry failure is
// converted into a WalkError on the result stream; nothing here aborts the
// walk.
func (w *Walker) expand(ctx context.Context, dir Entry, fr *frontier, visited *visitedSet, results chan<- Result, scratch []byte) {
	if w.opts.FollowSymlinks {
		id, err := resolveFileID(dir.Path)
		if err != nil {
			w.reportError(ctx, results, err)
			return
		}
		if !visited.insert(id) {
			w.logger.Debug("already visited, skipping", zap.String("path", dir.Path))
			return
		}
	}

	dirents, err := godirwalk.ReadDirents(dir.Path, scratch)
	if err != nil {
		w.reportError(ctx, results, &WalkError{Path: dir.Path, Err: err})
		return
	}
	atomic.AddInt64(&w.stats.DirsExpanded, 1)

	for _, de := range dirents {
		if ctx.Err() != nil {
			return
		}

		name := de.Name()
		if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		child := Entry{
			Path:  filepath.Join(dir.Path, name),
			Root:  dir.Root,
			Depth: dir.Depth + 1,
		}

		expandable := false
		switch {
		case de.IsSymlink():
			child.Type = TypeSymlink
			if w.opts.FollowSymlinks {
				target, err := os.Stat(child.Path)
				if err != nil {
					// Broken symlink or vanished target.
					w.reportError(ctx, results, &WalkError{Path: child.Path, Err: err})
					continue
				}
				child.Type = classifyInfo(target)
				expandable = target.IsDir()
			}
		case de.IsDir():
			child.Type = TypeDir
			expandable = true
		case de.IsRegular():
			child.Type = TypeFile
		default:
			child.Type = TypeOther
		}

		atomic.AddInt64(&w.stats.EntriesSeen, 1)
		if matchesAll(w.filters, child) {
			w.reportMatch(ctx, results, child)
		}
		if expandable && w.opts.depthOK(child.Depth) {
			fr.push(task{entry: child})
		}
	}
}

// classifyInfo maps resolved file info onto an entry type.
func classifyInfo(info os.FileInfo) EntryType {
	switch {
	case info.IsDir():
		return TypeDir
	case info.Mode().IsRegular():
		return TypeFile
	case info.Mode()&os.ModeSymlink != 0:
		return TypeSymlink
	default:
		return TypeOther
	}
}

// displayPath renders an entry path according to the configured format.
// Formatting failures fall back to the discovered path.
func (w *Walker) displayPath(e Entry) string {
	switch w.opts.PathFormat {
	case PathFormatAbsolute:
		if abs, err := filepath.Abs(e.Path); err == nil {
			return abs
		}
	case PathFormatRelative:
		if rel, err := filepath.Rel(e.Root, e.Path); err == nil {
			return rel
		}
	}
	return e.Path
}

func (w *Walker) reportMatch(ctx context.Context, results chan<- Result, e Entry) {
	atomic.AddInt64(&w.stats.Matches, 1)
	select {
	case results <- Result{Match: Match{Entry: e, DisplayPath: w.displayPath(e)}}:
	case <-ctx.Done():
	}
}

func (w *Walker) reportError(ctx context.Context, results chan<- Result, err error) {
	atomic.AddInt64(&w.stats.Errors, 1)
	select {
	case results <- Result{Err: err}:
	case <-ctx.Done():
	}
}
