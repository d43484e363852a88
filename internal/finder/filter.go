package finder

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/text/unicode/norm"
)

// Filter is a pure predicate over a discovered entry. Implementations must
// be safe for concurrent use without synchronization: they may not touch
// the filesystem or mutate shared state.
type Filter interface {
	Matches(e Entry) bool
	String() string
}

// buildFilters compiles the predicate pipeline from the options. Pattern
// compilation errors surface here, at configuration time, never during the
// walk.
func buildFilters(opts SearchOptions) ([]Filter, error) {
	var filters []Filter

	if len(opts.NamePatterns) > 0 {
		nf, err := newNameFilter(opts.NamePatterns, opts.IgnoreCase)
		if err != nil {
			return nil, err
		}
		filters = append(filters, nf)
	}

	if len(opts.Types) > 0 {
		filters = append(filters, newTypeFilter(opts.Types))
	}

	return filters, nil
}

// matchesAll applies the pipeline with AND semantics.
func matchesAll(filters []Filter, e Entry) bool {
	for _, f := range filters {
		if !f.Matches(e) {
			return false
		}
	}
	return true
}

// foldName normalizes a name for case-insensitive comparison.
func foldName(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// nameFilter matches entry base names against one or more glob patterns.
// Any pattern matching is sufficient.
type nameFilter struct {
	globs      []glob.Glob
	patterns   []string
	ignoreCase bool
}

func newNameFilter(patterns []string, ignoreCase bool) (*nameFilter, error) {
	globs := make([]glob.Glob, len(patterns))
	for i, pattern := range patterns {
		p := pattern
		if ignoreCase {
			p = foldName(p)
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		globs[i] = g
	}
	return &nameFilter{globs: globs, patterns: patterns, ignoreCase: ignoreCase}, nil
}

func (f *nameFilter) Matches(e Entry) bool {
	name := e.Name()
	if f.ignoreCase {
		name = foldName(name)
	}
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (f *nameFilter) String() string {
	if f.ignoreCase {
		return fmt.Sprintf("iname matches any of [%s]", strings.Join(f.patterns, ", "))
	}
	return fmt.Sprintf("name matches any of [%s]", strings.Join(f.patterns, ", "))
}

// typeFilter restricts matches to a set of entry types.
type typeFilter struct {
	allow map[EntryType]bool
}

func newTypeFilter(types []EntryType) *typeFilter {
	allow := make(map[EntryType]bool, len(types))
	for _, t := range types {
		allow[t] = true
	}
	return &typeFilter{allow: allow}
}

func (f *typeFilter) Matches(e Entry) bool {
	return f.allow[e.Type]
}

func (f *typeFilter) String() string {
	codes := make([]string, 0, len(f.allow))
	for t := range f.allow {
		codes = append(codes, t.String())
	}
	return fmt.Sprintf("type is one of [%s]", strings.Join(codes, ", "))
}
