package finder

import (
	"strings"
	"testing"
)

func TestNameFilter(t *testing.T) {
	tests := []struct {
		name       string
		patterns   []string
		ignoreCase bool
		entryName  string
		want       bool
	}{
		{"simple glob match", []string{"*.txt"}, false, "notes.txt", true},
		{"simple glob miss", []string{"*.rs"}, false, "notes.txt", false},
		{"case sensitive by default", []string{"*.TXT"}, false, "notes.txt", false},
		{"case folded pattern", []string{"*.TXT"}, true, "notes.txt", true},
		{"case folded name", []string{"*.txt"}, true, "NOTES.TXT", true},
		{"any pattern suffices", []string{"*.rs", "*.txt"}, false, "notes.txt", true},
		{"no pattern matches", []string{"*.rs", "*.go"}, false, "notes.txt", false},
		{"question mark wildcard", []string{"file?.log"}, false, "file1.log", true},
		{"character class", []string{"file[0-9].log"}, false, "filex.log", false},
		{"exact name", []string{"Makefile"}, false, "Makefile", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nf, err := newNameFilter(tt.patterns, tt.ignoreCase)
			if err != nil {
				t.Fatalf("newNameFilter: %v", err)
			}
			got := nf.Matches(Entry{Path: "/some/dir/" + tt.entryName})
			if got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.entryName, got, tt.want)
			}
		})
	}
}

func TestNameFilterInvalidPattern(t *testing.T) {
	if _, err := newNameFilter([]string{"[oops"}, false); err == nil {
		t.Fatal("expected error for unterminated character class")
	}
}

func TestTypeFilter(t *testing.T) {
	tf := newTypeFilter([]EntryType{TypeFile, TypeSymlink})

	if !tf.Matches(Entry{Type: TypeFile}) {
		t.Error("regular file should match")
	}
	if !tf.Matches(Entry{Type: TypeSymlink}) {
		t.Error("symlink should match")
	}
	if tf.Matches(Entry{Type: TypeDir}) {
		t.Error("directory should not match")
	}
}

func TestBuildFilters(t *testing.T) {
	filters, err := buildFilters(SearchOptions{
		NamePatterns: []string{"*.go"},
		Types:        []EntryType{TypeFile},
	})
	if err != nil {
		t.Fatalf("buildFilters: %v", err)
	}
	if len(filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(filters))
	}

	// AND semantics: both predicates must pass.
	e := Entry{Path: "/p/main.go", Type: TypeFile}
	if !matchesAll(filters, e) {
		t.Error("matching file rejected")
	}
	if matchesAll(filters, Entry{Path: "/p/main.go", Type: TypeDir}) {
		t.Error("directory passed a file-only type filter")
	}
	if matchesAll(filters, Entry{Path: "/p/main.rs", Type: TypeFile}) {
		t.Error("non-matching name passed the name filter")
	}
}

func TestBuildFiltersEmpty(t *testing.T) {
	filters, err := buildFilters(SearchOptions{})
	if err != nil {
		t.Fatalf("buildFilters: %v", err)
	}
	if len(filters) != 0 {
		t.Fatalf("expected no filters, got %d", len(filters))
	}
	if !matchesAll(filters, Entry{Path: "/anything"}) {
		t.Error("empty pipeline must match everything")
	}
}

func TestFilterDescriptions(t *testing.T) {
	nf, err := newNameFilter([]string{"*.go", "*.rs"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(nf.String(), "*.go") {
		t.Errorf("description %q does not mention the pattern", nf.String())
	}

	tf := newTypeFilter([]EntryType{TypeDir})
	if !strings.Contains(tf.String(), "d") {
		t.Errorf("description %q does not mention the type code", tf.String())
	}
}
