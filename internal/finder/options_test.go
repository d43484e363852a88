package finder

import (
	"runtime"
	"testing"
)

func TestParseEntryType(t *testing.T) {
	tests := []struct {
		code    string
		want    EntryType
		wantErr bool
	}{
		{"f", TypeFile, false},
		{"d", TypeDir, false},
		{"l", TypeSymlink, false},
		{"x", TypeOther, true},
		{"", TypeOther, true},
		{"file", TypeOther, true},
	}

	for _, tt := range tests {
		got, err := ParseEntryType(tt.code)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseEntryType(%q): expected error", tt.code)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEntryType(%q): %v", tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEntryType(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestEntryTypeString(t *testing.T) {
	if TypeFile.String() != "f" || TypeDir.String() != "d" || TypeSymlink.String() != "l" || TypeOther.String() != "?" {
		t.Error("type codes do not round-trip")
	}
}

func TestWorkersDefault(t *testing.T) {
	o := SearchOptions{}
	if got := o.workers(); got != runtime.NumCPU() {
		t.Errorf("default workers = %d, want NumCPU (%d)", got, runtime.NumCPU())
	}

	o.Parallelism = 3
	if got := o.workers(); got != 3 {
		t.Errorf("workers = %d, want 3", got)
	}
}

func TestDepthOK(t *testing.T) {
	unbounded := SearchOptions{}
	if !unbounded.depthOK(0) || !unbounded.depthOK(1000) {
		t.Error("unbounded options must allow any depth")
	}

	zero := 0
	bounded := SearchOptions{MaxDepth: &zero}
	if !bounded.depthOK(0) {
		t.Error("roots sit at depth 0 and must be expandable with MaxDepth=0")
	}
	if bounded.depthOK(1) {
		t.Error("depth 1 must not expand with MaxDepth=0")
	}
}

func TestEntryName(t *testing.T) {
	e := Entry{Path: "/a/b/c.txt"}
	if e.Name() != "c.txt" {
		t.Errorf("Name() = %q", e.Name())
	}
}
