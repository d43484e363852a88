package finder

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func TestVisitedSetInsert(t *testing.T) {
	v := newVisitedSet()
	id := fileID{dev: 1, ino: 42}

	if !v.insert(id) {
		t.Fatal("first insert should succeed")
	}
	if v.insert(id) {
		t.Fatal("second insert of the same id should fail")
	}
	if !v.insert(fileID{dev: 1, ino: 43}) {
		t.Fatal("distinct id should insert")
	}
}

// TestVisitedSetConcurrentInsert checks that exactly one of many racing
// workers wins the check-and-insert for a given id.
func TestVisitedSetConcurrentInsert(t *testing.T) {
	v := newVisitedSet()
	id := fileID{dev: 7, ino: 7}

	var winners int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v.insert(id) {
				atomic.AddInt64(&winners, 1)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly one winner, got %d", winners)
	}
}

func TestResolveFileID(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	idTarget, err := resolveFileID(target)
	if err != nil {
		t.Fatalf("resolveFileID(target): %v", err)
	}
	idLink, err := resolveFileID(link)
	if err != nil {
		t.Fatalf("resolveFileID(link): %v", err)
	}

	// A symlink resolves to the identity of its target.
	if idTarget != idLink {
		t.Errorf("link identity %v != target identity %v", idLink, idTarget)
	}

	idDir, err := resolveFileID(dir)
	if err != nil {
		t.Fatal(err)
	}
	if idDir == idTarget {
		t.Error("distinct directories share an identity")
	}

	if _, err := resolveFileID(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing path")
	}
}
