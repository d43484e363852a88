package finder

import (
	"sync"

	"golang.org/x/sys/unix"
)

// fileID is the resolved identity of a filesystem object. Two paths that
// reach the same object through symlinks share a fileID.
type fileID struct {
	dev uint64
	ino uint64
}

// resolveFileID stats the path, following symlinks, and returns its
// device+inode identity.
func resolveFileID(path string) (fileID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileID{}, &WalkError{Path: path, Err: err}
	}
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}

// visitedSet records directories that have already been expanded. It is
// created once per walk and consulted only when symlink following is
// enabled, closing cycles through symlinked loops.
type visitedSet struct {
	mu  sync.Mutex
	ids map[fileID]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{ids: make(map[fileID]struct{})}
}

// insert atomically checks membership and records the id. It returns false
// when the id was already present, which is the cycle-breaking signal:
// losing the race to a sibling worker silently short-circuits expansion.
func (v *visitedSet) insert(id fileID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, seen := v.ids[id]; seen {
		return false
	}
	v.ids[id] = struct{}{}
	return true
}
