package finder

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoRoots is returned when a walk is started without any root paths.
var ErrNoRoots = errors.New("finder: no root paths given")

// WalkError is a recoverable failure on a single path. It is delivered
// through the result stream alongside matches and never aborts the walk.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// validateRoots stats every root and reports all invalid roots at once.
// A failure here is fatal and happens before any worker starts.
func validateRoots(roots []string) error {
	if len(roots) == 0 {
		return ErrNoRoots
	}

	var errs []error
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			errs = append(errs, fmt.Errorf("invalid root %q: %w", root, err))
		}
	}
	return errors.Join(errs...)
}
