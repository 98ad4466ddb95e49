package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLocked is returned when another run holds the workspace lock.
var ErrLocked = errors.New("another run is already in progress")

const lockFileName = ".layerci.lock"

// AcquireLock takes the single-flight lock for a workspace. Concurrent runs
// of the pipeline are not allowed; a second caller gets ErrLocked. The
// returned release func removes the lock file.
func AcquireLock(workDir string) (func() error, error) {
	path := filepath.Join(workDir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
		}
		return nil, fmt.Errorf("acquiring workspace lock: %w", err)
	}
	fmt.Fprintf(f, "pid=%d\n", os.Getpid())
	if err := f.Close(); err != nil {
		os.Remove(path) //nolint:errcheck
		return nil, fmt.Errorf("writing workspace lock: %w", err)
	}
	return func() error { return os.Remove(path) }, nil
}
