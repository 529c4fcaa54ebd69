package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = "tgupload.lock"

// ErrAlreadyRunning is returned when another process holds the data
// directory lock.
var ErrAlreadyRunning = errors.New("app: another tgupload instance is using the data directory")

func acquireLock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("app: create data dir %s: %w", dataDir, err)
	}
	lock := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("app: lock data dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, dataDir)
	}
	return lock, nil
}

func releaseLock(lock *flock.Flock) error {
	if lock == nil || !lock.Locked() {
		return nil
	}
	if err := lock.Unlock(); err != nil {
		return fmt.Errorf("app: unlock data dir: %w", err)
	}
	return os.Remove(lock.Path())
}
