package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// FileLock marks ownership with a sibling lock file created exclusively.
// A stale file left by a crashed run must be removed by hand.
type FileLock struct {
	path string
	held bool
}

func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

func (l *FileLock) Path() string {
	return l.path
}

func (l *FileLock) Acquire(ctx context.Context) error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return ErrLocked
	}
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	l.held = true
	return nil
}

func (l *FileLock) Release(ctx context.Context) error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}
