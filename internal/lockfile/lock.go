// Package lockfile provides the advisory single-writer lock for the
// feature collection. Exactly one process may hold the write lock at a
// time; readers go lockless and tolerate a stale snapshot.
package lockfile

import (
	"errors"
	"fmt"
	"os"
)

// ErrLockBusy is returned by the non-blocking acquire when another process
// already holds the lock.
var ErrLockBusy = errors.New("collection lock already held by another process")

// Lock is a held advisory lock backed by an open lock file.
type Lock struct {
	f *os.File
}

// Acquire opens (creating if needed) the lock file at path and takes an
// exclusive blocking lock on it. Callers must Release when done.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600) // #nosec G304 - lock path derives from the project dir
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := flockExclusiveBlocking(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	return &Lock{f: f}, nil
}

// TryAcquire is the non-blocking variant. Returns ErrLockBusy if another
// process holds the lock.
func TryAcquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600) // #nosec G304 - lock path derives from the project dir
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := flockExclusiveNonBlock(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the lock file. The file itself is left in
// place; removing it would race with other acquirers.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := flockUnlock(l.f)
	closeErr := l.f.Close()
	l.f = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
