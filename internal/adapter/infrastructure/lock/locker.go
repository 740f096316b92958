// Package lock provides cross-process kvconfig lockers backed by lock files.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang-kvconfig/internal/pkg/kvconfig"

	"github.com/gofrs/flock"
)

const retryInterval = 100 * time.Millisecond

// FileLocker serializes codec operations across goroutines and processes.
// flock is per file description, so an in-process mutex is taken first.
type FileLocker struct {
	mu      sync.Mutex
	path    string
	timeout time.Duration
	lock    *flock.Flock
}

// Ensure FileLocker implements the kvconfig Locker
var _ kvconfig.Locker = (*FileLocker)(nil)

// NewFileLocker returns a locker on path that gives up after timeout.
func NewFileLocker(path string, timeout time.Duration) *FileLocker {
	return &FileLocker{
		path:    path,
		timeout: timeout,
		lock:    flock.New(path),
	}
}

// Path returns the lock file path.
func (l *FileLocker) Path() string {
	return l.path
}

// Lock blocks until the lock file is held or the timeout expires.
func (l *FileLocker) Lock() error {
	l.mu.Lock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("failed to create lock directory for %s: %w", l.path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	locked, err := l.lock.TryLockContext(ctx, retryInterval)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	if !locked {
		l.mu.Unlock()
		return fmt.Errorf("could not acquire lock %s: timeout after %v", l.path, l.timeout)
	}
	return nil
}

// Unlock releases the lock file. The lock file itself is left in place.
func (l *FileLocker) Unlock() error {
	defer l.mu.Unlock()
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.path, err)
	}
	return nil
}

// For returns a FileLocker on path, or a process-local mutex when path is empty.
func For(path string, timeout time.Duration) kvconfig.Locker {
	if path == "" {
		return kvconfig.NewMutex()
	}
	return NewFileLocker(path, timeout)
}

// With runs fn while holding l.
func With(l kvconfig.Locker, fn func() error) (err error) {
	if err := l.Lock(); err != nil {
		return err
	}
	defer func() {
		if uerr := l.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()
	return fn()
}
