// Package lock guards a deployment target against concurrent bot instances.
// The lock is a file in the temp directory holding the owner PID; an OS
// advisory lock serializes acquisition so two processes cannot both reclaim
// a stale record at the same moment.
package lock

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/gofrs/flock"
)

// Locker owns at most one lock file. Acquire and Release are safe to call
// from multiple goroutines of the same process.
type Locker struct {
	mu       sync.Mutex
	path     string
	flk      *flock.Flock
	pid      int
	acquired bool
}

// New returns a Locker for the lock file <name>.lock in the platform temp
// directory.
func New(name string) *Locker {
	path := filepath.Join(os.TempDir(), name+".lock")
	return &Locker{
		path: path,
		flk:  flock.New(path),
		pid:  os.Getpid(),
	}
}

// Acquire claims the lock for the current process. It returns false when
// another live instance holds it and never returns an error: filesystem
// failures are logged and reported as a failed acquisition. A record whose
// owner process is no longer running is reclaimed.
func (l *Locker) Acquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.acquired {
		return true
	}

	locked, err := l.flk.TryLock()
	if err != nil {
		log.Printf("lock: cannot lock %s: %v", l.path, err)
		return false
	}
	if !locked {
		if owner, rerr := l.readOwner(); rerr == nil {
			log.Printf("lock: another instance (pid %d) holds %s", owner, l.path)
		} else {
			log.Printf("lock: another instance holds %s", l.path)
		}
		return false
	}

	// The advisory lock is ours, but the record may still name a live
	// process that acquired before this file carried an advisory lock
	// (for example across a reboot). A live foreign owner keeps the lock.
	owner, err := l.readOwner()
	switch {
	case err == nil && owner != l.pid && processAlive(owner):
		log.Printf("lock: %s owned by running pid %d", l.path, owner)
		l.unlockQuietly()
		return false
	case err == nil && owner != l.pid:
		log.Printf("lock: reclaiming stale lock %s from dead pid %d", l.path, owner)
	}

	if err := os.WriteFile(l.path, []byte(strconv.Itoa(l.pid)), 0o644); err != nil {
		log.Printf("lock: write %s: %v", l.path, err)
		l.unlockQuietly()
		return false
	}

	l.acquired = true
	log.Printf("lock: acquired %s (pid %d)", l.path, l.pid)
	return true
}

// Release removes the lock record when it belongs to the current process.
// It never fails: a missing or foreign record is logged and left alone, so
// calling Release more than once is harmless.
func (l *Locker) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner, err := l.readOwner()
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("lock: %s already removed", l.path)
	case err != nil:
		log.Printf("lock: read %s: %v", l.path, err)
	case owner != l.pid:
		log.Printf("lock: %s belongs to pid %d, leaving it", l.path, owner)
	default:
		if rerr := os.Remove(l.path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			log.Printf("lock: remove %s: %v", l.path, rerr)
		} else {
			log.Printf("lock: released %s", l.path)
		}
	}

	if l.acquired {
		l.unlockQuietly()
		l.acquired = false
	}
}

// Acquired reports whether this Locker currently holds the lock.
func (l *Locker) Acquired() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquired
}

// Path returns the lock file location.
func (l *Locker) Path() string { return l.path }

func (l *Locker) readOwner() (int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, err
	}
	raw := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(raw)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("lock: bad pid record %q in %s", raw, l.path)
	}
	return pid, nil
}

func (l *Locker) unlockQuietly() {
	if err := l.flk.Unlock(); err != nil {
		log.Printf("lock: unlock %s: %v", l.path, err)
	}
}

// processAlive reports whether pid names a running process. Signal 0 probes
// without delivering anything; EPERM still proves the process exists. Any
// other failure means the pid is gone and the record is stale.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
