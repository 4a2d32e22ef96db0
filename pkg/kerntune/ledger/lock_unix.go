//go:build unix

package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lock takes an exclusive, non-blocking advisory lock on the ledger's
// sidecar lock file. Every ledger operation holds the lock for its full
// duration and releases it on every exit path; contention surfaces as
// ErrLocked rather than waiting, so a stuck invocation cannot hang the
// next one invisibly.
func (l *Ledger) lock() (func(), error) {
	lockPath := l.path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating lock directory: %v", ErrStorage, err)
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: opening lock file: %v", ErrStorage, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
		}
		return nil, fmt.Errorf("%w: acquiring lock: %v", ErrStorage, err)
	}

	return func() {
		_ = unix.Flock(int(file.Fd()), unix.LOCK_UN) // ignore unlock errors
		_ = file.Close()
	}, nil
}
