//go:build !windows

package exclusion

import (
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// lockHandle is the open lock-file descriptor backing a held Token.
type lockHandle struct {
	file *os.File
}

// acquireLock claims an exclusive, advisory flock on a lock file named
// after name, polling until timeout elapses (flock itself has no timeout
// parameter on most Unixes, so we poll LOCK_EX|LOCK_NB).
func acquireLock(name string, timeout time.Duration) (lockHandle, bool) {
	path := filepath.Join(os.TempDir(), name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return lockHandle{}, false
	}

	deadline := time.Now().Add(timeout)
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return lockHandle{file: f}, true
		}
		if time.Now().After(deadline) {
			f.Close()
			return lockHandle{}, false
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func releaseLock(h lockHandle) {
	if h.file == nil {
		return
	}
	unix.Flock(int(h.file.Fd()), unix.LOCK_UN)
	h.file.Close()
}
