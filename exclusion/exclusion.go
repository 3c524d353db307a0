// Package exclusion implements the Host Exclusion component (spec.md
// §4.6): a named, host-wide advisory lock ensuring at most one client at a
// time attempts to spawn a server for a given expected image path.
package exclusion

import (
	"strings"
	"time"

	"github.com/youtube/vitess/go/ioutil2"
)

// Token is a scoped claim on the host-wide advisory lock (spec.md §3). At
// most one holder at a time across the host. Release is idempotent and is
// always safe to call, held or not.
type Token struct {
	held   bool
	handle lockHandle
	name   string
}

// Name canonicalizes expectedImagePath into a legal lock name by replacing
// path separators with '_' (spec.md §4.6, §6).
func Name(expectedImagePath string) string {
	r := strings.NewReplacer(`\`, "_", "/", "_", ":", "_")
	return "cscclient-spawn-" + r.Replace(expectedImagePath)
}

// Acquire attempts to claim the host-wide lock named after
// expectedImagePath, waiting up to timeout. The returned Token always holds
// a well-defined Held() state; acquisition failure (including timeout) is
// not an error, only a reason to take the fallback path (spec.md §4.6).
func Acquire(expectedImagePath string, timeout time.Duration) *Token {
	name := Name(expectedImagePath)
	h, held := acquireLock(name, timeout)
	return &Token{held: held, handle: h, name: name}
}

// Held reports whether the lock is currently held by this token.
func (t *Token) Held() bool {
	return t != nil && t.held
}

// Release explicitly releases the lock. Idempotent; safe to call on a
// token that never acquired the lock, and safe to call more than once.
func (t *Token) Release() {
	if t == nil || !t.held {
		return
	}
	releaseLock(t.handle)
	t.held = false
}

// RecordSpawnAttempt writes a small diagnostic breadcrumb (atomically, via
// ioutil2.WriteFileAtomic) naming the pid this host last attempted to spawn
// for expectedImagePath. Purely advisory: read back only by the
// Controller's DIAGNOSE state when a fallback spawn produced no pid; the
// recorded pid does not appear in the diagnostic text.
func RecordSpawnAttempt(expectedImagePath string, pid int) {
	path := breadcrumbPath(Name(expectedImagePath))
	_ = ioutil2.WriteFileAtomic(path, []byte(formatBreadcrumb(expectedImagePath, pid)), 0600)
}

// LastSpawnAttempt reads back the breadcrumb written by
// RecordSpawnAttempt, if any.
func LastSpawnAttempt(expectedImagePath string) (pid int, ok bool) {
	path := breadcrumbPath(Name(expectedImagePath))
	return readBreadcrumb(path)
}
