//go:build !windows

package identity

import (
	"fmt"
	"os"
)

// Self reads the current process's identity. Unlike identity.Of, failure
// here is always fatal to the caller (spec.md §4.3) — the Controller
// cannot safely proceed without knowing who it is.
func Self() (PrincipalIdentity, error) {
	uid := os.Getuid()
	return PrincipalIdentity{
		SID:      fmt.Sprintf("uid=%d", uid),
		Elevated: os.Geteuid() == 0,
	}, nil
}

// Of reads pid's identity. Failure yields ok=false, never an error the
// caller must handle specially — a process we can't introspect is simply
// not a match (spec.md §4.3).
func Of(pid int) (id PrincipalIdentity, ok bool) {
	statPath := fmt.Sprintf("/proc/%d/status", pid)
	f, err := os.Open(statPath)
	if err != nil {
		return PrincipalIdentity{}, false
	}
	defer f.Close()

	uid, euid, found := readUIDFromStatus(f)
	if !found {
		return PrincipalIdentity{}, false
	}
	return PrincipalIdentity{
		SID:      fmt.Sprintf("uid=%d", uid),
		Elevated: euid == 0,
	}, true
}
