//go:build windows

package exclusion

import (
	"time"

	"golang.org/x/sys/windows"
)

// lockHandle is the open mutex handle backing a held Token.
type lockHandle struct {
	h windows.Handle
}

// acquireLock claims a named Windows mutex, waiting up to timeout for a
// competing holder to release it (spec.md §4.6).
func acquireLock(name string, timeout time.Duration) (lockHandle, bool) {
	namePtr, err := windows.UTF16PtrFromString(`Global\` + name)
	if err != nil {
		return lockHandle{}, false
	}
	h, err := windows.CreateMutex(nil, false, namePtr)
	if err != nil {
		return lockHandle{}, false
	}

	ms := uint32(timeout / time.Millisecond)
	ev, err := windows.WaitForSingleObject(h, ms)
	if err != nil || (ev != windows.WAIT_OBJECT_0 && ev != windows.WAIT_ABANDONED) {
		windows.CloseHandle(h)
		return lockHandle{}, false
	}
	return lockHandle{h: h}, true
}

func releaseLock(h lockHandle) {
	if h.h == 0 {
		return
	}
	windows.ReleaseMutex(h.h)
	windows.CloseHandle(h.h)
}
