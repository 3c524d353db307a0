//go:build windows

package imagepath

import (
	"os"

	"golang.org/x/sys/windows"
)

// Of reads pid's executable image path via QueryFullProcessImageName.
// Failure yields ok=false; it is never fatal (spec.md §4.3).
func Of(pid int) (path string, ok bool) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return "", false
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", false
	}
	return windows.UTF16ToString(buf[:size]), true
}

// Self returns the current process's own executable image path.
func Self() (string, error) {
	return os.Executable()
}
