//go:build !windows

package imagepath

import (
	"fmt"
	"os"
)

// Of reads pid's executable image path. Failure yields ok=false; it is
// never fatal (spec.md §4.3).
func Of(pid int) (path string, ok bool) {
	link := fmt.Sprintf("/proc/%d/exe", pid)
	resolved, err := os.Readlink(link)
	if err != nil {
		return "", false
	}
	return resolved, true
}

// Self returns the current process's own executable image path.
func Self() (string, error) {
	return os.Readlink("/proc/self/exe")
}
