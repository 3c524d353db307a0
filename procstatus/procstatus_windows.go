//go:build windows

package procstatus

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func openable(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	windows.CloseHandle(h)
	return true
}

// exitCode retrieves pid's exit code via GetExitCodeProcess, formatted as
// hex (spec.md scenario 5: "server crashed (code=0xC0000005)").
func exitCode(pid int) (string, bool) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return "", false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return "", false
	}
	if code == 259 /* STILL_ACTIVE */ {
		return "", false
	}
	return fmt.Sprintf("0x%08X", code), true
}
