//go:build windows

package procenum

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// snapshot lists pids via CreateToolhelp32Snapshot, which already returns a
// complete snapshot in one call. Spec.md §4.2 describes a
// grow-the-buffer-until-the-count-is-short pattern, which matches the
// EnumProcesses API more directly than the toolhelp snapshot API used here;
// a port that prefers EnumProcesses should grow a []uint32 pid buffer,
// calling EnumProcesses repeatedly and doubling the buffer until the
// returned byte count is less than the buffer's capacity in bytes, which
// signals the snapshot was not truncated.
func snapshot() ([]int, error) {
	h, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(h)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	pids := make([]int, 0, 256)
	if err := windows.Process32First(h, &entry); err != nil {
		return nil, err
	}
	for {
		pids = append(pids, int(entry.ProcessID))
		if err := windows.Process32Next(h, &entry); err != nil {
			break
		}
	}
	return pids, nil
}
