//go:build windows

package spawner

import (
	"path/filepath"
	"syscall"

	"golang.org/x/sys/windows"
)

// spawn launches expectedImagePath with no inherited standard streams,
// normal priority, no console window, and a Unicode environment block
// (spec.md §4.5). Process and thread handles are closed immediately after
// launch; only the pid is retained.
func spawn(expectedImagePath string, env []string) (pid int, ok bool) {
	exe, err := windows.UTF16PtrFromString(expectedImagePath)
	if err != nil {
		return 0, false
	}
	dir, err := windows.UTF16PtrFromString(filepath.Dir(expectedImagePath))
	if err != nil {
		return 0, false
	}
	envBlock, err := createEnvBlock(env)
	if err != nil {
		return 0, false
	}

	si := &windows.StartupInfo{
		Flags:      windows.STARTF_USESTDHANDLES,
		StdInput:   windows.InvalidHandle,
		StdOutput:  windows.InvalidHandle,
		StdErr:     windows.InvalidHandle,
	}
	pi := &windows.ProcessInformation{}

	creationFlags := uint32(windows.CREATE_NO_WINDOW | windows.CREATE_UNICODE_ENVIRONMENT | windows.NORMAL_PRIORITY_CLASS)

	err = windows.CreateProcess(
		exe,
		nil,
		nil,
		nil,
		false,
		creationFlags,
		envBlock,
		dir,
		si,
		pi,
	)
	if err != nil {
		return 0, false
	}
	windows.CloseHandle(pi.Thread)
	windows.CloseHandle(pi.Process)
	return int(pi.ProcessId), true
}

// createEnvBlock builds a Unicode (UTF-16), double-NUL-terminated
// environment block from env, the format CreateProcess expects.
func createEnvBlock(env []string) (*uint16, error) {
	var block []uint16
	for _, e := range env {
		u, err := syscall.UTF16FromString(e)
		if err != nil {
			return nil, err
		}
		block = append(block, u[:len(u)-1]...) // drop the per-string NUL
		block = append(block, 0)
	}
	block = append(block, 0)
	return &block[0], nil
}
