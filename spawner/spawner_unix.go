//go:build !windows

package spawner

import (
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// spawn launches the server detached from the client's controlling
// terminal and standard streams, the closest Unix analogue to spec.md
// §4.5's Windows-specific launch flags (invalid std handles, no console
// window): a new session via Setsid, and /dev/null on stdin/stdout/stderr.
func spawn(expectedImagePath string, env []string) (pid int, ok bool) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, false
	}
	defer devNull.Close()

	cmd := exec.Command(expectedImagePath)
	cmd.Dir = filepath.Dir(expectedImagePath)
	cmd.Env = env
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, false
	}
	p := cmd.Process.Pid
	// The spawned process is detached; release it immediately so the
	// client does not keep it as a child to be waited on.
	_ = cmd.Process.Release()
	return p, true
}
