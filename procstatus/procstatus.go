// Package procstatus answers the two questions the Controller's DIAGNOSE
// state needs about a known pid (spec.md §4.8): is it still openable, and
// if so, can its exit code be retrieved.
package procstatus

// Openable reports whether pid can still be opened/queried at all.
func Openable(pid int) bool {
	return openable(pid)
}

// ExitCode reports pid's exit code formatted for display (e.g. as a hex
// value on platforms that surface crash codes that way), if retrievable.
func ExitCode(pid int) (string, bool) {
	return exitCode(pid)
}
