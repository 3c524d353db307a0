// Package procenum implements the Process Enumerator (spec.md §4.2): a
// point-in-time snapshot of process identifiers visible to the caller.
package procenum

// Snapshot returns a finite, unordered set of process ids currently visible
// to the caller. Failure to obtain a snapshot is non-fatal to the
// Controller: it simply yields no candidates (spec.md §4.2), so Snapshot
// returns an empty slice rather than an error on platforms/conditions where
// enumeration cannot complete.
func Snapshot() []int {
	pids, err := snapshot()
	if err != nil {
		return nil
	}
	return pids
}
