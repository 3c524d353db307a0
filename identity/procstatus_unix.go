//go:build !windows

package identity

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// readUIDFromStatus parses the "Uid:" line of a /proc/<pid>/status stream,
// which lists real, effective, saved-set, and filesystem uids in that
// order. It returns the real and effective uid.
func readUIDFromStatus(r io.Reader) (uid, euid int, found bool) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Uid:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "Uid:"))
		if len(fields) < 2 {
			return 0, 0, false
		}
		u, err1 := strconv.Atoi(fields[0])
		e, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return u, e, true
	}
	return 0, 0, false
}
