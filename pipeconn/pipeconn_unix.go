//go:build !windows

package pipeconn

import (
	"context"
	"net"
	"os"
	"path/filepath"
)

// dial connects to the Unix domain socket standing in for a named pipe on
// this platform (spec.md §9 Portability: "a host-local duplex byte-channel
// addressed by a name containing the server pid").
func dial(ctx context.Context, name string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", socketPath(name))
}

func socketPath(name string) string {
	dir := os.TempDir()
	return filepath.Join(dir, name+".sock")
}
