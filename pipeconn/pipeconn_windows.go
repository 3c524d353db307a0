//go:build windows

package pipeconn

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

// dial connects to the named pipe \\.\pipe\<name> with the context's
// deadline, mirroring the teacher's Windows pipe transport story — the
// Microsoft/go-winio dependency already carried in the teacher's go.mod.
func dial(ctx context.Context, name string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, `\\.\pipe\`+name)
}
