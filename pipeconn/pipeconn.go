// Package pipeconn implements the Pipe Connector (spec.md §4.4): opens a
// named, machine-local duplex byte-channel addressed by a process id, with
// a caller-supplied timeout.
package pipeconn

import (
	"context"
	"io"
	"strconv"
	"time"
)

// ChannelEndpoint is an owned handle to a connected duplex byte-channel
// (spec.md §3). It is never returned to the caller unless the underlying
// channel is connected.
type ChannelEndpoint struct {
	io.ReadWriteCloser
}

const baseName = "cscclient"

// minAttempts formalizes Open Question (a) from spec.md §9: the pipe
// connector itself guarantees at least this many connection attempts per
// logical connect action, rather than relying on it as an emergent property
// of Controller-level retries.
const minAttempts = 3

// retryBackoff is the pause between two failed connection attempts.
const retryBackoff = 50 * time.Millisecond

// Connect opens the duplex channel for the server identified by pid,
// waiting up to timeout for it to accept a connection. A failure returns
// ok=false; it is never fatal (spec.md §4.4).
func Connect(pid int, timeout time.Duration) (ep *ChannelEndpoint, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	name := channelName(pid)

	perAttempt := timeout / minAttempts
	if perAttempt <= 0 {
		perAttempt = timeout
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, false
			case <-time.After(retryBackoff):
			}
		}
		attemptCtx, attemptCancel := context.WithTimeout(ctx, perAttempt)
		conn, err := dial(attemptCtx, name)
		attemptCancel()
		if err == nil {
			return &ChannelEndpoint{ReadWriteCloser: conn}, true
		}
	}
}

func channelName(pid int) string {
	return baseName + strconv.Itoa(pid)
}
