//go:build !windows

package pipeconn

import (
	"net"
	"os"
	"testing"
	"time"
)

func TestConnectSucceedsAgainstListeningSocket(t *testing.T) {
	pid := os.Getpid()
	path := socketPath(channelName(pid))
	defer os.Remove(path)

	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	go func() {
		conn, err := l.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	ep, ok := Connect(pid, 2*time.Second)
	if !ok {
		t.Fatal("expected successful connect")
	}
	ep.Close()
}

func TestConnectFailsWhenNothingListens(t *testing.T) {
	_, ok := Connect(999999, 200*time.Millisecond)
	if ok {
		t.Fatal("expected failed connect when no server is listening")
	}
}
