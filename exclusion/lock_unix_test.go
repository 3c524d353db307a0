//go:build !windows

package exclusion

import (
	"testing"
	"time"
)

func TestAcquireThenReleaseAllowsReacquire(t *testing.T) {
	path := "cscclient-test-lock-" + time.Now().Format("150405.000000000")

	tok1 := Acquire(path, time.Second)
	if !tok1.Held() {
		t.Fatal("expected first acquire to succeed")
	}
	tok1.Release()

	tok2 := Acquire(path, time.Second)
	if !tok2.Held() {
		t.Fatal("expected reacquire after release to succeed")
	}
	tok2.Release()
}

func TestAcquireTimesOutWhenAlreadyHeld(t *testing.T) {
	path := "cscclient-test-lock-contended-" + time.Now().Format("150405.000000000")

	tok1 := Acquire(path, time.Second)
	if !tok1.Held() {
		t.Fatal("expected first acquire to succeed")
	}
	defer tok1.Release()

	tok2 := Acquire(path, 150*time.Millisecond)
	if tok2.Held() {
		t.Fatal("expected second acquire to time out while first holds the lock")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	path := "cscclient-test-lock-idempotent-" + time.Now().Format("150405.000000000")
	tok := Acquire(path, time.Second)
	if !tok.Held() {
		t.Fatal("expected acquire to succeed")
	}
	tok.Release()
	tok.Release() // must not panic or error
}
