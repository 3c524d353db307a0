//go:build !windows

package procstatus

import (
	"os"
	"testing"
)

func TestOpenableReportsTrueForSelf(t *testing.T) {
	if !Openable(os.Getpid()) {
		t.Fatal("expected the current process to be openable")
	}
}

func TestOpenableReportsFalseForImpossiblePid(t *testing.T) {
	if Openable(1 << 30) {
		t.Fatal("expected an implausible pid to be unopenable")
	}
}
