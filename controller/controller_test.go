package controller

import (
	"io"
	"testing"
	"time"

	"github.com/compilenet/cscclient/exchange"
	"github.com/compilenet/cscclient/identity"
)

// fakeConn is a no-op ReadWriteCloser standing in for a connected channel.
type fakeConn struct {
	closed bool
}

func (f *fakeConn) Read(p []byte) (int, error)  { return 0, io.EOF }
func (f *fakeConn) Write(p []byte) (int, error) { return len(p), nil }
func (f *fakeConn) Close() error                { f.closed = true; return nil }

type fakeLock struct {
	held     bool
	released bool
}

func (f *fakeLock) Held() bool { return f.held }
func (f *fakeLock) Release()   { f.released = true; f.held = false }

const testExpectedPath = `C:\x\VBCSCompiler.exe`

var testSelf = identity.PrincipalIdentity{SID: "uid=501", Elevated: false}

func baseDeps() Deps {
	return Deps{
		ComputeExpectedImagePath: func() (string, error) { return testExpectedPath, nil },
		SelfIdentity:             func() (identity.PrincipalIdentity, error) { return testSelf, nil },
		Enumerate:                func() []int { return nil },
		IdentityOf:               func(pid int) (identity.PrincipalIdentity, bool) { return identity.PrincipalIdentity{}, false },
		ImagePathOf:              func(pid int) (string, bool) { return "", false },
		Connect:                  func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool) { return nil, false },
		Spawn:                    func(expectedImagePath string) (int, bool) { return 0, false },
		AcquireLock:              func(expectedImagePath string, timeout time.Duration) Lock { return &fakeLock{held: true} },
		Exchange: func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool) {
			return exchange.CompletedResponse{}, false
		},
		Sleep: func(time.Duration) {},
	}
}

func TestHappyPathExistingServer(t *testing.T) {
	deps := baseDeps()
	deps.Enumerate = func() []int { return []int{42} }
	deps.ImagePathOf = func(pid int) (string, bool) { return testExpectedPath, true }
	deps.IdentityOf = func(pid int) (identity.PrincipalIdentity, bool) { return testSelf, true }
	lock := &fakeLock{held: true}
	deps.AcquireLock = func(string, time.Duration) Lock { return lock }
	conn := &fakeConn{}
	deps.Connect = func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool) {
		if pid != 42 {
			t.Fatalf("expected connect to matching pid 42, got %d", pid)
		}
		return conn, true
	}
	deps.Exchange = func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool) {
		return exchange.CompletedResponse{ExitCode: 0, Stdout: "ok\n"}, true
	}

	outcome := New(deps).Run(exchange.LanguageVB, "/tmp", []string{"foo.vb"}, nil)

	if outcome.Diagnostic != nil {
		t.Fatalf("expected success, got diagnostic: %+v", outcome.Diagnostic)
	}
	if outcome.Response == nil || outcome.Response.ExitCode != 0 || outcome.Response.Stdout != "ok\n" {
		t.Fatalf("unexpected response: %+v", outcome.Response)
	}
	if !lock.released {
		t.Fatal("expected lock to be released once a channel was established")
	}
	if !conn.closed {
		t.Fatal("expected the connected channel to be closed on exit")
	}
}

func TestSkipsCandidateWithWrongUser(t *testing.T) {
	deps := baseDeps()
	deps.Enumerate = func() []int { return []int{1, 2} }
	deps.ImagePathOf = func(pid int) (string, bool) { return testExpectedPath, true }
	deps.IdentityOf = func(pid int) (identity.PrincipalIdentity, bool) {
		if pid == 1 {
			return identity.PrincipalIdentity{SID: "uid=999"}, true // foreign user
		}
		return testSelf, true
	}
	var connectedPid int
	deps.Connect = func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool) {
		connectedPid = pid
		return &fakeConn{}, true
	}
	deps.Exchange = func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool) {
		return exchange.CompletedResponse{ExitCode: 0}, true
	}

	outcome := New(deps).Run(exchange.LanguageVB, "/tmp", nil, nil)

	if outcome.Diagnostic != nil {
		t.Fatalf("expected success, got %+v", outcome.Diagnostic)
	}
	if connectedPid != 2 {
		t.Fatalf("expected to connect to the same-user candidate (pid 2), got %d", connectedPid)
	}
}

func TestTriesNextCandidateWhenFirstMatchFailsToConnect(t *testing.T) {
	deps := baseDeps()
	deps.Enumerate = func() []int { return []int{1, 2} }
	deps.ImagePathOf = func(pid int) (string, bool) { return testExpectedPath, true }
	deps.IdentityOf = func(pid int) (identity.PrincipalIdentity, bool) { return testSelf, true }
	var exchangedPid int
	deps.Connect = func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool) {
		if pid == 1 {
			return nil, false
		}
		exchangedPid = pid
		return &fakeConn{}, true
	}
	deps.Exchange = func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool) {
		return exchange.CompletedResponse{ExitCode: 0}, true
	}

	outcome := New(deps).Run(exchange.LanguageCSharp, "/tmp", nil, nil)

	if outcome.Diagnostic != nil {
		t.Fatalf("expected success, got %+v", outcome.Diagnostic)
	}
	if exchangedPid != 2 {
		t.Fatalf("expected to fall through to pid 2 after pid 1's connect failed, got %d", exchangedPid)
	}
}

func TestNoExistingServerSpawnsAndConnects(t *testing.T) {
	deps := baseDeps()
	deps.Spawn = func(expectedImagePath string) (int, bool) { return 77, true }
	deps.Connect = func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool) {
		if pid != 77 {
			t.Fatalf("expected connect to spawned pid 77, got %d", pid)
		}
		if timeout != NewConnectTimeout {
			t.Fatalf("expected new-server timeout, got %v", timeout)
		}
		return &fakeConn{}, true
	}
	deps.Exchange = func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool) {
		return exchange.CompletedResponse{ExitCode: 3, Stderr: "E\n"}, true
	}

	outcome := New(deps).Run(exchange.LanguageCSharp, "/tmp", nil, nil)

	if outcome.Diagnostic != nil {
		t.Fatalf("expected success, got %+v", outcome.Diagnostic)
	}
	if outcome.Response.ExitCode != 3 || outcome.Response.Stderr != "E\n" {
		t.Fatalf("unexpected response: %+v", outcome.Response)
	}
}

func TestLockTimeoutFallsBackToSpawnWithoutLock(t *testing.T) {
	deps := baseDeps()
	deps.AcquireLock = func(string, time.Duration) Lock { return &fakeLock{held: false} }
	spawnCalls := 0
	deps.Spawn = func(expectedImagePath string) (int, bool) {
		spawnCalls++
		return 99, true
	}
	deps.Connect = func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool) { return &fakeConn{}, true }
	deps.Exchange = func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool) {
		return exchange.CompletedResponse{ExitCode: 0}, true
	}

	outcome := New(deps).Run(exchange.LanguageCSharp, "/tmp", nil, nil)

	if outcome.Diagnostic != nil {
		t.Fatalf("expected success via fallback spawn, got %+v", outcome.Diagnostic)
	}
	if spawnCalls != 1 {
		t.Fatalf("expected exactly one spawn on the fallback path, got %d", spawnCalls)
	}
}

func TestServerCrashMidExchangeDiagnosesCrash(t *testing.T) {
	deps := baseDeps()
	deps.Spawn = func(expectedImagePath string) (int, bool) { return 55, true }
	deps.Connect = func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool) { return &fakeConn{}, true }
	deps.Exchange = func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool) {
		return exchange.CompletedResponse{}, false
	}
	deps.ProcessOpenable = func(pid int) bool { return true }
	deps.ProcessExitCode = func(pid int) (string, bool) { return "0xC0000005", true }
	var recordedPid int
	deps.RecordSpawnAttempt = func(expectedImagePath string, pid int) { recordedPid = pid }

	outcome := New(deps).Run(exchange.LanguageCSharp, "/tmp", nil, nil)

	if outcome.Response != nil {
		t.Fatal("expected a fatal diagnostic, not a response")
	}
	if outcome.Diagnostic.CatalogKey != "server_crashed" || outcome.Diagnostic.Detail != "0xC0000005" {
		t.Fatalf("unexpected diagnostic: %+v", outcome.Diagnostic)
	}
	if recordedPid != 55 {
		t.Fatalf("expected breadcrumb recorded for pid 55, got %d", recordedPid)
	}
}
