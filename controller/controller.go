// Package controller implements the Controller state machine (spec.md
// §4.8): the top-level logic that sequences process discovery, spawning,
// and exchange, attributing failures to retry, fallback, or a fatal
// diagnostic.
package controller

import (
	"io"
	"time"

	"github.com/op/go-logging"
	uuid "github.com/satori/go.uuid"

	"github.com/compilenet/cscclient/exchange"
	"github.com/compilenet/cscclient/exclusion"
	"github.com/compilenet/cscclient/identity"
	"github.com/compilenet/cscclient/imagepath"
)

// Timeouts fixed by spec.md §4.8/§5.
const (
	LockTimeout            = 60 * time.Second
	ExistingConnectTimeout = 2 * time.Second
	NewConnectTimeout      = 60 * time.Second
	InterRetrySleep        = 500 * time.Millisecond
)

// Lock is the interface the Controller needs from the Host Exclusion
// component (spec.md §4.6).
type Lock interface {
	Held() bool
	Release()
}

// noopLock stands in for the lock when AcquireLock returns nil (as a fake
// may in tests that don't care about lock behavior); it never claims to
// hold the lock.
type noopLock struct{}

func (noopLock) Held() bool { return false }
func (noopLock) Release()   {}

// Deps wires every leaf component the Controller sequences. Each field is a
// thin function hook so the state machine can be driven against fakes in
// tests without touching real OS handles (grounded on
// daemon/control.EnclaveClientI's interface-seam style in the teacher).
type Deps struct {
	ComputeExpectedImagePath func() (string, error)
	SelfIdentity             func() (identity.PrincipalIdentity, error)
	Enumerate                func() []int
	IdentityOf               func(pid int) (identity.PrincipalIdentity, bool)
	ImagePathOf              func(pid int) (string, bool)
	Connect                  func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool)
	Spawn                    func(expectedImagePath string) (int, bool)
	AcquireLock              func(expectedImagePath string, timeout time.Duration) Lock
	Exchange                 func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool)
	ProcessOpenable          func(pid int) bool
	ProcessExitCode          func(pid int) (string, bool)
	RecordSpawnAttempt       func(expectedImagePath string, pid int)
	Sleep                    func(time.Duration)
	Log                      *logging.Logger
}

// Outcome is the terminal result of a Controller run: exactly one of
// Response or Diagnostic is set (spec.md §8: "exactly one of
// {connected-and-exchanged, fatal diagnostic} occurs").
type Outcome struct {
	Response   *exchange.CompletedResponse
	Diagnostic *Diagnostic
}

// Diagnostic is a terminal, user-visible failure (spec.md §4.8 DIAGNOSE,
// §7).
type Diagnostic struct {
	CatalogKey string
	Detail     string
}

// Controller runs the state machine for a single compilation request.
type Controller struct {
	deps Deps
	corr string
}

// New builds a Controller. Each invocation gets its own correlation id
// (SPEC_FULL.md's go.uuid supplement) so "retrying"/"falling back" log
// lines can be tied to the eventual terminal outcome across processes.
func New(deps Deps) *Controller {
	return &Controller{deps: deps, corr: uuid.NewV4().String()}
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.deps.Log == nil {
		return
	}
	c.deps.Log.Infof("[%s] "+format, append([]interface{}{c.corr}, args...)...)
}

type request struct {
	lang      exchange.RequestLanguage
	cwd       string
	args      []string
	keepAlive *int64
}

// Run executes START through the terminal state and returns the Outcome
// (spec.md §4.8).
func (c *Controller) Run(lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) Outcome {
	req := request{lang: lang, cwd: cwd, args: args, keepAlive: keepAlive}

	expectedImagePath, err := c.deps.ComputeExpectedImagePath()
	if err != nil {
		return fatal("cannot_compute_image", err.Error())
	}

	self, err := c.deps.SelfIdentity()
	if err != nil {
		return fatal("cannot_learn_identity", err.Error())
	}

	lock := c.deps.AcquireLock(expectedImagePath, LockTimeout)
	if lock == nil {
		lock = noopLock{}
	}

	if lock.Held() {
		c.logf("acquired host exclusion lock")
		if outcome, handled := c.tryExisting(expectedImagePath, self, req, lock); handled {
			return outcome
		}
		return c.spawnUnderLock(expectedImagePath, req, lock)
	}

	c.logf("lock acquisition timed out, falling back without it")
	return c.fallbackSpawn(expectedImagePath, req)
}

// tryExisting implements TRY_EXISTING. handled is true when this call
// produced the run's terminal Outcome (a matching candidate was found and
// a connection to it succeeded); false means no compatible,
// connectable candidate exists and the caller should proceed to
// SPAWN_UNDER_LOCK, still holding lock.
func (c *Controller) tryExisting(expectedImagePath string, self identity.PrincipalIdentity, req request, lock Lock) (Outcome, bool) {
	for _, pid := range c.deps.Enumerate() {
		path, ok := c.deps.ImagePathOf(pid)
		if !ok || !imagepath.Equal(path, expectedImagePath) {
			continue
		}
		id, ok := c.deps.IdentityOf(pid)
		if !ok || !id.Equal(self) {
			continue
		}

		conn, ok := c.deps.Connect(pid, ExistingConnectTimeout)
		if !ok {
			// spec.md §4.8's tie-break rule ("the first that passes both
			// checks AND successfully connects wins") takes precedence
			// over the terser SPAWN_UNDER_LOCK transition note: a failed
			// connect to one matching candidate does not end the
			// existing-server attempt while other matching candidates
			// remain (DESIGN.md open-question decision).
			continue
		}
		defer conn.Close()
		lock.Release()
		c.logf("connected to existing server pid=%d", pid)

		resp, ok := c.deps.Exchange(conn, req.lang, req.cwd, req.args, req.keepAlive)
		if ok {
			return Outcome{Response: &resp}, true
		}
		c.logf("exchange with existing server pid=%d failed, retrying once on a fresh server", pid)
		// The lock was already released above, so the retry proceeds
		// via the no-lock fallback path (spec.md §4.8 EXCHANGE(*) note).
		return c.fallbackSpawn(expectedImagePath, req), true
	}
	return Outcome{}, false
}

// spawnUnderLock implements SPAWN_UNDER_LOCK. Called while lock is held.
func (c *Controller) spawnUnderLock(expectedImagePath string, req request, lock Lock) Outcome {
	pid, ok := c.deps.Spawn(expectedImagePath)
	if !ok {
		return c.releaseAndSleep(expectedImagePath, req, lock)
	}
	c.logf("spawned new server pid=%d", pid)

	conn, ok := c.deps.Connect(pid, NewConnectTimeout)
	if !ok {
		if c.deps.RecordSpawnAttempt != nil {
			c.deps.RecordSpawnAttempt(expectedImagePath, pid)
		}
		return c.releaseAndSleep(expectedImagePath, req, lock)
	}
	defer conn.Close()
	lock.Release()
	c.logf("connected to newly spawned server pid=%d", pid)

	resp, ok := c.deps.Exchange(conn, req.lang, req.cwd, req.args, req.keepAlive)
	if ok {
		return Outcome{Response: &resp}
	}
	// Exchange with an already-fresh server failed: no further retry
	// (spec.md error table: "yes once", already spent).
	return c.diagnose(expectedImagePath, pid, true)
}

// releaseAndSleep implements RELEASE_AND_SLEEP.
func (c *Controller) releaseAndSleep(expectedImagePath string, req request, lock Lock) Outcome {
	lock.Release()
	sleep := c.deps.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(InterRetrySleep)
	return c.fallbackSpawn(expectedImagePath, req)
}

// fallbackSpawn implements FALLBACK_SPAWN (spec.md §4.8), run without the
// host lock.
func (c *Controller) fallbackSpawn(expectedImagePath string, req request) Outcome {
	pid, ok := c.deps.Spawn(expectedImagePath)
	if !ok {
		return c.diagnoseNoPid(expectedImagePath)
	}
	c.logf("fallback-spawned server pid=%d", pid)

	conn, ok := c.deps.Connect(pid, NewConnectTimeout)
	if !ok {
		return c.diagnose(expectedImagePath, pid, false)
	}
	defer conn.Close()
	c.logf("connected to fallback server pid=%d", pid)

	resp, ok := c.deps.Exchange(conn, req.lang, req.cwd, req.args, req.keepAlive)
	if ok {
		return Outcome{Response: &resp}
	}
	return c.diagnose(expectedImagePath, pid, true)
}

// diagnose implements the terminal DIAGNOSE state for a run where a pid is
// known. channelEstablished distinguishes "we connected but the exchange
// failed" from "we never even connected".
func (c *Controller) diagnose(expectedImagePath string, pid int, channelEstablished bool) Outcome {
	if c.deps.RecordSpawnAttempt != nil {
		c.deps.RecordSpawnAttempt(expectedImagePath, pid)
	}
	if !channelEstablished {
		return fatal("cannot_connect_pipe", "no channel was ever established")
	}
	openable := c.deps.ProcessOpenable != nil && c.deps.ProcessOpenable(pid)
	if !openable {
		return fatal("server_lost", "server process is no longer reachable")
	}
	if c.deps.ProcessExitCode != nil {
		if code, ok := c.deps.ProcessExitCode(pid); ok {
			return fatal("server_crashed", code)
		}
	}
	return fatal("underlying_os_error", "server connection failed for an unknown reason")
}

// diagnoseNoPid implements DIAGNOSE for a run where spawn itself never
// produced a pid. It consults the breadcrumb exclusion.RecordSpawnAttempt
// left on disk for expectedImagePath (e.g. by a SPAWN_UNDER_LOCK connect
// that failed earlier in this invocation; the file is never removed, so it
// may also come from an earlier invocation). With a recorded pid it runs
// diagnose for that pid with no channel established; without one it
// reports the same cannot_connect_pipe key directly.
func (c *Controller) diagnoseNoPid(expectedImagePath string) Outcome {
	if pid, ok := exclusion.LastSpawnAttempt(expectedImagePath); ok {
		return c.diagnose(expectedImagePath, pid, false)
	}
	// No channel was ever established here either: spawn itself never
	// produced a pid to connect to. The unconditional first DIAGNOSE check
	// (spec.md §4.8) applies regardless of whether a pid is known.
	return fatal("cannot_connect_pipe", "unable to spawn the compiler server")
}

func fatal(key, detail string) Outcome {
	return Outcome{Diagnostic: &Diagnostic{CatalogKey: key, Detail: detail}}
}
