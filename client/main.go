// Command cscclient is the client half of the compiler-server pair
// described by this module: it discovers or spawns a long-running
// compilation server on the local host, exchanges one request/response
// pair with it, and reproduces the server's output and exit status on its
// own standard streams.
package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gologging "github.com/op/go-logging"

	"github.com/compilenet/cscclient/catalog"
	"github.com/compilenet/cscclient/controller"
	"github.com/compilenet/cscclient/directives"
	"github.com/compilenet/cscclient/exchange"
	"github.com/compilenet/cscclient/exclusion"
	"github.com/compilenet/cscclient/identity"
	"github.com/compilenet/cscclient/imagepath"
	rlog "github.com/compilenet/cscclient/logging"
	"github.com/compilenet/cscclient/output"
	"github.com/compilenet/cscclient/pipeconn"
	"github.com/compilenet/cscclient/procenum"
	"github.com/compilenet/cscclient/procstatus"
	"github.com/compilenet/cscclient/spawner"
)

// ClientErrorExitCode is returned for every client-initiated fatal error
// (spec.md §6/§7). The spec fixes no specific integer; this module's
// choice (documented in DESIGN.md) reserves a single nonzero value for
// "the client itself failed", distinct from whatever value a successfully
// exchanged server response may carry.
const ClientErrorExitCode = 2

// serverBasename is this module's concrete choice of server executable
// name used to derive ExpectedImagePath (spec.md §3).
const serverBasename = "cscserver"

func main() {
	initConsole()

	residual, dirs, err := directives.ExtractDirectives(os.Args[1:])
	if err != nil {
		output.Fatal(catalog.Default().Message(fatalErrorKey(err)))
		os.Exit(ClientErrorExitCode)
	}

	locale := catalog.Resolve(dirs.PreferredUILanguage)
	log := rlog.Setup("cscclient", gologging.WARNING)

	cwd, err := os.Getwd()
	if err != nil {
		output.Fatal(diagnosticMessage(locale, &controller.Diagnostic{
			CatalogKey: string(catalog.UnderlyingOSError),
			Detail:     err.Error(),
		}))
		os.Exit(ClientErrorExitCode)
	}

	ctrl := controller.New(deps(log))
	outcome := ctrl.Run(requestLanguage(), cwd, residual, dirs.KeepAlive)

	if outcome.Diagnostic != nil {
		output.Fatal(diagnosticMessage(locale, outcome.Diagnostic))
		os.Exit(ClientErrorExitCode)
	}

	output.Emit(os.Stdout, os.Stderr, *outcome.Response)
	os.Exit(outcome.Response.ExitCode)
}

func deps(log *gologging.Logger) controller.Deps {
	return controller.Deps{
		ComputeExpectedImagePath: func() (string, error) {
			return imagepath.Expected(serverBasename)
		},
		SelfIdentity: identity.Self,
		Enumerate:    procenum.Snapshot,
		IdentityOf:   identity.Of,
		ImagePathOf:  imagepath.Of,
		Connect: func(pid int, timeout time.Duration) (io.ReadWriteCloser, bool) {
			ep, ok := pipeconn.Connect(pid, timeout)
			if !ok {
				return nil, false
			}
			return ep, true
		},
		Spawn: spawner.Spawn,
		AcquireLock: func(expectedImagePath string, timeout time.Duration) controller.Lock {
			return exclusion.Acquire(expectedImagePath, timeout)
		},
		Exchange: func(rw io.ReadWriter, lang exchange.RequestLanguage, cwd string, args []string, keepAlive *int64) (exchange.CompletedResponse, bool) {
			return exchange.Exchange(rw, lang, cwd, args, keepAlive)
		},
		ProcessOpenable:    procstatus.Openable,
		ProcessExitCode:    procstatus.ExitCode,
		RecordSpawnAttempt: exclusion.RecordSpawnAttempt,
		Log:                log,
	}
}

// requestLanguage picks the RequestLanguage tag from the client's own
// invocation name, the way a "vbcsc" vs "csc" copy of the client
// distinguishes the two compiler front-ends in practice (spec.md §3:
// opaque to the Controller, simply forwarded).
func requestLanguage() exchange.RequestLanguage {
	base := strings.ToLower(filepath.Base(os.Args[0]))
	if strings.Contains(base, "vb") {
		return exchange.LanguageVB
	}
	return exchange.LanguageCSharp
}

func fatalErrorKey(err error) catalog.Key {
	var fe *directives.FatalError
	if errors.As(err, &fe) {
		return fe.Key
	}
	return catalog.UnderlyingOSError
}

func diagnosticMessage(locale catalog.Locale, d *controller.Diagnostic) string {
	key := catalog.Key(d.CatalogKey)
	msg := locale.Message(key)
	if strings.Contains(msg, "%s") {
		return strings.Replace(msg, "%s", d.Detail, 1)
	}
	if d.Detail != "" {
		return msg + ": " + d.Detail
	}
	return msg
}
