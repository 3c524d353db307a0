// Package rlog sets up the process-wide op/go-logging logger used for
// the Controller's internal diagnostic breadcrumbs (retries, fallbacks),
// mirroring krd/main.go's SetupLogging call in the teacher.
package rlog

import (
	"os"

	"github.com/op/go-logging"
)

// Setup configures and returns a named logger writing to stderr at level.
// Unlike the teacher's daemon, the client never logs to syslog: it is a
// one-shot process and its only log consumer is the developer watching
// their terminal.
func Setup(name string, level logging.Level) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{shortfunc} ▶ %{message}`,
	))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, name)
	logging.SetBackend(leveled)

	log := logging.MustGetLogger(name)
	return log
}
