// Package output implements the Output emission component (spec.md §4.9):
// writing the server's stdout/stderr payloads to the client's own standard
// streams with the right encoding, and writing fatal diagnostics in
// styled, always-UTF-8 text to stderr.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/compilenet/cscclient/exchange"
)

// Emit writes resp's stdout/stderr payloads to the given streams, verbatim
// (spec.md §4.9). resp.Stdout/Stderr are already UTF-8 text decoded off the
// wire, and Go strings are UTF-8 natively, so no transcoding step is needed
// on the write side regardless of whether the target is a console or a
// redirected file/pipe.
func Emit(stdout, stderr io.Writer, resp exchange.CompletedResponse) {
	if resp.Stdout != "" {
		io.WriteString(stdout, resp.Stdout)
	}
	if resp.Stderr != "" {
		io.WriteString(stderr, resp.Stderr)
	}
}

// isConsole reports whether w is a real console, using go-isatty the way
// the teacher's color-output helpers decide whether to emit ANSI escapes.
func isConsole(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Fatal writes msg to stderr in red (spec.md §7). Color escapes are only
// emitted when stderr is an actual console; a redirected pipe or log file
// gets plain text, matching fatih/color's own auto-detection intent, which
// colorable.NewColorable bypasses by design.
func Fatal(msg string) {
	if !isConsole(os.Stderr) {
		fmt.Fprintln(os.Stderr, msg)
		return
	}
	w := colorable.NewColorable(os.Stderr)
	red := color.New(color.FgRed)
	red.Fprintln(w, msg)
}

// Fatalf is Fatal with fmt.Sprintf-style formatting.
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Sprintf(format, args...))
}
