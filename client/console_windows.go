//go:build windows

package main

import "golang.org/x/sys/windows"

// initConsole enables ANSI escape interpretation on the attached console so
// output.Fatal's colored diagnostics render correctly on legacy console
// hosts that don't default to it (grounded on kr_windows.go's initTerminal).
func initConsole() {
	var m uint32
	windows.GetConsoleMode(windows.Stdout, &m)
	windows.SetConsoleMode(windows.Stdout, m|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
