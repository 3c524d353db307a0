// Package directives implements the Argument Pre-Processor (spec.md §4.1):
// it scans the raw argument vector once, pulls out the client-only
// /keepalive and /preferreduilang directives, and returns the residual
// arguments the server is entitled to see.
package directives

import (
	"strconv"
	"strings"

	"github.com/compilenet/cscclient/catalog"
)

// ClientDirectives is the record extracted from the argument vector
// (spec.md §3).
type ClientDirectives struct {
	KeepAlive           *int64
	PreferredUILanguage string
}

// FatalError is a client-side parse failure that must terminate the process
// with the client-error exit code (spec.md §4.1, §7). It carries the
// catalog key so the caller can resolve localized text without string
// matching.
type FatalError struct {
	Key catalog.Key
}

func (e *FatalError) Error() string { return string(e.Key) }

const keepAlivePrefix = "/keepalive"

// ExtractDirectives scans args once, in order, removing recognized
// /keepalive tokens and recording (without removing) /preferreduilang
// tokens. All other tokens pass through unchanged and in original order.
//
// ExtractDirectives is a pure function of args; applying it a second time
// to its own residual output is a no-op (spec.md §8).
func ExtractDirectives(args []string) (residual []string, dirs ClientDirectives, err error) {
	residual = make([]string, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, keepAlivePrefix) {
			v, matched, perr := parseKeepAlive(arg)
			if perr != nil {
				return nil, ClientDirectives{}, perr
			}
			if matched {
				dirs.KeepAlive = &v
				continue
			}
		}
		if lang, ok := parsePreferredUILang(arg); ok {
			dirs.PreferredUILanguage = lang
		}
		residual = append(residual, arg)
	}
	return residual, dirs, nil
}

// parseKeepAlive recognizes "/keepalive" followed immediately by ':' or '='
// and a decimal integer >= -1. Per spec.md §4.1, any token with this prefix
// whose very next character is not ':' or '=' is a fatal missing-value
// error — "/keepalive" itself and look-alikes like "/keepaliveX" are both
// /keepalive tokens that failed to supply a separator, not distinct flags
// that merely share a prefix.
func parseKeepAlive(arg string) (value int64, matched bool, err error) {
	rest := arg[len(keepAlivePrefix):]
	if rest == "" || (rest[0] != ':' && rest[0] != '=') {
		return 0, false, &FatalError{Key: catalog.KeepAliveMissingValue}
	}
	numStr := rest[1:]
	n, perr := strconv.ParseInt(numStr, 10, 64)
	if perr != nil {
		return 0, false, &FatalError{Key: catalog.KeepAliveNotInteger}
	}
	if n < -1 {
		return 0, false, &FatalError{Key: catalog.KeepAliveOutOfRange}
	}
	return n, true, nil
}

// parsePreferredUILang recognizes "/preferreduilang:" or
// "-preferreduilang:" and returns the dequoted suffix when it is non-empty.
func parsePreferredUILang(arg string) (string, bool) {
	lower := strings.ToLower(arg)
	for _, prefix := range []string{"/preferreduilang:", "-preferreduilang:"} {
		if strings.HasPrefix(lower, prefix) {
			raw := arg[len(prefix):]
			val := Dequote(raw)
			if val != "" {
				return val, true
			}
			return "", false
		}
	}
	return "", false
}

// Dequote implements the backslash-quote unescaping rule from spec.md §6:
// a run of N backslashes followed by a quote emits floor(N/2) literal
// backslashes; if N is odd the quote is kept literal, if N is even the
// quote toggles quoted mode (transparent to the caller — we just strip it);
// a run of backslashes not followed by a quote passes through verbatim.
func Dequote(s string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '\\' {
			j := i
			for j < len(s) && s[j] == '\\' {
				j++
			}
			n := j - i
			if j < len(s) && s[j] == '"' {
				out.WriteString(strings.Repeat(`\`, n/2))
				if n%2 == 1 {
					out.WriteByte('"')
				}
				i = j + 1
				continue
			}
			out.WriteString(strings.Repeat(`\`, n))
			i = j
			continue
		}
		if s[i] == '"' {
			i++
			continue
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String()
}
