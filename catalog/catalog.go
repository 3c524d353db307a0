// Package catalog is a minimal stand-in for the host's localized message
// catalog, which spec.md places out of scope as an external collaborator.
package catalog

import "golang.org/x/text/language"

// Key names a catalog entry. Keys are stable across locales.
type Key string

const (
	KeepAliveMissingValue Key = "keepalive_missing_value"
	KeepAliveNotInteger   Key = "keepalive_not_integer"
	KeepAliveOutOfRange   Key = "keepalive_out_of_range"
	CannotLearnIdentity   Key = "cannot_learn_identity"
	CannotComputeImage    Key = "cannot_compute_image"
	CannotConnectPipe     Key = "cannot_connect_pipe"
	ServerLost            Key = "server_lost"
	ServerCrashed         Key = "server_crashed"
	UnderlyingOSError     Key = "underlying_os_error"
)

var en = map[Key]string{
	KeepAliveMissingValue: "/keepalive must be followed by ':' or '=' and a value",
	KeepAliveNotInteger:   "keep-alive is not an integer",
	KeepAliveOutOfRange:   "keep-alive must be -1 or greater",
	CannotLearnIdentity:   "cannot determine the identity of the current process",
	CannotComputeImage:    "cannot determine the location of the compiler server executable",
	CannotConnectPipe:     "cannot connect to server pipe",
	ServerLost:            "server is lost",
	ServerCrashed:         "server crashed (code=%s)",
	UnderlyingOSError:     "%s",
}

// bundles maps a base language subtag to its string table. Only "en" ships
// today; a real host would load additional bundles here.
var bundles = map[string]map[Key]string{
	"en": en,
}

// Locale is a resolved, catalog-backed message source. Zero value is the
// default ("en") locale.
type Locale struct {
	tag language.Tag
}

// Default returns the catalog's fallback locale.
func Default() Locale {
	return Locale{tag: language.English}
}

// Resolve parses a BCP-47 locale identifier and returns the Locale to use
// for it. A malformed or unsupported tag degrades to Default() rather than
// failing — the /preferreduilang directive is cosmetic, not load-bearing.
func Resolve(raw string) Locale {
	if raw == "" {
		return Default()
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return Default()
	}
	base, _ := tag.Base()
	if _, ok := bundles[base.String()]; !ok {
		return Default()
	}
	return Locale{tag: tag}
}

// Message resolves key to localized text, falling back to English when the
// locale has no entry (or the locale itself failed to resolve to a known
// bundle).
func (l Locale) Message(key Key) string {
	base, _ := l.tag.Base()
	if table, ok := bundles[base.String()]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return en[key]
}
