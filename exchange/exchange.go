// Package exchange implements the Request/Response Exchanger (spec.md
// §4.7): writes a single request message to a connected channel and reads
// a single response message back, verbatim.
package exchange

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blang/semver"
)

// ProtocolVersion is this client's compiled-in wire protocol version. The
// Exchanger rejects a response whose protocol_version is not
// semver-compatible with this range (SPEC_FULL.md, grounded on
// daemon/client.RequestKrdVersionOver's exact-version check in the
// teacher, generalized to a compatible range).
var ProtocolVersion = semver.MustParse("1.0.0")

// RequestLanguage names which compiler the server should dispatch to
// (spec.md §3). Opaque to the Controller; simply forwarded.
type RequestLanguage string

const (
	LanguageCSharp RequestLanguage = "csharp"
	LanguageVB     RequestLanguage = "vb"
)

// request is the wire shape of a single compilation request.
type request struct {
	Language        RequestLanguage `json:"language"`
	WorkingDir      string          `json:"working_dir"`
	Args            []string        `json:"args"`
	Lib             string          `json:"lib,omitempty"`
	KeepAlive       *int64          `json:"keep_alive,omitempty"`
	ProtocolVersion string          `json:"protocol_version"`
}

// CompletedResponse is the value returned by the server (spec.md §3).
type CompletedResponse struct {
	ExitCode int
	Stdout   string
	Stderr   string
	UTF8     bool
}

// response is the wire shape of a single server response.
type response struct {
	ExitCode        int    `json:"exit_code"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	UTF8            bool   `json:"utf8"`
	ProtocolVersion string `json:"protocol_version"`
}

// Exchange writes a single request to rw and reads exactly one response
// frame back from it. A write failure or malformed/incompatible response yields
// ok=false (spec.md §4.7); the Exchanger never interprets the payloads
// beyond the protocol-version compatibility check.
func Exchange(rw io.ReadWriter, lang RequestLanguage, cwd string, args []string, keepAlive *int64) (CompletedResponse, bool) {
	req := request{
		Language:        lang,
		WorkingDir:      cwd,
		Args:            args,
		KeepAlive:       keepAlive,
		ProtocolVersion: ProtocolVersion.String(),
	}
	if lib, ok := os.LookupEnv("LIB"); ok {
		req.Lib = lib
	}

	if err := writeFrame(rw, req); err != nil {
		return CompletedResponse{}, false
	}

	var resp response
	if err := readFrame(rw, &resp); err != nil {
		return CompletedResponse{}, false
	}
	if !compatible(resp.ProtocolVersion) {
		return CompletedResponse{}, false
	}
	return CompletedResponse{
		ExitCode: resp.ExitCode,
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		UTF8:     resp.UTF8,
	}, true
}

func compatible(version string) bool {
	v, err := semver.Parse(version)
	if err != nil {
		return false
	}
	return v.Major == ProtocolVersion.Major
}

// writeFrame writes a single length-prefixed JSON frame: a 4-byte
// big-endian length followed by the JSON body, written as one Write call
// so the frame is never interleaved with a concurrent writer on the same
// channel (spec.md §4.7 "atomically").
func writeFrame(w io.Writer, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	buf := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(body)))
	copy(buf[4:], body)
	_, err = w.Write(buf)
	return err
}

func readFrame(r io.Reader, v interface{}) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return fmt.Errorf("reading frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	const maxFrame = 64 << 20
	if n > maxFrame {
		return fmt.Errorf("frame too large: %d bytes", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("reading frame body: %w", err)
	}
	return json.Unmarshal(body, v)
}
