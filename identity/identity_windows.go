//go:build windows

package identity

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Self reads the current process's token identity. Failure is fatal to the
// caller (spec.md §4.3).
func Self() (PrincipalIdentity, error) {
	return identityOfToken(windows.GetCurrentProcessToken())
}

// Of reads pid's token identity. Failure yields ok=false; it is never
// fatal (spec.md §4.3) — an unopenable process is simply not a match.
func Of(pid int) (id PrincipalIdentity, ok bool) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return PrincipalIdentity{}, false
	}
	defer windows.CloseHandle(h)

	var token windows.Token
	if err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token); err != nil {
		return PrincipalIdentity{}, false
	}
	defer token.Close()

	pi, err := identityOfToken(token)
	if err != nil {
		return PrincipalIdentity{}, false
	}
	return pi, true
}

func identityOfToken(token windows.Token) (PrincipalIdentity, error) {
	tokenUser, err := token.GetTokenUser()
	if err != nil {
		return PrincipalIdentity{}, fmt.Errorf("reading token user: %w", err)
	}
	sidStr, err := tokenUser.User.Sid.String()
	if err != nil {
		return PrincipalIdentity{}, fmt.Errorf("stringifying SID: %w", err)
	}
	return PrincipalIdentity{
		SID:      sidStr,
		Elevated: token.IsElevated(),
	}, nil
}
