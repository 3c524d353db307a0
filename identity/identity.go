// Package identity implements the Identity Probe (spec.md §4.3): reading
// the current principal's security identity and elevation state, and
// comparing a candidate process's identity against it.
package identity

// PrincipalIdentity is a (security identifier, elevation flag) pair, as
// defined in spec.md §3. On Unix this is modeled as the real user id plus
// a "running as root" elevation flag; on Windows it is the process token's
// user SID plus the token's elevation flag.
type PrincipalIdentity struct {
	SID      string
	Elevated bool
}

// Equal reports whether two identities match: byte-equal security
// identifiers AND equal elevation flags (spec.md §4.3).
func (p PrincipalIdentity) Equal(other PrincipalIdentity) bool {
	return p.SID == other.SID && p.Elevated == other.Elevated
}
