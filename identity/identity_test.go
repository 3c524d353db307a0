package identity

import "testing"

func TestEqualRequiresSameSIDAndElevation(t *testing.T) {
	a := PrincipalIdentity{SID: "uid=501", Elevated: false}
	b := PrincipalIdentity{SID: "uid=501", Elevated: false}
	c := PrincipalIdentity{SID: "uid=501", Elevated: true}
	d := PrincipalIdentity{SID: "uid=502", Elevated: false}

	if !a.Equal(b) {
		t.Fatal("identical identities should match")
	}
	if a.Equal(c) {
		t.Fatal("differing elevation must not match")
	}
	if a.Equal(d) {
		t.Fatal("differing SID must not match")
	}
}
