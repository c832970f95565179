package security

import "testing"

func TestSignResource(t *testing.T) {
	sig := SignResource("k", "avatars", "user-1", "abc")
	if sig != SignResource("k", "avatars", "user-1", "abc") {
		t.Fatal("signature not deterministic")
	}
	if !VerifyResource("k", sig, "avatars", "user-1", "abc") {
		t.Fatal("verify failed")
	}
	if VerifyResource("k", sig, "avatars", "user-2", "abc") {
		t.Fatal("verify accepted other parts")
	}
	if VerifyResource("other", sig, "avatars", "user-1", "abc") {
		t.Fatal("verify accepted other secret")
	}
}
