package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialFingerprint_Deterministic(t *testing.T) {
	a := CredentialFingerprint("admin", "same_password")
	b := CredentialFingerprint("admin", "same_password")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestCredentialFingerprint_Differs(t *testing.T) {
	a := CredentialFingerprint("admin", "pass1")
	b := CredentialFingerprint("admin", "pass2")
	assert.NotEqual(t, a, b)
}

func TestCredentialFingerprint_NoBoundaryCollision(t *testing.T) {
	// "ab"+"c" must not collide with "a"+"bc"
	a := CredentialFingerprint("ab", "c")
	b := CredentialFingerprint("a", "bc")
	assert.NotEqual(t, a, b)
}

func TestValueFingerprint(t *testing.T) {
	assert.Empty(t, ValueFingerprint(nil))
	assert.Equal(t,
		ValueFingerprint(map[string]string{"accessKeyID": "AKIA123"}),
		ValueFingerprint(map[string]string{"accessKeyID": "AKIA123"}))
	assert.NotEqual(t,
		ValueFingerprint("plain-text-secret"),
		ValueFingerprint("other-secret"))
}
