// Package hash provides credential fingerprinting for duplicate detection.
// Fingerprints let the analyzer compare secret material for equality without
// carrying plaintext credentials through match records or logs.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CredentialFingerprint computes a SHA-256 hex digest over a username/password
// pair. Two secrets with the same fingerprint hold identical credentials.
func CredentialFingerprint(username, password string) string {
	return StringHash(fmt.Sprintf("%d:%s:%s", len(username), username, password))
}

// ValueFingerprint computes a SHA-256 hex digest over an opaque secret value
// (a plain string or a key-value mapping). The value is serialized to JSON for
// consistent hashing; a serialization failure yields an empty fingerprint,
// which never matches anything.
func ValueFingerprint(value interface{}) string {
	if value == nil {
		return ""
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return BytesHash(data)
}

// StringHash computes a SHA-256 hex digest of a string.
func StringHash(input string) string {
	return BytesHash([]byte(input))
}

// BytesHash computes a SHA-256 hex digest of a byte slice.
func BytesHash(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}
