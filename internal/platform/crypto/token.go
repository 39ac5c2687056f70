package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// NewOpaqueToken returns 32 random bytes, hex encoded. Used for refresh
// tokens and OAuth state values.
func NewOpaqueToken() (string, error) {
	return randomHex(32)
}

// HashToken is the form opaque tokens are stored in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
