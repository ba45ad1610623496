// Package cryptox wraps the password and token hashing used by the identity
// provider.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of per-user password salts.
const SaltSize = 16

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives an argon2id key from password and salt.
func HashPassword(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// VerifyPassword reports whether password hashes to want under salt.
// The comparison runs in constant time.
func VerifyPassword(password, salt, want []byte) bool {
	return subtle.ConstantTimeCompare(HashPassword(password, salt), want) == 1
}

// HashToken returns the hex SHA-256 digest of an opaque token. Refresh
// tokens and confirmation codes are stored only in this form.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
