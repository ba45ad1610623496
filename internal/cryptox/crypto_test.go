package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Deterministic(t *testing.T) {
	salt := []byte("fixed-salt-value")

	k1 := HashPassword([]byte("hunter22"), salt)
	k2 := HashPassword([]byte("hunter22"), salt)

	require.Len(t, k1, 32)
	assert.True(t, bytes.Equal(k1, k2))
}

func TestHashPassword_SaltMatters(t *testing.T) {
	k1 := HashPassword([]byte("hunter22"), []byte("salt-one-0000000"))
	k2 := HashPassword([]byte("hunter22"), []byte("salt-two-0000000"))
	assert.False(t, bytes.Equal(k1, k2))
}

func TestVerifyPassword(t *testing.T) {
	salt := NewSalt()
	require.Len(t, salt, SaltSize)

	hash := HashPassword([]byte("correct horse"), salt)

	assert.True(t, VerifyPassword([]byte("correct horse"), salt, hash))
	assert.False(t, VerifyPassword([]byte("wrong horse"), salt, hash))
	assert.False(t, VerifyPassword([]byte("correct horse"), NewSalt(), hash))
}

func TestHashToken(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashToken("abc"))
	assert.NotEqual(t, HashToken("a"), HashToken("b"))
}
