package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash([]byte("super-secret-password"))
	require.NoError(t, err)
	second, err := h.Hash([]byte("super-secret-password"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password must hash to different strings")
}

func TestVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash([]byte("super-secret-password"))
	require.NoError(t, err)

	assert.True(t, h.Verify([]byte("super-secret-password"), hash))
	assert.False(t, h.Verify([]byte("wrong-password"), hash))
	assert.False(t, h.Verify([]byte(""), hash))
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	assert.False(t, h.Verify([]byte("anything"), ""))
	assert.False(t, h.Verify([]byte("anything"), "not-a-bcrypt-hash"))
	assert.False(t, h.Verify([]byte("anything"), "$2a$banana$"))
}

func TestNewHasherCostOutOfRange(t *testing.T) {
	h := NewHasher(1000)

	hash, err := h.Hash([]byte("super-secret-password"))
	require.NoError(t, err)
	assert.True(t, h.Verify([]byte("super-secret-password"), hash))
}
