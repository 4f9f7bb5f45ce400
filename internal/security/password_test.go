package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, salt, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.Len(t, hash, 32)
	assert.Len(t, salt, 16)
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	hash1, salt1, err := HashPassword("hunter2")
	require.NoError(t, err)
	hash2, salt2, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, salt, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	t.Run("matching password verifies", func(t *testing.T) {
		assert.True(t, VerifyPassword("correct horse battery staple", hash, salt))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		assert.False(t, VerifyPassword("incorrect horse", hash, salt))
	})

	t.Run("wrong salt fails", func(t *testing.T) {
		otherSalt := make([]byte, 16)
		assert.False(t, VerifyPassword("correct horse battery staple", hash, otherSalt))
	})

	t.Run("truncated hash is a non-match, not an error", func(t *testing.T) {
		assert.False(t, VerifyPassword("correct horse battery staple", hash[:16], salt))
	})

	t.Run("empty hash and salt are a non-match", func(t *testing.T) {
		assert.False(t, VerifyPassword("anything", nil, nil))
	})
}
