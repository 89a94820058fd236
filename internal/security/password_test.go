package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("P@ssw0rd1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(hash), "$argon2id$v=19$"))
	assert.NotContains(t, string(hash), "P@ssw0rd1")

	ok, err := VerifyPassword("P@ssw0rd1", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordWrongPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	ok, err := VerifyPassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("same input")
	require.NoError(t, err)
	second, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", []byte("not-a-hash"))
	assert.Error(t, err)
}
