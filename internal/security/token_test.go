package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "alice@example.com", "general", time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "general", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "alice@example.com", "general", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, testSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "alice@example.com", "general", time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "another-secret")
	assert.Error(t, err)
}

func TestParseAccessTokenGarbage(t *testing.T) {
	_, err := ParseAccessToken("not.a.jwt", testSecret)
	assert.Error(t, err)
}

func TestGenerateOpaqueToken(t *testing.T) {
	first, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	second, err := GenerateOpaqueToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)

	// 32 random bytes encode to 43 unpadded base64url characters.
	assert.Len(t, first, 43)
}
