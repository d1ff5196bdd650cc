package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "freelancer", "test-secret")
	require.NoError(t, err)

	userID, role, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
	assert.Equal(t, "freelancer", role)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "client", "test-secret")
	require.NoError(t, err)

	_, _, err = ParseJWT(token, "other-secret")
	require.Error(t, err)
}

func TestParseJWTGarbage(t *testing.T) {
	_, _, err := ParseJWT("not-a-token", "test-secret")
	require.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/projects", nil)
	require.NoError(t, err)

	assert.Equal(t, "", ExtractToken(r))

	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(r))

	r.Header.Set("Authorization", "Basic abc123")
	assert.Equal(t, "", ExtractToken(r))
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword("hunter2", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
