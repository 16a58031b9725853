package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT(42, "alice", "alice@example.com", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	SetJWTSecret("first-secret")
	token, err := GenerateJWT(1, "bob", "bob@example.com", 1)
	require.NoError(t, err)

	SetJWTSecret("second-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT(1, "bob", "bob@example.com", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateRefreshToken(7, 24)
	require.NoError(t, err)

	userID, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	SetJWTSecret("test-secret")

	access, err := GenerateJWT(7, "carol", "carol@example.com", 1)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)
}
