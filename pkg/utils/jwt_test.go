package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenVerifier_HS256(t *testing.T) {
	const secret = "super-secret-jwt-token-with-at-least-32-characters"
	verifier, err := NewTokenVerifier(VerifierConfig{Secret: secret, Audience: "authenticated"})
	require.NoError(t, err)

	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		token, err := CreateToken(secret, userID, "a@example.com", "authenticated", time.Hour)
		require.NoError(t, err)

		id, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, id.UserID)
		assert.Equal(t, "a@example.com", id.Email)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := CreateToken("another-secret-another-secret-another", userID, "", "authenticated", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.True(t, errors.Is(err, ErrUnauthenticated))
	})

	t.Run("expired", func(t *testing.T) {
		token, err := CreateToken(secret, userID, "", "authenticated", -time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("wrong audience", func(t *testing.T) {
		token, err := CreateToken(secret, userID, "", "anon", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not-a-jwt")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestNewTokenVerifier_RequiresKey(t *testing.T) {
	_, err := NewTokenVerifier(VerifierConfig{})
	assert.Error(t, err)
}
