package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(nil, "test-secret")
	userID := uuid.New()

	token, err := svc.generateToken(userID, "cook")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "cook", claims.Username)
}

func TestValidateTokenRejectsBadInput(t *testing.T) {
	svc := NewAuthService(nil, "test-secret")

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := NewAuthService(nil, "other-secret")
		token, err := other.generateToken(uuid.New(), "cook")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})
}
