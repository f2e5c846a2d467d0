package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", "readrecall-api")

	t.Run("round trip", func(t *testing.T) {
		token, err := m.GenerateToken("user-1", "reader@example.com", "access", time.Minute)
		require.NoError(t, err)

		claims, err := m.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "reader@example.com", claims.Email)
		assert.Equal(t, "access", claims.Type)
		assert.Equal(t, "readrecall-api", claims.Issuer)
	})

	t.Run("token pair carries both types", func(t *testing.T) {
		pair, err := m.GenerateTokenPair("user-1", "reader@example.com", time.Minute, time.Hour)
		require.NoError(t, err)

		access, err := m.ParseToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "access", access.Type)

		refresh, err := m.ParseToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh", refresh.Type)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := m.GenerateToken("user-1", "reader@example.com", "access", -time.Minute)
		require.NoError(t, err)

		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", "readrecall-api")
		token, err := other.GenerateToken("user-1", "reader@example.com", "access", time.Minute)
		require.NoError(t, err)

		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := m.ParseToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
