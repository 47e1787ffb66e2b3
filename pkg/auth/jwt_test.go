package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.GenerateToken("operator")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTManager("other", time.Hour).GenerateToken("operator")
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)
	token, err := m.GenerateToken("operator")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("bengkel123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("bengkel123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
