package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	tok, err := m.GenerateToken("abc123", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenManager_Expired(t *testing.T) {
	m, err := NewTokenManager("secret", time.Minute)
	require.NoError(t, err)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	tok, err := m.GenerateToken("abc123", "user")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	a, _ := NewTokenManager("one", time.Hour)
	b, _ := NewTokenManager("two", time.Hour)

	tok, err := a.GenerateToken("abc123", "user")
	require.NoError(t, err)

	_, err = b.ValidateToken(tok)
	assert.Error(t, err)
}

func TestTokenManager_RejectsNoneAlg(t *testing.T) {
	m, _ := NewTokenManager("secret", time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(s)
	assert.Error(t, err)
}
