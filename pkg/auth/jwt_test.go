package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.AccessToken("user-123")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").AccessToken("user-123")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	// Sign a token that expired an hour ago.
	past := time.Now().Add(-2 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
		UserID: "user-123",
	})
	tokenString, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenIssuer_RejectsMissingUserID(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := anonymous.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	_, err := NewTokenIssuer("test-secret").Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RefreshOutlivesAccess(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	assert.Greater(t, issuer.RefreshTTL(), issuer.AccessTTL())
}
