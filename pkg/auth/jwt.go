package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpiredToken is returned when a token's expiry has passed
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidToken is returned for any token that fails verification
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the registered claims plus the authenticated user identifier
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenIssuer signs and verifies the HS256 tokens used by the REST API.
// Access tokens are short-lived and sent as bearer tokens; refresh tokens
// live longer and travel in an HTTP-only cookie.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer creates a token issuer with the default lifetimes:
// one hour for access tokens, one day for refresh tokens.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  time.Hour,
		refreshTTL: 24 * time.Hour,
	}
}

// AccessToken issues a short-lived access token for the given user
func (i *TokenIssuer) AccessToken(userID string) (string, error) {
	return i.sign(userID, i.accessTTL)
}

// RefreshToken issues a long-lived refresh token for the given user
func (i *TokenIssuer) RefreshToken(userID string) (string, error) {
	return i.sign(userID, i.refreshTTL)
}

// AccessTTL reports the access token lifetime
func (i *TokenIssuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL reports the refresh token lifetime
func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *TokenIssuer) sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(i.secret)
}

// Validate parses and verifies a token, returning its claims
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
