// Package auth reads the access tokens issued by the authentication provider.
// The only thing the rest of the client needs from a token is the owner id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus an optional explicit user id.
// Providers that only set "sub" are supported as well.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

// OwnerID returns the explicit user id, falling back to the subject.
func (c *Claims) OwnerID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// GenerateToken mints an HS256 token for userID. Used by development tooling and tests;
// production tokens come from the authentication provider.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	return token.SignedString(secretKey)
}

// OwnerFromToken validates tokenString with secretKey and returns the owner id.
// Expired tokens yield common.ErrTokenExpired, anything else common.ErrInvalidToken.
func OwnerFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.OwnerID() == "" {
		return "", common.ErrInvalidToken
	}

	return claims.OwnerID(), nil
}
