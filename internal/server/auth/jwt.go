// Package auth issues and verifies session tokens and checks the shared
// access code.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carry a random session id alongside the standard claims.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

const issuer = "sharebox"

// GenerateToken signs a new HS256 session token valid for validity.
func GenerateToken(secretKey []byte, validity time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		SessionID: uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", nil, err
	}
	return tokenString, claims, nil
}

// ParseToken verifies signature, algorithm, issuer and expiry. Every
// failure matches common.ErrInvalidToken; expired tokens additionally
// match jwt.ErrTokenExpired.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, jwt.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
