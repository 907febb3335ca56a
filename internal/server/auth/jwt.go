// Package auth mints and checks the HS256 service tokens certhub presents to
// the identity oracle. It never issues end-user sessions.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/certhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the calling service.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateServiceToken signs a token with subject and issuer set to service,
// valid for validity from now.
func GenerateServiceToken(service string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    service,
			Subject:   service,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	})

	return token.SignedString(secretKey)
}

// ParseServiceToken validates tokenString and returns the calling service.
// Expired tokens yield common.ErrorTokenExpired; any other failure yields an
// error wrapping common.ErrorInvalidToken.
func ParseServiceToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrorTokenExpired
		}
		return "", errors.Join(common.ErrorInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrorInvalidToken
	}

	return claims.Subject, nil
}
