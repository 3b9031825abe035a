// Package auth issues and verifies the bearer tokens that carry a user's
// identity between requests. Tokens are stateless HS256 JWTs: verified by
// signature and expiry alone, never revoked server-side.
package auth

import (
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the registered claim set plus the identity fields notehub
// needs to resolve a request without a user lookup.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"username"`
}

func GenerateToken(userID, username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   userID,
		Username: username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies signature and expiry and returns the embedded
// identity. Malformed tokens, bad signatures and elapsed expiry all collapse
// to common.ErrInvalidToken so the caller cannot tell which one occurred.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
