// Package auth issues and checks the per-interaction session token. A token
// is minted when the form descriptor is served and lives for one pass
// through the form; it carries the form id and the hash of the field set
// the renderer was shown, so a submit against a changed template is refused
// instead of silently misfiled.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Form       string `json:"form"`
	SchemaHash string `json:"schemaHash"`
	jwt.RegisteredClaims
}

func GenerateToken(secret, form, schemaHash string, ttl time.Duration) (string, error) {
	claims := Claims{
		Form:       form,
		SchemaHash: schemaHash,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
