// Package auth verifies the bearer credential presented to server
// functions. Tokens are HS256-signed session tokens carrying the user
// identifier in the subject claim.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt"

	"github.com/deckhand-io/deckhand/internal/ingest"
)

// VerifyBearer validates an Authorization header value against the
// shared signing secret and returns the authenticated user ID. Any
// missing, malformed or invalid credential yields ErrAuthFailure, kept
// distinct from processing errors so callers can answer with an
// authentication status.
func VerifyBearer(header, secret string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ingest.ErrAuthFailure
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, prefix), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ingest.ErrAuthFailure
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ingest.ErrAuthFailure
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ingest.ErrAuthFailure
	}
	return sub, nil
}
