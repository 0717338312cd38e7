package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims holds the back-office JWT payload. Field types and JSON tags
// are compatible with the middleware's parsing so tokens issued here are
// accepted there.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

const roleAdmin = "admin"

// ErrInvalidToken is returned when a JWT cannot be parsed, has expired,
// or does not carry the admin role.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// IssueAdminToken creates a signed HS256 JWT for back-office access.
// actor is recorded as the token subject and surfaces in audit events.
func IssueAdminToken(secret, actor string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "keyline",
		},
		Role: roleAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.IssueAdminToken: %w", err)
	}

	return signed, nil
}

// ValidateAdminToken parses and validates an admin JWT. Returns the claims.
func ValidateAdminToken(secret, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateAdminToken: %w", ErrInvalidToken)
	}

	if !token.Valid || claims.Role != roleAdmin {
		return nil, fmt.Errorf("auth.ValidateAdminToken: %w", ErrInvalidToken)
	}

	return claims, nil
}
