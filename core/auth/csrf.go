package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// csrfClaims is the payload of a CSRF token: a random id plus expiry.
// The signature is what matters; a forged cookie fails verification.
type csrfClaims struct {
	jwt.RegisteredClaims
}

// CSRFIssuer signs and verifies the csrf_token cookie required on
// mutating auth routes.
type CSRFIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewCSRFIssuer creates a CSRFIssuer signing with the app secret.
func NewCSRFIssuer(secret string, ttl time.Duration) *CSRFIssuer {
	return &CSRFIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a fresh signed CSRF token.
func (c *CSRFIssuer) Issue() (string, error) {
	now := time.Now()
	claims := csrfClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign CSRF token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry.
func (c *CSRFIssuer) Verify(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &csrfClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid CSRF token: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid CSRF token")
	}
	return nil
}
