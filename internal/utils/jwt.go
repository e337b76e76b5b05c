package utils // package utils provides helper functions for service tokens and API keys

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles accepted on internal endpoints.
const (
	RoleScheduler = "SCHEDULER"
	RoleAdmin     = "ADMIN"
)

// ServiceToken is a signed JWT handed to an internal caller (cron job,
// post scheduler) together with its expiry.
type ServiceToken struct {
	Token string
	Exp   time.Time
}

// ServiceClaims are the claims carried by a service token.
type ServiceClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ErrTokenInvalid is returned for tokens that fail parsing or validation.
var ErrTokenInvalid = errors.New("invalid token")

// NewServiceToken builds and signs an HS256 JWT for subject with role.
// The token includes sub, role, exp and iat.
func NewServiceToken(secret, subject, role string, ttl time.Duration) (ServiceToken, error) {
	if secret == "" {
		return ServiceToken{}, errors.New("jwt secret is empty")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := ServiceClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return ServiceToken{}, err
	}
	return ServiceToken{Token: signed, Exp: exp}, nil
}

// ParseServiceToken verifies raw against secret and returns its claims.
// Only HMAC signing methods are accepted.
func ParseServiceToken(secret, raw string) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
