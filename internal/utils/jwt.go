// Package utils provides operator token helpers.  Tokens only attribute
// actions to a desk operator in logs and audit events; they do not grant
// or deny access.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorToken is a signed HS256 JWT naming an operator, along with its
// expiry.
type OperatorToken struct {
	Token string
	Exp   time.Time
}

// OperatorClaims are the claims carried by an operator token.  The
// subject is the operator name (e.g. "guichet-1").
type OperatorClaims struct {
	Station string `json:"station,omitempty"`
	jwt.RegisteredClaims
}

// NewOperatorToken signs a token for operator valid for ttl.
func NewOperatorToken(secret, operator, station string, ttl time.Duration) (OperatorToken, error) {
	if operator == "" {
		return OperatorToken{}, errors.New("operator name is required")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := OperatorClaims{
		Station: station,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return OperatorToken{}, err
	}
	return OperatorToken{Token: signed, Exp: exp}, nil
}

// ParseOperatorToken verifies raw with secret and returns its claims.
// Only HMAC signing methods are accepted.
func ParseOperatorToken(secret, raw string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, errors.New("invalid operator token")
	}
	return claims, nil
}
