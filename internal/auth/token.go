// Package auth resolves the acting user from a signed bearer token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wrongbook/backend/internal/domain/access"
)

const issuer = "wrongbook"

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens whose subject is the user id.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("auth secret cannot be empty")
	}
	return &Tokens{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for user valid for ttl.
func (t *Tokens) Issue(user access.User, ttl time.Duration) (string, error) {
	if user.ID == "" {
		return "", errors.New("user id cannot be empty")
	}
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user it was issued for.
func (t *Tokens) Verify(raw string) (access.User, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return access.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return access.User{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return access.User{ID: c.Subject, Email: access.NormalizeEmail(c.Email)}, nil
}
