package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

var ErrNoSigningKey = errors.New("no signing key")

// Token is a signed bearer token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Claims are the verified contents of a token.
type Claims struct {
	UserID      string
	Permissions []string
	ExpiresAt   time.Time
}

// HasPermission reports whether the claims grant perm.
func (c Claims) HasPermission(perm string) bool {
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

type tokenClaims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 signed bearer tokens.
type Tokens struct {
	key      krypto.Key
	lifetime time.Duration

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewTokens(key krypto.Key, lifetime time.Duration) (*Tokens, error) {
	if key.IsZero() {
		return nil, ErrNoSigningKey
	}

	return &Tokens{
		key:      key,
		lifetime: lifetime,
		NowFunc:  time.Now,
	}, nil
}

// Issue creates a token for the user.
func (t *Tokens) Issue(u User) (Token, error) {
	now := t.NowFunc()
	exp := now.Add(t.lifetime)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Permissions: u.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := tok.SignedString(t.key.SecretValue())
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return Token{
		Value:     signed,
		ExpiresAt: exp,
	}, nil
}

// Verify checks the signature, algorithm and expiry of a token.
// Any failure results in errorz.ErrUnauthorized.
func (t *Tokens) Verify(raw string) (Claims, error) {
	var c tokenClaims

	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.key.SecretValue(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.NowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", errorz.ErrUnauthorized, err)
	}

	if c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: token has no subject", errorz.ErrUnauthorized)
	}

	return Claims{
		UserID:      c.Subject,
		Permissions: c.Permissions,
		ExpiresAt:   c.ExpiresAt.Time,
	}, nil
}
