// Package auth resolves bearer credentials to actors.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/servicelog/internal/domain"
)

// Gate resolves a bearer credential to the actor making the request.
type Gate interface {
	Resolve(ctx context.Context, credential string) (domain.Actor, error)
}

// Claims are the JWT claims the gate understands. The actor id travels in the
// standard subject claim.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTGate verifies HS256 tokens signed with a shared secret.
type JWTGate struct {
	secret []byte
}

// NewJWTGate returns a gate for tokens signed with secret.
func NewJWTGate(secret string) *JWTGate {
	return &JWTGate{secret: []byte(secret)}
}

// Resolve parses and verifies credential.
// Every failure is reported as domain.ErrUnauthorized: bad signature, a
// signing method other than HMAC, expiry, a missing subject or an unknown role.
func (g *JWTGate) Resolve(_ context.Context, credential string) (domain.Actor, error) {
	if credential == "" {
		return domain.Actor{}, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return domain.Actor{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	if claims.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	if !claims.Role.Valid() {
		return domain.Actor{}, fmt.Errorf("%w: unknown role %q", domain.ErrUnauthorized, claims.Role)
	}
	return domain.Actor{ID: claims.Subject, Role: claims.Role}, nil
}

// Issue mints a token for the actor that expires after ttl.
func (g *JWTGate) Issue(actor domain.Actor, ttl time.Duration) (string, error) {
	if actor.ID == "" || !actor.Role.Valid() {
		return "", fmt.Errorf("auth.JWTGate.Issue: %w: actor needs an id and a known role", domain.ErrValidation)
	}
	now := time.Now()
	claims := Claims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("auth.JWTGate.Issue: %w", err)
	}
	return signed, nil
}
