// Package session derives the caller's identity from a bearer token and keeps
// that token for the local profile.
package session

import (
	"errors"
	"fmt"
	"time"

	"listing-review/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued by the backend
type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// UserClaim is the nested user object of the token
type UserClaim struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// Decode reads the identity out of token. The signature is NOT verified:
// the client trusts the claims and leaves verification to the backend.
func Decode(token string) (domain.Identity, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: undecodable token: %v", domain.ErrUnauthenticated, err)
	}

	if claims.User.ID == "" {
		return domain.Identity{}, fmt.Errorf("%w: token has no user id", domain.ErrUnauthenticated)
	}
	if claims.ExpiresAt == nil {
		return domain.Identity{}, fmt.Errorf("%w: token has no expiry", domain.ErrUnauthenticated)
	}
	role, err := domain.ParseRole(claims.User.Role)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	identity := domain.Identity{
		ID:        claims.User.ID,
		Role:      role,
		Email:     claims.User.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	return identity, nil
}

// Session is the explicit authenticated context handed to every operation
// that needs identity.
type Session struct {
	token    string
	identity domain.Identity
}

// New decodes token into a session. An expired token is rejected.
func New(token string, now time.Time) (*Session, error) {
	identity, err := Decode(token)
	if err != nil {
		return nil, err
	}
	if identity.Expired(now) {
		return nil, fmt.Errorf("%w: token expired at %s", domain.ErrUnauthenticated, identity.ExpiresAt.Format(time.RFC3339))
	}
	return &Session{token: token, identity: identity}, nil
}

// Token returns the raw bearer token
func (s *Session) Token() string { return s.token }

// Identity returns the decoded claims
func (s *Session) Identity() domain.Identity { return s.identity }

// Valid reports whether the session is usable at now
func (s *Session) Valid(now time.Time) bool {
	return s != nil && !s.identity.Expired(now)
}

// IsUnauthenticated reports whether err means the caller must log in again
func IsUnauthenticated(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated)
}
