package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles
type Role int

const (
	RoleTeamMember Role = iota + 1
	RoleAdmin
)

// ParseRole converts the wire spelling of a role. The legacy "team member"
// spelling is accepted; anything else is rejected.
func ParseRole(s string) (Role, error) {
	switch strings.TrimSpace(s) {
	case "admin":
		return RoleAdmin, nil
	case "team-member", "team member":
		return RoleTeamMember, nil
	}
	return 0, fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTeamMember:
		return "team-member"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleAdmin, RoleTeamMember:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("invalid role %d", int(r))
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(b []byte) error {
	role, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// User is an account known to the backend
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Identity is the authenticated actor's claims, derived from a bearer token
type Identity struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the identity is no longer valid at now
func (i Identity) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
