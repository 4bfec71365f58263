package authtoken

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse authorization level carried inside an access token.
type Role string

const (
	RoleUser   Role = "USER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// AccessClaims is the payload of a short-lived access token. It is
// self-contained: everything a request needs to know about the caller
// without a backend lookup.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	Verified     bool   `json:"verified"`
	ProfileImage string `json:"profile_image,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

// RefreshClaims is the payload of a long-lived refresh token. It carries
// only the subject so a leaked token authorizes nothing but renewal.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// validate rejects access tokens missing required fields instead of
// silently defaulting them.
func (c AccessClaims) validate() error {
	if c.Subject == "" || c.Email == "" || c.Name == "" {
		return ErrMissingField
	}
	if !c.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

func (c RefreshClaims) validate() error {
	if c.Subject == "" {
		return ErrMissingField
	}
	return nil
}
