package auth

import (
	"context"
	"time"

	"github.com/gmhridu/hamsoya-mono-sub004/pkg/authtoken"
)

// UserProfile is the identity backend's view of an account.
type UserProfile struct {
	ID           string
	Email        string
	Name         string
	Role         authtoken.Role
	Verified     bool
	ProfileImage string
	PasswordHash string
	CreatedAt    time.Time
}

// IdentityStore is the external identity backend. It is consulted only on
// session cache misses and at login; callers bound every call with a
// timeout and treat failures as resolution failures, never as crashes.
type IdentityStore interface {
	// FetchUser returns the profile for a subject, or ErrUserNotFound.
	FetchUser(ctx context.Context, subjectID string) (UserProfile, error)

	// FetchUserByEmail returns the profile for an email, or ErrUserNotFound.
	FetchUserByEmail(ctx context.Context, email string) (UserProfile, error)
}
