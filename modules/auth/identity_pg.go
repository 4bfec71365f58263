package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gmhridu/hamsoya-mono-sub004/pkg/pg"
)

// PGIdentityStore reads account profiles from the storefront's users table.
type PGIdentityStore struct {
	pool *pgxpool.Pool
}

// NewPGIdentityStore creates a postgres-backed identity store.
func NewPGIdentityStore(pool *pgxpool.Pool) *PGIdentityStore {
	return &PGIdentityStore{pool: pool}
}

const userColumns = `id, email, name, role, verified, profile_image, password_hash, created_at`

// FetchUser returns the profile for a subject id.
func (s *PGIdentityStore) FetchUser(ctx context.Context, subjectID string) (UserProfile, error) {
	return s.fetch(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, subjectID)
}

// FetchUserByEmail returns the profile for an email address.
func (s *PGIdentityStore) FetchUserByEmail(ctx context.Context, email string) (UserProfile, error) {
	return s.fetch(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (s *PGIdentityStore) fetch(ctx context.Context, query string, arg any) (UserProfile, error) {
	var (
		profile      UserProfile
		profileImage *string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Name,
		&profile.Role,
		&profile.Verified,
		&profileImage,
		&profile.PasswordHash,
		&profile.CreatedAt,
	)
	switch {
	case pg.IsNotFound(err):
		return UserProfile{}, ErrUserNotFound
	case err != nil:
		return UserProfile{}, errors.Join(ErrBackendUnavailable, err)
	}

	if profileImage != nil {
		profile.ProfileImage = *profileImage
	}
	return profile, nil
}
