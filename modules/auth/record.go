package auth

import (
	"time"

	"github.com/gmhridu/hamsoya-mono-sub004/pkg/authtoken"
)

// SessionRecord is the resolved, server-trusted representation of the
// authenticated caller for one request. It lives only for the request that
// resolved it, except through the session cache's bounded TTL window.
type SessionRecord struct {
	SubjectID    string         `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Role         authtoken.Role `json:"role"`
	Verified     bool           `json:"verified"`
	ProfileImage string         `json:"profile_image,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ResolvedAt   time.Time      `json:"-"`
}

// HasRole reports whether the record satisfies any of the required roles.
func (r *SessionRecord) HasRole(roles ...authtoken.Role) bool {
	for _, role := range roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// recordFromProfile projects an identity profile into a session record.
func recordFromProfile(p UserProfile, resolvedAt time.Time) SessionRecord {
	return SessionRecord{
		SubjectID:    p.ID,
		Email:        p.Email,
		Name:         p.Name,
		Role:         p.Role,
		Verified:     p.Verified,
		ProfileImage: p.ProfileImage,
		CreatedAt:    p.CreatedAt,
		ResolvedAt:   resolvedAt,
	}
}

// accessClaims builds the self-contained access token payload for a record.
func (r *SessionRecord) accessClaims() authtoken.AccessClaims {
	claims := authtoken.AccessClaims{
		Email:        r.Email,
		Name:         r.Name,
		Role:         r.Role,
		Verified:     r.Verified,
		ProfileImage: r.ProfileImage,
		CreatedAt:    r.CreatedAt.Unix(),
	}
	claims.Subject = r.SubjectID
	return claims
}
