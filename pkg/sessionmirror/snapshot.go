package sessionmirror

import "time"

// User is the display-only view of the authenticated caller held by the
// mirror. It is never consulted for authorization decisions; the server is
// the sole source of truth for credential validity.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Verified     bool      `json:"verified"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is the full mirror state at a point in time.
type Snapshot struct {
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsLoading       bool   `json:"is_loading"`
	Error           string `json:"error,omitempty"`
}

// equal compares two snapshots by value. Used to suppress duplicate change
// notifications.
func (s Snapshot) equal(other Snapshot) bool {
	if s.IsAuthenticated != other.IsAuthenticated ||
		s.IsLoading != other.IsLoading ||
		s.Error != other.Error {
		return false
	}
	switch {
	case s.User == nil && other.User == nil:
		return true
	case s.User == nil || other.User == nil:
		return false
	default:
		return *s.User == *other.User
	}
}

// clone returns a deep copy so callers never share the mirror's memory.
func (s Snapshot) clone() Snapshot {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
