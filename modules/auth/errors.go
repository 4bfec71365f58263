package auth

import "errors"

var (
	// ErrInvalidCredentials indicates a failed email/password login.
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")

	// ErrRefreshInvalid indicates an expired, malformed, or unknown refresh
	// token. The client's cookies must be purged.
	ErrRefreshInvalid = errors.New("auth.refresh_invalid")

	// ErrRefreshReuse indicates replay of an already-rotated refresh token,
	// a signal of possible token theft. The subject's whole session chain is
	// invalidated and the client's cookies must be purged.
	ErrRefreshReuse = errors.New("auth.refresh_reuse")

	// ErrUnauthenticated indicates the caller has no valid session at all.
	ErrUnauthenticated = errors.New("auth.unauthenticated")

	// ErrForbidden indicates a valid session whose role does not satisfy the
	// requirement. Distinct from ErrUnauthenticated so callers can choose
	// between "redirect to login" and "403 forbidden".
	ErrForbidden = errors.New("auth.forbidden")

	// ErrBackendUnavailable indicates the identity backend could not answer
	// within its timeout. Resolution is indeterminate, not unauthenticated:
	// a transient outage must not log users out.
	ErrBackendUnavailable = errors.New("auth.backend_unavailable")

	// ErrUserNotFound indicates the token's subject no longer exists.
	ErrUserNotFound = errors.New("auth.user_not_found")
)
