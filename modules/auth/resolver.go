package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gmhridu/hamsoya-mono-sub004/pkg/authtoken"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/sessioncache"
)

// Resolve answers "who is the caller" for one request. A guest is a nil
// record, not an error: plain absence of credentials is a normal outcome.
// The only errors it returns are ErrBackendUnavailable, when resolution is
// indeterminate because the identity backend timed out, and configuration
// faults.
//
// Per request the flow is: cache lookup by credential fingerprint; on miss,
// access token verification; on expiry, refresh rotation. Malformed or
// mis-signed tokens purge the client's cookies. A successful rotation
// evicts the old fingerprint, caches the new one, and sets rotated cookies
// on the response.
func (s *Service) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) (*SessionRecord, error) {
	access, _ := s.cookies.Get(r, AccessTokenCookie)
	refresh, _ := s.cookies.Get(r, RefreshTokenCookie)

	if access == "" && refresh == "" {
		return nil, nil
	}

	fingerprint := authtoken.Fingerprint(access, refresh)
	if record, status := s.cache.Lookup(fingerprint); status == sessioncache.Hit {
		return &record, nil
	} else if status == sessioncache.NegativeHit {
		return nil, nil
	}

	if access == "" {
		// No access token to verify; the client must go through the
		// refresh endpoint to obtain one.
		s.cache.StoreNegative(fingerprint)
		return nil, nil
	}

	claims, err := s.codec.VerifyAccess(access)
	switch {
	case err == nil:
		return s.resolveVerified(ctx, fingerprint, claims)

	case errors.Is(err, authtoken.ErrExpiredToken):
		if refresh == "" {
			s.cache.StoreNegative(fingerprint)
			return nil, nil
		}
		return s.resolveRefreshing(ctx, w, fingerprint, refresh)

	default:
		// Malformed or signed with the wrong key: these cookies will never
		// verify, so purge them.
		s.ClearCredentialCookies(w)
		s.cache.StoreNegative(fingerprint)
		return nil, nil
	}
}

// resolveVerified finishes resolution for a valid access token. The
// identity backend is consulted so a cold cache picks up profile changes
// and deleted accounts; its outage is indeterminate, never a logout.
func (s *Service) resolveVerified(ctx context.Context, fingerprint string, claims authtoken.AccessClaims) (*SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.IdentityTimeout)
	defer cancel()

	profile, err := s.identity.FetchUser(ctx, claims.Subject)
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.cache.StoreNegative(fingerprint)
		return nil, nil
	case err != nil:
		return nil, errors.Join(ErrBackendUnavailable, err)
	}

	record := recordFromProfile(profile, s.now())
	s.cache.Store(fingerprint, record)
	return &record, nil
}

// resolveRefreshing runs the refresh protocol for an expired access token.
func (s *Service) resolveRefreshing(ctx context.Context, w http.ResponseWriter, fingerprint, refresh string) (*SessionRecord, error) {
	pair, record, err := s.Refresh(ctx, refresh)
	switch {
	case errors.Is(err, ErrBackendUnavailable):
		return nil, err

	case errors.Is(err, ErrRefreshReuse), errors.Is(err, ErrRefreshInvalid):
		// Both force re-authentication; reuse additionally means the chain
		// is gone. Either way these cookies are dead.
		s.ClearCredentialCookies(w)
		s.cache.Evict(fingerprint)
		s.cache.StoreNegative(fingerprint)
		return nil, nil

	case err != nil:
		s.log.Error("refresh rotation failed", "error", err)
		s.ClearCredentialCookies(w)
		s.cache.Evict(fingerprint)
		return nil, nil
	}

	// The old fingerprint names a pair that no longer exists.
	s.cache.Evict(fingerprint)
	s.SetCredentialCookies(w, pair)
	return &record, nil
}

// ResolveWithRole resolves the session and gates it on role membership.
// "Not logged in" (ErrUnauthenticated) and "logged in without the role"
// (ErrForbidden) are distinct outcomes: the first is redirect-to-login
// material, the second a hard 403 that leaks nothing about the subject.
func (s *Service) ResolveWithRole(ctx context.Context, w http.ResponseWriter, r *http.Request, roles ...authtoken.Role) (*SessionRecord, error) {
	record, err := s.Resolve(ctx, w, r)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrUnauthenticated
	}
	if !record.HasRole(roles...) {
		return nil, ErrForbidden
	}
	return record, nil
}
