package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gmhridu/hamsoya-mono-sub004/pkg/authtoken"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/cookie"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/sessioncache"
)

// Cookie names are part of the client contract and must not change: the
// client mirror reads accessToken, and only the server sees refreshToken.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CredentialPair is the dual-token credential handed to a client at login
// and on every refresh.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
}

// Fingerprint returns the session cache key for this pair.
func (p CredentialPair) Fingerprint() string {
	return authtoken.Fingerprint(p.AccessToken, p.RefreshToken)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCookieManager replaces the default cookie manager.
func WithCookieManager(m *cookie.Manager) Option {
	return func(s *Service) { s.cookies = m }
}

// WithClock overrides the service's time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.codec.WithClock(now)
		s.cache.WithClock(now)
	}
}

// Service owns issuance, verification, rotation, and resolution of the
// dual-token credential. It is constructed once per process; the session
// cache it carries is explicit state with a visible eviction policy, never
// a package-level map.
type Service struct {
	cfg      Config
	codec    *authtoken.Codec
	store    RefreshStore
	identity IdentityStore
	cache    *sessioncache.Cache[SessionRecord]
	cookies  *cookie.Manager
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires the session subsystem. The refresh store carries
// rotation atomicity; the identity store answers cache misses.
func NewService(cfg Config, store RefreshStore, identity IdentityStore, opts ...Option) (*Service, error) {
	codec, err := authtoken.New(
		[]byte(cfg.AccessSecret),
		[]byte(cfg.RefreshSecret),
		cfg.AccessTTL,
		cfg.RefreshTTL,
	)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		codec:    codec,
		store:    store,
		identity: identity,
		cache:    sessioncache.New[SessionRecord](cfg.CacheTTL, cfg.CacheCapacity, cfg.CacheCleanupInterval),
		cookies:  cookie.New(cookie.WithSecure(cfg.SecureCookies)),
		log:      slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close releases the service's background resources.
func (s *Service) Close() error {
	return s.cache.Close()
}

// Login verifies an email/password pair against the identity backend and
// mints a fresh credential pair. Wrong email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (CredentialPair, SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.IdentityTimeout)
	defer cancel()

	profile, err := s.identity.FetchUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return CredentialPair{}, SessionRecord{}, ErrInvalidCredentials
	case err != nil:
		return CredentialPair{}, SessionRecord{}, errors.Join(ErrBackendUnavailable, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return CredentialPair{}, SessionRecord{}, ErrInvalidCredentials
	}

	return s.Issue(ctx, profile)
}

// Issue mints a credential pair for a known profile and records the refresh
// chain head. Any previous chain for the subject is replaced.
func (s *Service) Issue(ctx context.Context, profile UserProfile) (CredentialPair, SessionRecord, error) {
	record := recordFromProfile(profile, s.now())

	accessToken, err := s.codec.IssueAccess(record.accessClaims())
	if err != nil {
		return CredentialPair{}, SessionRecord{}, err
	}

	refreshToken, err := s.codec.IssueRefresh(record.SubjectID)
	if err != nil {
		return CredentialPair{}, SessionRecord{}, err
	}

	if err := s.store.Save(ctx, record.SubjectID, hashToken(refreshToken), s.cfg.RefreshTTL); err != nil {
		return CredentialPair{}, SessionRecord{}, err
	}

	pair := CredentialPair{AccessToken: accessToken, RefreshToken: refreshToken}
	s.cache.Store(pair.Fingerprint(), record)
	return pair, record, nil
}

// Refresh performs rotation: it validates the refresh token, atomically
// marks it spent, and issues a brand-new pair. From the client's view this
// is all-or-nothing and single-use; a second call with the same token fails
// with ErrRefreshReuse regardless of timing. The whole operation is bounded
// by RefreshTimeout and fails closed when exceeded.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (CredentialPair, SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RefreshTimeout)
	defer cancel()

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return CredentialPair{}, SessionRecord{}, errors.Join(ErrRefreshInvalid, err)
	}

	// Profile first: an identity outage must surface as indeterminate
	// before the chain is consumed, so the client can simply retry.
	profile, err := s.identity.FetchUser(ctx, claims.Subject)
	switch {
	case errors.Is(err, ErrUserNotFound):
		_ = s.store.Revoke(ctx, claims.Subject)
		return CredentialPair{}, SessionRecord{}, ErrRefreshInvalid
	case err != nil:
		if ctx.Err() != nil {
			return CredentialPair{}, SessionRecord{}, errors.Join(ErrRefreshInvalid, ctx.Err())
		}
		return CredentialPair{}, SessionRecord{}, errors.Join(ErrBackendUnavailable, err)
	}

	record := recordFromProfile(profile, s.now())

	accessToken, err := s.codec.IssueAccess(record.accessClaims())
	if err != nil {
		return CredentialPair{}, SessionRecord{}, err
	}
	nextRefresh, err := s.codec.IssueRefresh(record.SubjectID)
	if err != nil {
		return CredentialPair{}, SessionRecord{}, err
	}

	err = s.store.Rotate(ctx, record.SubjectID, hashToken(refreshToken), hashToken(nextRefresh), s.cfg.RefreshTTL)
	switch {
	case errors.Is(err, ErrRefreshReuse):
		s.log.Warn("refresh token replay detected, session chain invalidated",
			"subject_id", record.SubjectID)
		return CredentialPair{}, SessionRecord{}, err
	case err != nil:
		if ctx.Err() != nil {
			// Fail closed: a rotation that outlives its deadline is
			// indistinguishable from a failed one.
			return CredentialPair{}, SessionRecord{}, errors.Join(ErrRefreshInvalid, ctx.Err())
		}
		return CredentialPair{}, SessionRecord{}, err
	}

	pair := CredentialPair{AccessToken: accessToken, RefreshToken: nextRefresh}
	s.cache.Store(pair.Fingerprint(), record)
	return pair, record, nil
}

// Logout revokes the caller's refresh chain and forgets the cached session.
func (s *Service) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	access, _ := s.cookies.Get(r, AccessTokenCookie)
	refresh, _ := s.cookies.Get(r, RefreshTokenCookie)

	if refresh != "" {
		if claims, err := s.codec.VerifyRefresh(refresh); err == nil {
			if err := s.store.Revoke(ctx, claims.Subject); err != nil {
				s.log.Warn("revoking refresh chain failed", "error", err)
			}
		}
	}

	s.cache.Evict(authtoken.Fingerprint(access, refresh))
	s.ClearCredentialCookies(w)
	return nil
}

// SetCredentialCookies writes the pair under the cookie contract: the
// access token stays readable by client script for mirror hydration, the
// refresh token is HTTP-only. Both are SameSite=Strict on path /.
func (s *Service) SetCredentialCookies(w http.ResponseWriter, pair CredentialPair) {
	s.cookies.Set(w, AccessTokenCookie, pair.AccessToken,
		cookie.WithHTTPOnly(false),
		cookie.WithMaxAge(int(s.cfg.AccessTTL.Seconds())),
	)
	s.cookies.Set(w, RefreshTokenCookie, pair.RefreshToken,
		cookie.WithMaxAge(int(s.cfg.RefreshTTL.Seconds())),
	)
}

// ClearCredentialCookies deletes both credential cookies in the response.
func (s *Service) ClearCredentialCookies(w http.ResponseWriter) {
	s.cookies.Delete(w, AccessTokenCookie, cookie.WithHTTPOnly(false))
	s.cookies.Delete(w, RefreshTokenCookie)
}
