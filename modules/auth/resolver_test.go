package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmhridu/hamsoya-mono-sub004/modules/auth"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/authtoken"
)

func requestWithPair(pair auth.CredentialPair) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if pair.AccessToken != "" {
		r.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: pair.AccessToken})
	}
	if pair.RefreshToken != "" {
		r.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: pair.RefreshToken})
	}
	return r
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	cookies := make(map[string]*http.Cookie)
	for _, c := range (&http.Response{Header: rec.Header()}).Cookies() {
		cookies[c.Name] = c
	}
	return cookies
}

func TestResolveGuest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := httptest.NewRecorder()

	record, err := env.svc.Resolve(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Nil(t, record, "absence of credentials is a guest, not an error")
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestResolveValidPair(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))
	pair, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec, requestWithPair(pair))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "u1", record.SubjectID)
	assert.Equal(t, "user@example.com", record.Email)
	assert.Empty(t, rec.Header().Values("Set-Cookie"), "a valid pair needs no cookie churn")
}

func TestResolveServedFromCache(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))
	pair, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	baseline := env.identity.calls()
	for range 5 {
		rec := httptest.NewRecorder()
		record, err := env.svc.Resolve(context.Background(), rec, requestWithPair(pair))
		require.NoError(t, err)
		require.NotNil(t, record)
	}
	assert.Equal(t, baseline, env.identity.calls(),
		"repeated resolution within the freshness window must not hit the backend")

	// Past the freshness window the backend is consulted again.
	env.clock.Advance(testCacheTTL + time.Second)
	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec, requestWithPair(pair))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, baseline+1, env.identity.calls())
}

func TestResolveMissingAccessToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))
	pair, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	// Refresh cookie alone does not authenticate; the client must call the
	// refresh endpoint to mint a new access token.
	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec,
		requestWithPair(auth.CredentialPair{RefreshToken: pair.RefreshToken}))
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestResolveExpiredAccessRotates(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))
	pair, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	env.clock.Advance(6 * time.Minute)

	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec, requestWithPair(pair))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "u1", record.SubjectID)

	cookies := responseCookies(rec)
	require.Contains(t, cookies, auth.AccessTokenCookie)
	require.Contains(t, cookies, auth.RefreshTokenCookie)
	assert.NotEqual(t, pair.AccessToken, cookies[auth.AccessTokenCookie].Value)
	assert.NotEqual(t, pair.RefreshToken, cookies[auth.RefreshTokenCookie].Value)
	assert.False(t, cookies[auth.AccessTokenCookie].HttpOnly, "access cookie stays script-readable")
	assert.True(t, cookies[auth.RefreshTokenCookie].HttpOnly)
}

func TestResolveExpiredAccessWithoutRefresh(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))
	pair, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	env.clock.Advance(6 * time.Minute)

	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec,
		requestWithPair(auth.CredentialPair{AccessToken: pair.AccessToken}))
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestResolveReplayedPairPurgesCookies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))
	pair0, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	env.clock.Advance(6 * time.Minute)

	// First client rotates successfully.
	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec, requestWithPair(pair0))
	require.NoError(t, err)
	require.NotNil(t, record)

	// A second client presenting the consumed pair is thrown out.
	rec = httptest.NewRecorder()
	record, err = env.svc.Resolve(context.Background(), rec, requestWithPair(pair0))
	require.NoError(t, err)
	assert.Nil(t, record)

	cookies := responseCookies(rec)
	require.Contains(t, cookies, auth.AccessTokenCookie)
	require.Contains(t, cookies, auth.RefreshTokenCookie)
	assert.Equal(t, -1, cookies[auth.AccessTokenCookie].MaxAge)
	assert.Equal(t, -1, cookies[auth.RefreshTokenCookie].MaxAge)
}

func TestResolveMalformedTokenPurgesCookies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))

	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec,
		requestWithPair(auth.CredentialPair{AccessToken: "garbage", RefreshToken: "garbage"}))
	require.NoError(t, err)
	assert.Nil(t, record)

	cookies := responseCookies(rec)
	require.Contains(t, cookies, auth.AccessTokenCookie)
	assert.Equal(t, -1, cookies[auth.AccessTokenCookie].MaxAge)
}

func TestResolveWrongKeyPurgesCookies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))

	// A token signed with a foreign secret must be treated as malformed.
	foreign, err := authtoken.New(
		[]byte("some-other-access-secret-value00"),
		[]byte("some-other-refresh-secret-value0"),
		5*time.Minute, 720*time.Hour,
	)
	require.NoError(t, err)

	profile := testProfile(t)
	forged, err := foreign.IssueAccess(authtoken.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: profile.ID},
		Email:            profile.Email,
		Name:             profile.Name,
		Role:             profile.Role,
		Verified:         profile.Verified,
		CreatedAt:        profile.CreatedAt.Unix(),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	got, err := env.svc.Resolve(context.Background(), rec,
		requestWithPair(auth.CredentialPair{AccessToken: forged, RefreshToken: "x"}))
	require.NoError(t, err)
	assert.Nil(t, got)

	cookies := responseCookies(rec)
	require.Contains(t, cookies, auth.AccessTokenCookie)
	assert.Equal(t, -1, cookies[auth.AccessTokenCookie].MaxAge)
}

func TestResolveBackendOutageIsIndeterminate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testProfile(t))
	pair, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	env.clock.Advance(testCacheTTL + time.Second) // force a cache miss
	env.identity.setFailure(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec, requestWithPair(pair))
	require.ErrorIs(t, err, auth.ErrBackendUnavailable)
	assert.Nil(t, record)
	assert.Empty(t, rec.Header().Values("Set-Cookie"),
		"an outage must never log the client out")
}

func TestResolveDeletedUser(t *testing.T) {
	t.Parallel()

	profile := testProfile(t)
	env := newTestEnv(t, profile)
	pair, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	env.clock.Advance(testCacheTTL + time.Second)
	env.identity.mu.Lock()
	delete(env.identity.byID, profile.ID)
	env.identity.mu.Unlock()

	rec := httptest.NewRecorder()
	record, err := env.svc.Resolve(context.Background(), rec, requestWithPair(pair))
	require.NoError(t, err)
	assert.Nil(t, record, "a deleted subject resolves to a guest")
}

func TestResolveWithRole(t *testing.T) {
	t.Parallel()

	admin := testProfile(t)
	admin.ID = "a1"
	admin.Email = "admin@example.com"
	admin.Role = authtoken.RoleAdmin

	env := newTestEnv(t, testProfile(t), admin)

	userPair, _, err := env.svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)
	adminPair, _, err := env.svc.Login(context.Background(), "admin@example.com", "password123")
	require.NoError(t, err)

	t.Run("guest is unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, err := env.svc.ResolveWithRole(context.Background(), rec,
			httptest.NewRequest(http.MethodGet, "/", nil), authtoken.RoleAdmin)
		require.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("wrong role is forbidden, not unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, err := env.svc.ResolveWithRole(context.Background(), rec,
			requestWithPair(userPair), authtoken.RoleAdmin)
		require.ErrorIs(t, err, auth.ErrForbidden)
		require.NotErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("matching role passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		record, err := env.svc.ResolveWithRole(context.Background(), rec,
			requestWithPair(adminPair), authtoken.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, "a1", record.SubjectID)
	})

	t.Run("any of several roles suffices", func(t *testing.T) {
		rec := httptest.NewRecorder()
		record, err := env.svc.ResolveWithRole(context.Background(), rec,
			requestWithPair(userPair), authtoken.RoleAdmin, authtoken.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, "u1", record.SubjectID)
	})
}
