package sessionmirror_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmhridu/hamsoya-mono-sub004/pkg/sessionmirror"
)

func testUser() *sessionmirror.User {
	return &sessionmirror.User{
		ID:        "u1",
		Email:     "user@example.com",
		Name:      "Test User",
		Role:      "USER",
		Verified:  true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// recorder counts notifications without racing the mirror's push goroutine.
type recorder struct {
	mu        sync.Mutex
	snapshots []sessionmirror.Snapshot
}

func (r *recorder) listen(s sessionmirror.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recorder) last() sessionmirror.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[len(r.snapshots)-1]
}

func TestInitialState(t *testing.T) {
	t.Parallel()

	m := sessionmirror.New()
	s := m.GetSession()
	assert.Nil(t, s.User)
	assert.False(t, s.IsAuthenticated)
	assert.True(t, s.IsLoading, "mirror starts loading until first hydration")
}

func TestHydrate(t *testing.T) {
	t.Parallel()

	m := sessionmirror.New()
	m.Hydrate(testUser())

	s := m.GetSession()
	require.NotNil(t, s.User)
	assert.Equal(t, "u1", s.User.ID)
	assert.True(t, s.IsAuthenticated)
	assert.False(t, s.IsLoading)

	t.Run("nil user hydrates guest state", func(t *testing.T) {
		m := sessionmirror.New()
		m.Hydrate(nil)

		s := m.GetSession()
		assert.Nil(t, s.User)
		assert.False(t, s.IsAuthenticated)
		assert.False(t, s.IsLoading)
	})
}

func TestHydrateIdempotence(t *testing.T) {
	t.Parallel()

	m := sessionmirror.New()
	rec := &recorder{}
	unsubscribe := m.OnSessionChange(rec.listen)
	defer unsubscribe()
	require.Equal(t, 1, rec.count(), "subscription delivers current state")

	m.Hydrate(testUser())
	require.Equal(t, 2, rec.count())

	m.Hydrate(testUser())
	m.Hydrate(testUser())
	assert.Equal(t, 2, rec.count(), "identical hydration must not re-notify")
}

func TestOnSessionChange(t *testing.T) {
	t.Parallel()

	m := sessionmirror.New()
	rec := &recorder{}
	unsubscribe := m.OnSessionChange(rec.listen)

	m.Hydrate(testUser())
	assert.True(t, rec.last().IsAuthenticated)

	unsubscribe()
	m.Logout()
	assert.Equal(t, 2, rec.count(), "unsubscribed listeners stay silent")
}

func TestLogoutWinsOverStaleServerState(t *testing.T) {
	t.Parallel()

	pushed := make(chan sessionmirror.Snapshot, 4)
	release := make(chan struct{})
	m := sessionmirror.New(sessionmirror.WithPush(
		func(ctx context.Context, s sessionmirror.Snapshot) error {
			pushed <- s
			<-release
			return nil
		},
	))
	defer close(release)

	m.Hydrate(testUser())
	m.Logout()

	// Hold the push in flight so the local logout is still unacknowledged.
	select {
	case got := <-pushed:
		assert.False(t, got.IsAuthenticated)
	case <-time.After(time.Second):
		t.Fatal("expected the logged-out state to be pushed outward")
	}

	// Server still believes the session exists; the local logout is the
	// user's intent and must not be reverted.
	m.Hydrate(testUser())
	s := m.GetSession()
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
}

func TestLoginReconciledByHydrate(t *testing.T) {
	t.Parallel()

	m := sessionmirror.New() // no push configured: local intent settles immediately
	optimistic := testUser()
	optimistic.Name = "Optimistic Name"
	m.Login(optimistic)

	assert.Equal(t, "Optimistic Name", m.GetSession().User.Name)

	confirmed := testUser()
	m.Hydrate(confirmed)
	assert.Equal(t, "Test User", m.GetSession().User.Name,
		"server truth overwrites optimistic state, no merging")
}

func TestApplyLocalChange(t *testing.T) {
	t.Parallel()

	t.Run("mutates current user", func(t *testing.T) {
		m := sessionmirror.New()
		m.Hydrate(testUser())

		m.ApplyLocalChange(func(u *sessionmirror.User) {
			u.Name = "Edited"
		})
		assert.Equal(t, "Edited", m.GetSession().User.Name)
	})

	t.Run("no-op for guests", func(t *testing.T) {
		m := sessionmirror.New()
		m.Hydrate(nil)

		m.ApplyLocalChange(func(u *sessionmirror.User) {
			u.Name = "Edited"
		})
		assert.Nil(t, m.GetSession().User)
	})
}

func TestPushFailureDoesNotSurface(t *testing.T) {
	t.Parallel()

	attempted := make(chan struct{}, 1)
	m := sessionmirror.New(sessionmirror.WithPush(
		func(ctx context.Context, s sessionmirror.Snapshot) error {
			select {
			case attempted <- struct{}{}:
			default:
			}
			return errors.New("backend down")
		},
	))

	m.Hydrate(testUser())
	m.Logout()

	select {
	case <-attempted:
	case <-time.After(time.Second):
		t.Fatal("expected an outward push attempt")
	}

	// The local state stands regardless of the push outcome.
	assert.False(t, m.GetSession().IsAuthenticated)
}

func TestSetError(t *testing.T) {
	t.Parallel()

	m := sessionmirror.New()
	m.Hydrate(testUser())
	m.SetError("refresh failed")

	s := m.GetSession()
	assert.Nil(t, s.User)
	assert.False(t, s.IsAuthenticated)
	assert.Equal(t, "refresh failed", s.Error)
}

func TestBoltPersistence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mirror.db")

	p, err := sessionmirror.OpenBolt(path)
	require.NoError(t, err)

	m := sessionmirror.New(sessionmirror.WithPersistence(p))
	m.Hydrate(testUser())
	require.NoError(t, p.Close())

	// A new process restores the snapshot, but treats it as a hint until
	// the next hydration.
	p2, err := sessionmirror.OpenBolt(path)
	require.NoError(t, err)
	defer p2.Close()

	m2 := sessionmirror.New(sessionmirror.WithPersistence(p2))
	s := m2.GetSession()
	require.NotNil(t, s.User)
	assert.Equal(t, "u1", s.User.ID)
	assert.True(t, s.IsLoading)
}
