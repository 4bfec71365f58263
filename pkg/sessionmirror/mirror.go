package sessionmirror

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PushFunc reports a locally mutated snapshot outward as the new desired
// state. Failures are logged and retried on the next local mutation; they
// never surface to callers.
type PushFunc func(ctx context.Context, s Snapshot) error

// Listener observes mirror state changes. Listeners observe only: calling
// back into the mirror from a listener is not supported.
type Listener func(Snapshot)

// Option configures a Mirror.
type Option func(*Mirror)

// WithLogger sets the logger used for background sync failures.
func WithLogger(log *slog.Logger) Option {
	return func(m *Mirror) {
		if log != nil {
			m.log = log
		}
	}
}

// WithPersistence restores the last persisted snapshot at construction and
// saves every subsequent state change, so the mirror survives a restart.
func WithPersistence(p Persistence) Option {
	return func(m *Mirror) { m.persist = p }
}

// WithPush enables outward synchronization of local mutations.
func WithPush(fn PushFunc) Option {
	return func(m *Mirror) { m.push = fn }
}

// WithPushTimeout bounds each outward push. Default 5s.
func WithPushTimeout(d time.Duration) Option {
	return func(m *Mirror) {
		if d > 0 {
			m.pushTimeout = d
		}
	}
}

// Mirror is the client-held, eventually-consistent copy of session state.
// There is a single writer per logical event: Hydrate for server truth,
// Login/Logout/ApplyLocalChange for user intent. Subscribers observe; they
// do not feed back.
type Mirror struct {
	mu           sync.Mutex
	state        Snapshot
	pendingLocal bool
	listeners    map[int]Listener
	nextID       int
	persist      Persistence
	push         PushFunc
	pushTimeout  time.Duration
	log          *slog.Logger
}

// New creates a mirror. Without persistence it starts empty and loading;
// with persistence it starts from the last saved snapshot, still marked
// loading until the first Hydrate delivers server truth.
func New(opts ...Option) *Mirror {
	m := &Mirror{
		state:       Snapshot{IsLoading: true},
		listeners:   make(map[int]Listener),
		pushTimeout: 5 * time.Second,
		log:         slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.persist != nil {
		if saved, ok, err := m.persist.Load(); err != nil {
			m.log.Warn("session mirror: restoring persisted snapshot failed", "error", err)
		} else if ok {
			saved.IsLoading = true // persisted state is a hint until hydrated
			m.state = saved
		}
	}

	return m
}

// GetSession returns the current snapshot.
func (m *Mirror) GetSession() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// OnSessionChange registers a listener and returns an unsubscribe function.
// The listener immediately receives the current snapshot.
func (m *Mirror) OnSessionChange(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	current := m.state.clone()
	m.mu.Unlock()

	fn(current)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Hydrate overwrites the mirror with server-resolved truth. It must run
// before the first read that depends on auth state; a nil user hydrates the
// guest state. Hydrating twice with identical data notifies nobody twice.
//
// If a local mutation is still waiting to be pushed outward, the incoming
// server state is ignored and the local state is re-pushed instead: the UI
// action is taken as the user's intent.
func (m *Mirror) Hydrate(user *User) {
	m.mu.Lock()

	if m.pendingLocal {
		m.mu.Unlock()
		m.syncOut()
		return
	}

	next := Snapshot{
		User:            user,
		IsAuthenticated: user != nil,
		IsLoading:       false,
	}
	m.apply(next)
}

// Login applies the post-login user optimistically, before server
// confirmation arrives. The next Hydrate reconciles it with server truth.
func (m *Mirror) Login(user *User) {
	m.mu.Lock()
	m.pendingLocal = true
	m.apply(Snapshot{
		User:            user,
		IsAuthenticated: user != nil,
		IsLoading:       false,
	})
	m.syncOut()
}

// Logout clears the mirror. The cleared state is pushed outward as the new
// desired state even if the server still holds a session.
func (m *Mirror) Logout() {
	m.mu.Lock()
	m.pendingLocal = true
	m.apply(Snapshot{IsLoading: false})
	m.syncOut()
}

// ApplyLocalChange mutates the current user view in place, e.g. a profile
// edit reflected immediately in the UI. Optimistic state is a display
// convenience: the next Hydrate overwrites it with server truth once the
// pending push has landed.
func (m *Mirror) ApplyLocalChange(change func(u *User)) {
	m.mu.Lock()

	if m.state.User == nil {
		m.mu.Unlock()
		return
	}

	next := m.state.clone()
	change(next.User)
	m.pendingLocal = true
	m.apply(next)
	m.syncOut()
}

// SetError records a terminal auth failure and clears the session view.
func (m *Mirror) SetError(msg string) {
	m.mu.Lock()
	m.apply(Snapshot{IsLoading: false, Error: msg})
}

// apply commits next, persists it, and notifies listeners once if the state
// changed. Callers must hold the lock; apply releases it.
func (m *Mirror) apply(next Snapshot) {
	if m.state.equal(next) {
		m.mu.Unlock()
		return
	}

	m.state = next
	if m.persist != nil {
		if err := m.persist.Save(next); err != nil {
			m.log.Warn("session mirror: persisting snapshot failed", "error", err)
		}
	}

	notify := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		notify = append(notify, fn)
	}
	snapshot := m.state.clone()
	m.mu.Unlock()

	for _, fn := range notify {
		fn(snapshot)
	}
}

// syncOut pushes the current snapshot outward, fire-and-forget. It never
// blocks the caller and its failures are logged, not surfaced.
func (m *Mirror) syncOut() {
	if m.push == nil {
		m.mu.Lock()
		m.pendingLocal = false
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	snapshot := m.state.clone()
	m.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.pushTimeout)
		defer cancel()

		if err := m.push(ctx, snapshot); err != nil {
			m.log.Warn("session mirror: outward sync failed", "error", err)
			return
		}

		m.mu.Lock()
		// A newer mutation may have raced ahead; only clear if the pushed
		// snapshot is still current.
		if m.state.equal(snapshot) {
			m.pendingLocal = false
		}
		m.mu.Unlock()
	}()
}
