package auth

import (
	"context"
	"sync"
	"time"
)

type memoryChain struct {
	hash      string
	expiresAt time.Time
}

// MemoryRefreshStore is an in-process RefreshStore for development and
// tests. A single mutex makes rotation atomic within the process.
type MemoryRefreshStore struct {
	mu     sync.Mutex
	chains map[string]memoryChain
	now    func() time.Time
}

// NewMemoryRefreshStore creates an empty in-memory refresh store.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{
		chains: make(map[string]memoryChain),
		now:    time.Now,
	}
}

// WithClock overrides the store's time source. Intended for tests.
func (s *MemoryRefreshStore) WithClock(now func() time.Time) *MemoryRefreshStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryRefreshStore) Save(ctx context.Context, subjectID, tokenHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chains[subjectID] = memoryChain{hash: tokenHash, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshStore) Rotate(ctx context.Context, subjectID, providedHash, nextHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, ok := s.chains[subjectID]
	if !ok || s.now().After(chain.expiresAt) {
		delete(s.chains, subjectID)
		return ErrRefreshInvalid
	}

	if chain.hash != providedHash {
		// Reuse of a rotated token: hard-invalidate the whole chain.
		delete(s.chains, subjectID)
		return ErrRefreshReuse
	}

	s.chains[subjectID] = memoryChain{hash: nextHash, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshStore) Revoke(ctx context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chains, subjectID)
	return nil
}
