package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RefreshStore tracks the single active refresh token per subject, by hash.
// Rotation is an atomic check-and-mark against this store: of two
// concurrent refresh attempts with the same token, exactly one succeeds and
// the other observes a reuse. Resolver-side locking would not survive
// multi-process deployments, so the store carries the exclusion.
type RefreshStore interface {
	// Save records the hash of a freshly issued refresh token, replacing
	// any previous chain for the subject.
	Save(ctx context.Context, subjectID, tokenHash string, ttl time.Duration) error

	// Rotate atomically verifies that providedHash is the current chain
	// head and replaces it with nextHash. It fails with ErrRefreshInvalid
	// when no chain exists, or ErrRefreshReuse when providedHash was
	// already rotated away - in which case the whole chain is deleted, as
	// reuse signals possible token theft.
	Rotate(ctx context.Context, subjectID, providedHash, nextHash string, ttl time.Duration) error

	// Revoke deletes the subject's chain. Idempotent.
	Revoke(ctx context.Context, subjectID string) error
}

// hashToken produces the stored fingerprint of a refresh token. Raw tokens
// never reach the backing store.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
