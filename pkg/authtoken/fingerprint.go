package authtoken

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives a cache key from a credential pair. Caches keyed by
// fingerprint never hold raw tokens, so a shared or dumped cache does not
// leak usable credentials.
func Fingerprint(accessToken, refreshToken string) string {
	h := sha256.New()
	h.Write([]byte(accessToken))
	h.Write([]byte{'|'})
	h.Write([]byte(refreshToken))

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}
