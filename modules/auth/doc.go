// Package auth is the storefront's authenticated-session subsystem: it
// issues, verifies, and rotates the dual-token credential, memoizes
// resolution through the session cache, and exposes the HTTP surface the
// client mirror synchronizes against.
//
// The rest of the application consumes sessions exclusively through
// Resolve/ResolveWithRole (or the corresponding middleware); everything
// else here is internal mechanics.
//
// Refresh rotation is single-use: every refresh issues a new pair and
// atomically marks the old refresh token spent in the RefreshStore. Replaying a spent token is treated as possible token theft
// and invalidates the subject's whole session chain.
package auth
