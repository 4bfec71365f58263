// Package authtoken signs and verifies the dual-token credential used by
// the storefront: a short-lived access token that authorizes resource
// access, and a long-lived refresh token that authorizes only renewal.
//
// Both kinds are HS256 JWTs signed with distinct secrets. Verifying a
// token of one kind against the other kind's secret fails deterministically
// with ErrKeyMismatch, which prevents privilege confusion between the two
// token classes.
//
// The package is a pure transform over its inputs and wall-clock time.
// Persistence, rotation, and cookie handling live in modules/auth.
package authtoken
