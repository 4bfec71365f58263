// Package sessioncache provides the request-facing memoization layer of the
// session subsystem: a concurrent, TTL-bounded map from credential
// fingerprint to resolved session record.
//
// The cache stores negative outcomes ("no valid session") next to positive
// ones, so repeated anonymous requests do not pay verification cost either.
// It is constructed once per process and injected into the session resolver;
// nothing in this package is ambient global state.
package sessioncache
