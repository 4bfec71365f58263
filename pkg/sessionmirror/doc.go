// Package sessionmirror keeps a client-held, display-only copy of session
// state consistent with server-validated truth.
//
// The mirror is hydrated with server truth before the first auth-dependent
// read, so a logged-in user never sees an unauthenticated flash. Local
// actions (login, logout, profile edits) mutate it optimistically and are
// pushed outward as the new desired state; server hydration overwrites
// optimistic state once the push has landed. State survives restarts
// through an optional bbolt-backed snapshot.
//
// The mirror must never be consulted for authorization decisions.
package sessionmirror
