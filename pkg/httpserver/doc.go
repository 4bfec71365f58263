// Package httpserver wraps net/http with graceful shutdown, environment
// driven configuration, and liveness/readiness probes.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains in-flight requests within the shutdown timeout.
// Listen failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown, so callers can branch with errors.Is.
package httpserver
