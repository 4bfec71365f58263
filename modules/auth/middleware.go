package auth

import (
	"errors"
	"net/http"

	"github.com/gmhridu/hamsoya-mono-sub004/core"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/authtoken"
)

// Middleware resolves the session once per request and injects the record
// into the context for downstream collaborators. Guests pass through with
// no record; an identity backend outage also passes through, since page
// rendering treats every resolution failure as a guest.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, err := s.Resolve(r.Context(), w, r)
		if err != nil {
			s.log.Warn("session resolution indeterminate", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if record == nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSessionRecord(r.Context(), record)))
	})
}

// RequireRole gates a route on role membership. Missing sessions get 401,
// sessions without a satisfying role get a generic 403 that does not reveal
// whether the subject exists, and identity outages get 503.
func (s *Service) RequireRole(roles ...authtoken.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			record, err := s.ResolveWithRole(r.Context(), w, r, roles...)
			switch {
			case errors.Is(err, ErrUnauthenticated):
				core.WriteJSONError(w, core.ErrUnauthorized)
				return
			case errors.Is(err, ErrForbidden):
				core.WriteJSONError(w, core.ErrForbidden)
				return
			case err != nil:
				core.WriteJSONError(w, core.ErrServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionRecord(r.Context(), record)))
		})
	}
}
