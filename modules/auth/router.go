package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gmhridu/hamsoya-mono-sub004/core"
)

// hydrationPayload is what the client mirror consumes: the user view plus
// the authentication verdict, never raw tokens.
type hydrationPayload struct {
	User            *SessionRecord `json:"user"`
	IsAuthenticated bool           `json:"is_authenticated"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Router mounts the session endpoints.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", s.handleLogin)
	r.Post("/refresh", s.handleRefresh)
	r.Post("/logout", s.handleLogout)
	r.Get("/me", s.handleMe)

	return r
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		core.WriteJSONError(w, core.ErrBadRequest)
		return
	}

	pair, record, err := s.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		core.WriteJSONError(w, core.NewHTTPError(http.StatusUnauthorized, "invalid_credentials"))
		return
	case errors.Is(err, ErrBackendUnavailable):
		core.WriteJSONError(w, core.ErrServiceUnavailable)
		return
	case err != nil:
		s.log.Error("login failed", "error", err)
		core.WriteJSONError(w, core.ErrInternalServerError)
		return
	}

	s.SetCredentialCookies(w, pair)
	core.WriteJSON(w, hydrationPayload{User: &record, IsAuthenticated: true})
}

// handleRefresh implements the refresh protocol endpoint: 200 with a new
// Set-Cookie pair, or 401 with both cookies deleted. A replayed token is
// never quietly re-issued; it kills the chain and the cookies with it.
func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := s.cookies.Get(r, RefreshTokenCookie)
	if err != nil || refresh == "" {
		s.ClearCredentialCookies(w)
		core.WriteJSONError(w, core.ErrUnauthorized)
		return
	}

	// The access cookie may still name the pre-rotation pair in the cache.
	if access, err := s.cookies.Get(r, AccessTokenCookie); err == nil {
		s.cache.Evict(CredentialPair{AccessToken: access, RefreshToken: refresh}.Fingerprint())
	}

	pair, record, err := s.Refresh(r.Context(), refresh)
	switch {
	case errors.Is(err, ErrBackendUnavailable):
		core.WriteJSONError(w, core.ErrServiceUnavailable)
		return
	case err != nil:
		s.ClearCredentialCookies(w)
		core.WriteJSONError(w, core.ErrUnauthorized)
		return
	}

	s.SetCredentialCookies(w, pair)
	core.WriteJSON(w, hydrationPayload{User: &record, IsAuthenticated: true})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Logout(r.Context(), w, r); err != nil {
		s.log.Warn("logout cleanup failed", "error", err)
	}
	core.WriteJSON(w, hydrationPayload{})
}

// handleMe is the hydration source: it resolves the caller and returns the
// session view. Guests get a null user with a 200, never an error page.
func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	record, err := s.Resolve(r.Context(), w, r)
	if err != nil {
		core.WriteJSONError(w, core.ErrServiceUnavailable)
		return
	}

	core.WriteJSON(w, hydrationPayload{User: record, IsAuthenticated: record != nil})
}
