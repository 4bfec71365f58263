package cookie

import (
	"errors"
	"net/http"
	"time"
)

// Manager writes and reads cookies with a fixed set of defaults, so every
// handler in the application emits the same attributes unless it explicitly
// overrides them.
type Manager struct {
	defaults Options
}

// New creates a cookie manager. Defaults: Path=/, SameSite=Strict, HttpOnly.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}

	return &Manager{defaults: applyOptions(defaults, opts)}
}

// Set writes a cookie using the manager defaults merged with opts.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

// Get returns the raw value of a request cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return cookie.Value, nil
}

// Delete expires a cookie in the response. Attributes other than Max-Age
// must match the ones it was set with, or browsers keep the original.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}
