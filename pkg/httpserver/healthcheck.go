package httpserver

import (
	"context"
	"log/slog"
	"net/http"
)

// Probe is a named dependency check used by readiness endpoints.
type Probe struct {
	Name  string
	Check func(context.Context) error
}

// HealthHandler serves liveness and readiness. With no probes it always
// answers 200 "ALIVE". With probes it runs each one and answers 200 "READY"
// or 503 "NOT_READY", logging the failing probe.
func HealthHandler(log *slog.Logger, probes ...Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(probes) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, p := range probes {
			if err := p.Check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness probe failed",
					"probe", p.Name, "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
