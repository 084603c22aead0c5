// Package health exposes a liveness/readiness probe backed by a storage ping.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/mechanics-api/internal/utils/response"
)

// Pinger is anything that can check its own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// pingTimeout bounds how long a probe waits on the store.
const pingTimeout = 2 * time.Second

// Check handles GET /healthz.
//
//	200 OK                   storage reachable
//	503 Service Unavailable  storage ping failed
func Check(p Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			log.WarnContext(r.Context(), "health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.Message("unavailable"))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Message("ok"))
	}
}
