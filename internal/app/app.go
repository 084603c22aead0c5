// Package app assembles the process: it opens the configured store and
// builds the HTTP handler tree. Everything is constructed explicitly and
// passed down; nothing is looked up globally.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/mechanics-api/internal/config"
	"github.com/aanand-mishra/mechanics-api/internal/http/handlers/health"
	"github.com/aanand-mishra/mechanics-api/internal/http/handlers/mechanic"
	"github.com/aanand-mishra/mechanics-api/internal/http/middleware"
	"github.com/aanand-mishra/mechanics-api/internal/service"
	"github.com/aanand-mishra/mechanics-api/internal/storage"
	"github.com/aanand-mishra/mechanics-api/internal/storage/memory"
	"github.com/aanand-mishra/mechanics-api/internal/storage/postgres"
	"github.com/aanand-mishra/mechanics-api/internal/storage/sqlite"
)

// OpenStorage returns the backend selected by cfg.Driver.
func OpenStorage(ctx context.Context, cfg config.Storage, log *slog.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewHandler wires service, handlers and middleware into one http.Handler.
//
// Middleware order, outermost first: request ID → access log → metrics →
// router. Metrics must sit directly on the router so it sees r.Pattern.
func NewHandler(cfg *config.Config, store storage.Storage, log *slog.Logger, reg *prometheus.Registry) http.Handler {
	svc := service.New(store, log)

	router := http.NewServeMux()
	mechanic.Register(router, svc, log)
	router.HandleFunc("GET /healthz", health.Check(svc, log))

	var h http.Handler = router

	if cfg.Metrics.Enabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		router.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		h = middleware.NewMetrics(reg).Middleware(h)
	}

	h = middleware.AccessLog(log)(h)
	h = middleware.RequestID(h)

	return h
}
