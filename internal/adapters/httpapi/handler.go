// Package httpapi exposes the audit data service and its page views over
// JSON/HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"auditdesk/docs/schema/openapi"
	"auditdesk/internal/adapters/reports"
	"auditdesk/internal/core"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// Options configures optional collaborators of the HTTP API.
type Options struct {
	Logger *zap.Logger
	// Exports enables the report export routes when set.
	Exports reports.ExportScheduler
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	Now     func() time.Time
}

// Handler serves the HTTP API.
type Handler struct {
	svc     *core.Service
	exports reports.ExportScheduler
	metrics http.Handler
	logger  *zap.Logger
	now     func() time.Time
	router  chi.Router
}

// NewHandler builds the router for svc.
func NewHandler(svc *core.Service, opts Options) *Handler {
	h := &Handler{
		svc:     svc,
		exports: opts.Exports,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.router = h.routes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(openapi.Spec())
		})
		h.mountResources(r)
		r.Route("/pages", h.mountPages)
		if h.exports != nil {
			r.Route("/reports/exports", h.mountExports)
		}
	})
	return r
}
