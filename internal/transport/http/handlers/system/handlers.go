package systemhandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/auth"
	"ems/internal/platform/metrics"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db      Pinger
	metrics *metrics.Collector
	perms   middleware.PermissionStore
}

// NewHandler serves liveness and readiness probes. collector may be nil, in
// which case the metrics route is not registered.
func NewHandler(db Pinger, collector *metrics.Collector, perms middleware.PermissionStore) *Handler {
	return &Handler{db: db, metrics: collector, perms: perms}
}

// RegisterProbes mounts /healthz and /readyz. They sit outside /api/v1
// and need no token.
func (h *Handler) RegisterProbes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	if h.metrics == nil {
		return
	}
	r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.perms)).Get("/metrics", h.handleMetrics)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}
