package audithandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Lister interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Event, int, error)
}

type Handler struct {
	events Lister
	perms  middleware.PermissionStore
}

func NewHandler(events Lister, perms middleware.PermissionStore) *Handler {
	return &Handler{events: events, perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermAuditRead, h.perms))
		r.Get("/", h.handleList)
		r.Get("/export", h.handleExport)
	})
}

func parseFilter(r *http.Request) (audit.Filter, error) {
	actorID, err := shared.IDQuery(r, "actorId")
	if err != nil {
		return audit.Filter{}, err
	}
	q := r.URL.Query()
	return audit.Filter{
		Action:     strings.TrimSpace(q.Get("action")),
		EntityType: strings.TrimSpace(q.Get("entityType")),
		EntityID:   strings.TrimSpace(q.Get("entityId")),
		ActorID:    actorID,
	}, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	events, total, err := h.events.List(r.Context(), filter)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, page.Page(events, total), requestID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	filter.Limit = 10000
	events, _, err := h.events.List(r.Context(), filter)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, evt := range events {
		actor := ""
		if evt.ActorID != nil {
			actor = strconv.FormatInt(*evt.ActorID, 10)
		}
		row := []string{
			strconv.FormatInt(evt.ID, 10), actor, evt.Action, evt.EntityType, evt.EntityID,
			evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}
