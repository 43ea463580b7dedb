package leavehandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/leave"
	"ems/internal/platform/apperr"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in leave.Input, actorID int64) (int64, error)
	Get(ctx context.Context, id int64) (leave.Leave, error)
	List(ctx context.Context, filter leave.Filter) ([]leave.Leave, int, error)
	Update(ctx context.Context, id int64, in leave.Input, actorID int64) (leave.Leave, error)
	Approve(ctx context.Context, id, actorID int64) (leave.Leave, error)
	Reject(ctx context.Context, id, actorID int64) (leave.Leave, error)
	Cancel(ctx context.Context, id, actorID int64) (leave.Leave, error)
	Delete(ctx context.Context, id, actorID int64) error
}

var _ Service = (*leave.Service)(nil)

type Handler struct {
	svc   Service
	perms middleware.PermissionStore
	audit audit.Recorder
}

func NewHandler(svc Service, perms middleware.PermissionStore, rec audit.Recorder) *Handler {
	return &Handler{svc: svc, perms: perms, audit: rec}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermLeaveRead, h.perms)
	write := middleware.RequirePermission(auth.PermLeaveWrite, h.perms)
	approve := middleware.RequirePermission(auth.PermLeaveApprove, h.perms)

	r.Route("/leaves", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(approve).Delete("/", h.handleDelete)
			r.With(approve).Post("/approve", h.handleDecision("approve"))
			r.With(approve).Post("/reject", h.handleDecision("reject"))
			r.With(write).Post("/cancel", h.handleCancel)
		})
	})
}

type leaveRequest struct {
	EmployeeID     int64  `json:"employeeId" validate:"gte=0"`
	LeaveType      string `json:"leaveType" validate:"required"`
	StartDate      string `json:"startDate" validate:"required"`
	EndDate        string `json:"endDate" validate:"required"`
	MaxDaysPerYear int    `json:"maxDaysPerYear" validate:"gt=0"`
	Reason         string `json:"reason" validate:"max=1000"`
}

func (req leaveRequest) input() (leave.Input, error) {
	v := shared.NewValidator()
	start := v.Date("startDate", req.StartDate)
	end := v.Date("endDate", req.EndDate)
	if err := v.Err(); err != nil {
		return leave.Input{}, err
	}
	return leave.Input{
		EmployeeID:     req.EmployeeID,
		Type:           req.LeaveType,
		StartDate:      *start,
		EndDate:        *end,
		MaxDaysPerYear: req.MaxDaysPerYear,
		Reason:         req.Reason,
	}, nil
}

// canAct reports whether the caller may act on a leave owned by employeeID.
func canAct(user auth.UserContext, employeeID int64) bool {
	return user.IsPrivileged() || user.EmployeeID == employeeID
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var req leaveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if req.EmployeeID == 0 {
		req.EmployeeID = user.EmployeeID
	}
	if !canAct(user, req.EmployeeID) {
		api.FailErr(w, apperr.Forbidden("you can only request leave for yourself"), requestID)
		return
	}
	in, err := req.input()
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}

	id, err := h.svc.Create(r.Context(), in, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	created, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "leave.create", "leave", id, nil, created)
	api.Created(w, created, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID, err := shared.IDQuery(r, "employeeId")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if !user.IsPrivileged() {
		employeeID = user.EmployeeID
	}
	filter := leave.Filter{EmployeeID: employeeID}
	v := shared.NewValidator()
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := leave.ParseStatus(raw)
		if err != nil {
			v.Add("status", "must be one of pending, approved, rejected, cancelled")
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("leaveType"); raw != "" {
		leaveType, err := leave.ParseType(raw)
		if err != nil {
			v.Add("leaveType", "must be one of sick, casual, earned, maternity, paternity, unpaid")
		}
		filter.Type = leaveType
	}
	if v.Reject(w, requestID) {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	items, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, page.Page(items, total), requestID)
}

// load fetches the leave and checks the caller may see it. Other people's
// leave answers not found.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (leave.Leave, auth.UserContext, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return leave.Leave{}, user, false
	}
	item, err := h.svc.Get(r.Context(), id)
	if err == nil && !canAct(user, item.EmployeeID) {
		err = leave.ErrLeaveNotFound
	}
	if err != nil {
		api.FailErr(w, err, requestID)
		return leave.Leave{}, user, false
	}
	return item, user, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, _, ok := h.load(w, r)
	if !ok {
		return
	}
	api.Success(w, item, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	before, user, ok := h.load(w, r)
	if !ok {
		return
	}
	var req leaveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	in, err := req.input()
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	after, err := h.svc.Update(r.Context(), before.ID, in, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "leave.update", "leave", before.ID, before, after)
	api.Success(w, after, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	item, user, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), item.ID, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "leave.delete", "leave", item.ID, item, nil)
	api.SuccessMessage(w, "leave deleted", nil, requestID)
}

func (h *Handler) handleDecision(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetRequestID(r.Context())
		item, user, ok := h.load(w, r)
		if !ok {
			return
		}
		if item.EmployeeID == user.EmployeeID {
			api.FailErr(w, apperr.Forbidden("you cannot decide on your own leave"), requestID)
			return
		}
		decide := h.svc.Approve
		if action == "reject" {
			decide = h.svc.Reject
		}
		updated, err := decide(r.Context(), item.ID, user.EmployeeID)
		if err != nil {
			api.FailErr(w, err, requestID)
			return
		}
		shared.RecordAudit(r, h.audit, user.EmployeeID, "leave."+action, "leave", item.ID,
			map[string]any{"status": item.Status}, map[string]any{"status": updated.Status})
		api.Success(w, updated, requestID)
	}
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	item, user, ok := h.load(w, r)
	if !ok {
		return
	}
	updated, err := h.svc.Cancel(r.Context(), item.ID, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "leave.cancel", "leave", item.ID,
		map[string]any{"status": item.Status}, map[string]any{"status": updated.Status})
	api.Success(w, updated, requestID)
}
