package corehandler

import (
	"net/http"
	"strings"

	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	items, total, err := h.svc.ListDepartments(r.Context(), activeOnly(r), page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, page.Page(items, total), requestID)
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	dept, err := h.svc.GetDepartment(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, dept, requestID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var req namedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	id, err := h.svc.CreateDepartment(r.Context(), strings.TrimSpace(req.Name), user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	dept, err := h.svc.GetDepartment(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "department.create", "department", id, nil, dept)
	api.Created(w, dept, requestID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	var req namedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	before, err := h.svc.GetDepartment(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	active := before.Active
	if req.Active != nil {
		active = *req.Active
	}
	if err := h.svc.UpdateDepartment(r.Context(), id, strings.TrimSpace(req.Name), active, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	after, err := h.svc.GetDepartment(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "department.update", "department", id, before, after)
	api.Success(w, after, requestID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if err := h.svc.DeactivateDepartment(r.Context(), id, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "department.deactivate", "department", id, nil, nil)
	api.SuccessMessage(w, "department deactivated", nil, requestID)
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	items, total, err := h.svc.ListRoles(r.Context(), activeOnly(r), page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, page.Page(items, total), requestID)
}

func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	role, err := h.svc.GetRole(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, role, requestID)
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var req namedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	id, err := h.svc.CreateRole(r.Context(), strings.TrimSpace(req.Name), user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	role, err := h.svc.GetRole(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "role.create", "role", id, nil, role)
	api.Created(w, role, requestID)
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	var req namedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	before, err := h.svc.GetRole(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	active := before.Active
	if req.Active != nil {
		active = *req.Active
	}
	if err := h.svc.UpdateRole(r.Context(), id, strings.TrimSpace(req.Name), active, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	after, err := h.svc.GetRole(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "role.update", "role", id, before, after)
	api.Success(w, after, requestID)
}

func (h *Handler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if err := h.svc.DeactivateRole(r.Context(), id, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "role.deactivate", "role", id, nil, nil)
	api.SuccessMessage(w, "role deactivated", nil, requestID)
}
