package corehandler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/core"
	"ems/internal/platform/apperr"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Service interface {
	Register(ctx context.Context, in core.RegisterInput, actorID int64) (int64, error)
	GetEmployee(ctx context.Context, id int64) (core.Employee, error)
	ListEmployees(ctx context.Context, filter core.EmployeeFilter) ([]core.Employee, int, error)
	UpdateProfile(ctx context.Context, id int64, in core.ProfileInput, actorID int64) error
	ChangePassword(ctx context.Context, id int64, current, next string, actorID int64) error
	UploadPhoto(ctx context.Context, id int64, fileName string, data []byte, actorID int64) (string, error)
	Deactivate(ctx context.Context, id, actorID int64) error

	ListDepartments(ctx context.Context, activeOnly bool, limit, offset int) ([]core.Department, int, error)
	GetDepartment(ctx context.Context, id int64) (core.Department, error)
	CreateDepartment(ctx context.Context, name string, actorID int64) (int64, error)
	UpdateDepartment(ctx context.Context, id int64, name string, active bool, actorID int64) error
	DeactivateDepartment(ctx context.Context, id, actorID int64) error

	ListRoles(ctx context.Context, activeOnly bool, limit, offset int) ([]core.Role, int, error)
	GetRole(ctx context.Context, id int64) (core.Role, error)
	CreateRole(ctx context.Context, name string, actorID int64) (int64, error)
	UpdateRole(ctx context.Context, id int64, name string, active bool, actorID int64) error
	DeactivateRole(ctx context.Context, id, actorID int64) error

	AssignDepartments(ctx context.Context, employeeID int64, departmentIDs []int64, actorID int64) ([]core.Assignment, error)
	ListAssignments(ctx context.Context, employeeID int64) ([]core.Assignment, error)
	ListAllAssignments(ctx context.Context, limit, offset int) ([]core.Assignment, int, error)
	RemoveAssignment(ctx context.Context, employeeID, departmentID, actorID int64) error
}

var _ Service = (*core.Service)(nil)

type Handler struct {
	svc         Service
	perms       middleware.PermissionStore
	audit       audit.Recorder
	uploadLimit int64
}

func NewHandler(svc Service, perms middleware.PermissionStore, rec audit.Recorder, uploadLimit int64) *Handler {
	return &Handler{svc: svc, perms: perms, audit: rec, uploadLimit: uploadLimit}
}

func (h *Handler) require(permission string) func(http.Handler) http.Handler {
	return middleware.RequirePermission(permission, h.perms)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(h.require(auth.PermEmployeesRead)).Get("/", h.handleListEmployees)
		r.With(h.require(auth.PermEmployeesWrite)).Post("/", h.handleCreateEmployee)
		r.Route("/{id}", func(r chi.Router) {
			r.With(h.require(auth.PermEmployeesRead)).Get("/", h.handleGetEmployee)
			r.With(h.require(auth.PermEmployeesWrite)).Put("/", h.handleUpdateEmployee)
			r.With(h.require(auth.PermEmployeesWrite)).Delete("/", h.handleDeleteEmployee)
			r.Put("/password", h.handleChangePassword)
			r.Post("/photo", h.handleUploadPhoto)
			r.With(h.require(auth.PermOrgRead)).Get("/departments", h.handleListAssignments)
			r.With(h.require(auth.PermOrgWrite)).Post("/departments", h.handleAssignDepartments)
			r.With(h.require(auth.PermOrgWrite)).Delete("/departments/{departmentId}", h.handleRemoveAssignment)
		})
	})
	r.With(h.require(auth.PermOrgRead)).Get("/department-employees", h.handleListAllAssignments)
	r.Route("/departments", func(r chi.Router) {
		r.With(h.require(auth.PermOrgRead)).Get("/", h.handleListDepartments)
		r.With(h.require(auth.PermOrgWrite)).Post("/", h.handleCreateDepartment)
		r.With(h.require(auth.PermOrgRead)).Get("/{id}", h.handleGetDepartment)
		r.With(h.require(auth.PermOrgWrite)).Put("/{id}", h.handleUpdateDepartment)
		r.With(h.require(auth.PermOrgWrite)).Delete("/{id}", h.handleDeleteDepartment)
	})
	r.Route("/roles", func(r chi.Router) {
		r.With(h.require(auth.PermOrgRead)).Get("/", h.handleListRoles)
		r.With(h.require(auth.PermSystemAdmin)).Post("/", h.handleCreateRole)
		r.With(h.require(auth.PermOrgRead)).Get("/{id}", h.handleGetRole)
		r.With(h.require(auth.PermSystemAdmin)).Put("/{id}", h.handleUpdateRole)
		r.With(h.require(auth.PermSystemAdmin)).Delete("/{id}", h.handleDeleteRole)
	})
}

type employeeRequest struct {
	EmployeeCode string `json:"employeeCode" validate:"omitempty,max=20"`
	Name         string `json:"name" validate:"required,max=150"`
	Email        string `json:"email" validate:"required,email,max=254"`
	MobileNumber string `json:"mobileNumber" validate:"omitempty,numeric,min=7,max=15"`
	Gender       string `json:"gender" validate:"required"`
	DateOfBirth  string `json:"dateOfBirth"`
	RoleID       int64  `json:"roleId" validate:"gt=0"`
	Password     string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name         string `json:"name" validate:"required,max=150"`
	MobileNumber string `json:"mobileNumber" validate:"omitempty,numeric,min=7,max=15"`
	Gender       string `json:"gender" validate:"required"`
	DateOfBirth  string `json:"dateOfBirth"`
	RoleID       int64  `json:"roleId" validate:"gt=0"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type namedRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Active *bool  `json:"active"`
}

type assignRequest struct {
	DepartmentIDs []int64 `json:"departmentIds" validate:"min=1,dive,gt=0"`
}

var (
	errAdminRole  = apperr.Forbidden("only administrators can assign the Admin role")
	errRoleChange = apperr.Forbidden("only administrators can change their own role")
)

// authorizeRole stops callers without system administration from granting
// the Admin role or from changing the role they hold themselves.
func (h *Handler) authorizeRole(ctx context.Context, user auth.UserContext, targetID, roleID, currentRoleID int64) error {
	if roleID == currentRoleID {
		return nil
	}
	isAdmin, err := h.perms.HasPermission(ctx, user.RoleName, auth.PermSystemAdmin)
	if err != nil {
		return apperr.Internal("permission lookup failed", err)
	}
	if isAdmin {
		return nil
	}
	if targetID != 0 && targetID == user.EmployeeID {
		return errRoleChange
	}
	role, err := h.svc.GetRole(ctx, roleID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Invalid("roleId", "must reference an existing role")
	}
	if err != nil {
		return err
	}
	if strings.EqualFold(role.Name, auth.RoleAdmin) {
		return errAdminRole
	}
	return nil
}

func parseDOB(raw string) (*time.Time, error) {
	v := shared.NewValidator()
	dob := v.Date("dateOfBirth", raw)
	return dob, v.Err()
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var req employeeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	dob, err := parseDOB(req.DateOfBirth)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if err := h.authorizeRole(r.Context(), user, 0, req.RoleID, 0); err != nil {
		api.FailErr(w, err, requestID)
		return
	}

	id, err := h.svc.Register(r.Context(), core.RegisterInput{
		Code:        req.EmployeeCode,
		Name:        req.Name,
		Email:       req.Email,
		Mobile:      req.MobileNumber,
		Gender:      req.Gender,
		DateOfBirth: dob,
		RoleID:      req.RoleID,
		Password:    req.Password,
	}, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	emp, err := h.svc.GetEmployee(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "employee.create", "employee", id, nil, emp)
	api.Created(w, emp, requestID)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	roleID, err := shared.IDQuery(r, "roleId")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	active, err := shared.BoolQuery(r, "active")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.svc.ListEmployees(r.Context(), core.EmployeeFilter{
		Search: r.URL.Query().Get("search"),
		RoleID: roleID,
		Active: active,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, page.Page(core.RedactEmployees(items, user), total), requestID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	emp, err := h.svc.GetEmployee(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, core.RedactEmployee(emp, user), requestID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	var req profileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	dob, err := parseDOB(req.DateOfBirth)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	before, err := h.svc.GetEmployee(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if err := h.authorizeRole(r.Context(), user, id, req.RoleID, before.RoleID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	err = h.svc.UpdateProfile(r.Context(), id, core.ProfileInput{
		Name:        req.Name,
		Mobile:      req.MobileNumber,
		Gender:      req.Gender,
		DateOfBirth: dob,
		RoleID:      req.RoleID,
	}, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	after, err := h.svc.GetEmployee(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "employee.update", "employee", id, before, after)
	api.Success(w, after, requestID)
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if id == user.EmployeeID {
		api.FailErr(w, apperr.Conflict("you cannot deactivate your own account"), requestID)
		return
	}
	if err := h.svc.Deactivate(r.Context(), id, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "employee.deactivate", "employee", id, nil, nil)
	api.SuccessMessage(w, "employee deactivated", nil, requestID)
}

// Only the account owner can change a password; the current one is checked.
func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if id != user.EmployeeID {
		api.FailErr(w, apperr.Forbidden("you can only change your own password"), requestID)
		return
	}
	var req passwordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "employee.password", "employee", id, nil, nil)
	api.SuccessMessage(w, "password updated", nil, requestID)
}

func (h *Handler) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if id != user.EmployeeID && !user.IsPrivileged() {
		api.FailErr(w, apperr.Forbidden("insufficient permissions"), requestID)
		return
	}
	if err := r.ParseMultipartForm(h.uploadLimit); err != nil {
		api.FailErr(w, apperr.Invalid("photo", "must be sent as multipart/form-data within the size limit"), requestID)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		api.FailErr(w, apperr.Invalid("photo", "is required"), requestID)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		api.FailErr(w, apperr.Invalid("photo", "could not be read"), requestID)
		return
	}

	key, err := h.svc.UploadPhoto(r.Context(), id, header.Filename, data, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "employee.photo", "employee", id, nil, map[string]string{"profilePhotoPath": key})
	api.Success(w, map[string]string{"profilePhotoPath": key}, requestID)
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	items, err := h.svc.ListAssignments(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, items, requestID)
}

func (h *Handler) handleListAllAssignments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	items, total, err := h.svc.ListAllAssignments(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, page.Page(items, total), requestID)
}

func (h *Handler) handleAssignDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	var req assignRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	items, err := h.svc.AssignDepartments(r.Context(), id, req.DepartmentIDs, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "employee.departments.assign", "employee", id, nil, req)
	api.Success(w, items, requestID)
}

func (h *Handler) handleRemoveAssignment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	departmentID, err := shared.IDParam(r, "departmentId")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if err := h.svc.RemoveAssignment(r.Context(), id, departmentID, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "employee.departments.remove", "employee", id, map[string]int64{"departmentId": departmentID}, nil)
	api.SuccessMessage(w, "assignment removed", nil, requestID)
}

func activeOnly(r *http.Request) bool {
	return !strings.EqualFold(r.URL.Query().Get("includeInactive"), "true")
}
