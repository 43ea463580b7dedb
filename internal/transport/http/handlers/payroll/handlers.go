package payrollhandler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/payroll"
	"ems/internal/platform/apperr"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	Create(ctx context.Context, employeeID int64, c payroll.Components, actorID int64) (payroll.Payslip, error)
	Get(ctx context.Context, id int64) (payroll.Payslip, error)
	List(ctx context.Context, filter payroll.Filter) ([]payroll.Payslip, int, error)
	Update(ctx context.Context, id int64, c payroll.Components, actorID int64) (payroll.Payslip, error)
	Delete(ctx context.Context, id, actorID int64) error
	CreateAndRender(ctx context.Context, employeeID int64, c payroll.Components, actorID int64) (payroll.Payslip, payroll.StoredDocument, error)
	UpdateAuditAndRender(ctx context.Context, payslipID, actorID int64) (payroll.StoredDocument, error)
	Bulk(ctx context.Context, employeeIDs []int64, actorID int64) (payroll.BulkResult, error)
	ResolvePayslipView(ctx context.Context, employeeID int64, source payroll.SalarySource) (payroll.PayslipView, error)
	FetchByFileName(ctx context.Context, name string) (payroll.Document, error)
	FetchLatestForEmployee(ctx context.Context, employeeID int64) (payroll.Document, error)
	ExportRegister(ctx context.Context, filter payroll.Filter) ([]byte, error)
	Renderer() *payroll.Renderer
}

var _ Service = (*payroll.Service)(nil)

var errForeignCreator = apperr.Forbidden("createdBy must match the authenticated caller")

type Handler struct {
	svc   Service
	perms middleware.PermissionStore
	audit audit.Recorder
}

func NewHandler(svc Service, perms middleware.PermissionStore, rec audit.Recorder) *Handler {
	return &Handler{svc: svc, perms: perms, audit: rec}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermPayslipRead, h.perms)
	write := middleware.RequirePermission(auth.PermPayslipWrite, h.perms)
	render := middleware.RequirePermission(auth.PermPayslipRender, h.perms)

	r.Route("/payslips", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(render).Post("/generate", h.handleGenerate)
		r.With(render).Post("/bulk", h.handleBulk)
		r.With(write).Get("/export", h.handleExport)
		r.With(read).Get("/download/{fileName}", h.handleDownload)
		r.With(read).Get("/employee/{employeeId}/latest", h.handleLatest)
		r.With(read).Get("/preview/{employeeId}", h.handlePreview)

		r.Route("/{id}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
			r.With(render).Put("/generate", h.handleRegenerate)
		})
	})
}

type componentsRequest struct {
	EmployeeID int64           `json:"employeeId"`
	BaseSalary decimal.Decimal `json:"baseSalary"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Month      string          `json:"month" validate:"max=50"`
}

func (req componentsRequest) components() payroll.Components {
	return payroll.Components{
		Base:       req.BaseSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
		Month:      req.Month,
	}
}

type bulkRequest struct {
	EmployeeIDs []int64 `json:"employeeIds" validate:"required,min=1,dive,gt=0"`
	CreatedBy   int64   `json:"createdBy" validate:"gte=0"`
}

// ownsEmployee reports whether a non-privileged caller is asking about
// their own records.
func ownsEmployee(user auth.UserContext, employeeID int64) bool {
	return user.IsPrivileged() || user.EmployeeID == employeeID
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if !user.IsPrivileged() {
		filter.EmployeeID = user.EmployeeID
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

func parseFilter(r *http.Request) (payroll.Filter, error) {
	employeeID, err := shared.IDQuery(r, "employeeId")
	if err != nil {
		return payroll.Filter{}, err
	}
	active, err := shared.BoolQuery(r, "active")
	if err != nil {
		return payroll.Filter{}, err
	}
	return payroll.Filter{
		EmployeeID: employeeID,
		Month:      strings.TrimSpace(r.URL.Query().Get("month")),
		Active:     active,
	}, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var req componentsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	created, err := h.svc.Create(r.Context(), req.EmployeeID, req.components(), user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "payslip.create", "payslip", created.ID, nil, created)
	api.Created(w, created, requestID)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var req componentsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	created, doc, err := h.svc.CreateAndRender(r.Context(), req.EmployeeID, req.components(), user.EmployeeID)
	if created.ID > 0 {
		shared.RecordAudit(r, h.audit, user.EmployeeID, "payslip.create", "payslip", created.ID, nil, created)
	}
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "payslip.render", "payslip", created.ID, nil, doc)
	api.Created(w, map[string]any{"payslip": created, "document": doc}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err == nil && !ownsEmployee(user, item.EmployeeID) {
		err = payroll.ErrPayslipNotFound
	}
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, item, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	var req componentsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	before, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	after, err := h.svc.Update(r.Context(), id, req.components(), user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "payslip.update", "payslip", id, before, after)
	api.Success(w, after, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if err := h.svc.Delete(r.Context(), id, user.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "payslip.delete", "payslip", id, nil, nil)
	api.SuccessMessage(w, "payslip deleted", nil, requestID)
}

func (h *Handler) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := shared.IDParam(r, "id")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	doc, err := h.svc.UpdateAuditAndRender(r.Context(), id, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "payslip.regenerate", "payslip", id, nil, doc)
	api.Success(w, doc, requestID)
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var req bulkRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if req.CreatedBy != 0 && req.CreatedBy != user.EmployeeID {
		api.FailErr(w, errForeignCreator, requestID)
		return
	}
	result, err := h.svc.Bulk(r.Context(), req.EmployeeIDs, user.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, user.EmployeeID, "payslip.bulk", "payslip", 0,
		map[string]any{"employeeIds": req.EmployeeIDs}, result.Summary)
	api.Success(w, result, requestID)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	name := chi.URLParam(r, "fileName")
	if !user.IsPrivileged() && !strings.HasPrefix(name, fmt.Sprintf("Payslip_%d_", user.EmployeeID)) {
		api.FailErr(w, payroll.ErrDocumentNotFound, requestID)
		return
	}
	doc, err := h.svc.FetchByFileName(r.Context(), name)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	writeDocument(w, doc)
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID, err := shared.IDParam(r, "employeeId")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if !ownsEmployee(user, employeeID) {
		api.FailErr(w, payroll.ErrDocumentNotFound, requestID)
		return
	}
	doc, err := h.svc.FetchLatestForEmployee(r.Context(), employeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	writeDocument(w, doc)
}

// handlePreview renders the latest payslip, or the one named by
// ?payslipId, as HTML without storing anything.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID, err := shared.IDParam(r, "employeeId")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	if !ownsEmployee(user, employeeID) {
		api.FailErr(w, payroll.ErrPayslipNotFound, requestID)
		return
	}
	payslipID, err := shared.IDQuery(r, "payslipId")
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	var source payroll.SalarySource = payroll.LatestStored{}
	if payslipID > 0 {
		source = payroll.ByPayslip{PayslipID: payslipID}
	}

	view, err := h.svc.ResolvePayslipView(r.Context(), employeeID, source)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	page, err := h.svc.Renderer().RenderHTML(view)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	data, err := h.svc.ExportRegister(r.Context(), filter)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	writeDocument(w, payroll.Document{Name: "payslip-register.xlsx", ContentType: xlsxContentType, Data: data})
}

func writeDocument(w http.ResponseWriter, doc payroll.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}
