package authhandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Validate(token string) (*auth.Claims, error)
}

type Handler struct {
	auth  Authenticator
	audit audit.Recorder
}

func NewHandler(svc Authenticator, rec audit.Recorder) *Handler {
	return &Handler{auth: svc, audit: rec}
}

// RegisterRoutes mounts the auth endpoints. loginLimit wraps the login
// route only.
func (h *Handler) RegisterRoutes(r chi.Router, loginLimit ...func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimit...).Post("/login", h.handleLogin)
		r.Get("/validate", h.handleValidate)
		r.With(middleware.RequireAuth).Post("/logout", h.handleLogout)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		api.FailErr(w, err, requestID)
		return
	}

	result, err := h.auth.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.audit, result.EmployeeID, "auth.login", "employee", result.EmployeeID, nil, nil)
	api.SuccessMessage(w, result.Message, result, requestID)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	token, ok := middleware.BearerToken(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "bearer token required", requestID)
		return
	}
	claims, err := h.auth.Validate(token)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	payload := map[string]any{"valid": true, "user": claims.User()}
	if claims.ExpiresAt != nil {
		payload["expiresAt"] = claims.ExpiresAt.Time
	}
	api.Success(w, payload, requestID)
}

// Tokens are stateless; logout only leaves a trail.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	shared.RecordAudit(r, h.audit, user.EmployeeID, "auth.logout", "employee", user.EmployeeID, nil, nil)
	api.SuccessMessage(w, "logged out", nil, middleware.GetRequestID(r.Context()))
}
