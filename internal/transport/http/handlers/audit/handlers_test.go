package audithandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/transport/http/middleware"
)

type fakeLister struct {
	filter audit.Filter
}

func (f *fakeLister) List(_ context.Context, filter audit.Filter) ([]audit.Event, int, error) {
	f.filter = filter
	actor := int64(1)
	return []audit.Event{{
		ID: 5, ActorID: &actor, Action: "payslip.render", EntityType: "payslip", EntityID: "12",
		CreatedAt: time.Date(2025, 1, 31, 10, 15, 0, 0, time.UTC),
	}}, 1, nil
}

func newRouter(events Lister, user auth.UserContext) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), user)))
		})
	})
	NewHandler(events, auth.StaticPermissions{}).RegisterRoutes(r)
	return r
}

func TestListPassesFilters(t *testing.T) {
	events := &fakeLister{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/audit?action=payslip.render&actorId=1&limit=10", nil)
	newRouter(events, auth.UserContext{EmployeeID: 1, RoleName: auth.RoleHR}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, "payslip.render", events.filter.Action)
	assert.Equal(t, int64(1), events.filter.ActorID)
	assert.Equal(t, 10, events.filter.Limit)
}

func TestListForbiddenForEmployees(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeLister{}, auth.UserContext{EmployeeID: 3, RoleName: auth.RoleEmployee}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportCSV(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeLister{}, auth.UserContext{EmployeeID: 1, RoleName: auth.RoleAdmin}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "5,1,payslip.render,payslip,12,,,2025-01-31T10:15:00Z", lines[1])
}
