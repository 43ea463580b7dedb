package systemhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/auth"
	"ems/internal/platform/metrics"
	"ems/internal/transport/http/middleware"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func router(h *Handler, user auth.UserContext) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), user)))
		})
	})
	h.RegisterProbes(r)
	h.RegisterRoutes(r)
	return r
}

func TestProbes(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{name: "health", path: "/healthz", status: http.StatusOK},
		{name: "ready", path: "/readyz", status: http.StatusOK},
		{name: "db down", path: "/readyz", err: errors.New("refused"), status: http.StatusServiceUnavailable},
		{name: "health ignores db", path: "/healthz", err: errors.New("refused"), status: http.StatusOK},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router(NewHandler(pinger{err: tc.err}, nil, auth.StaticPermissions{}), auth.UserContext{}).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestMetricsAdminOnly(t *testing.T) {
	collector := metrics.New()
	collector.Record(http.StatusOK, 10*time.Millisecond)
	collector.PayslipRendered()
	h := NewHandler(pinger{}, collector, auth.StaticPermissions{})

	rec := httptest.NewRecorder()
	router(h, auth.UserContext{EmployeeID: 2, RoleName: auth.RoleHR}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	router(h, auth.UserContext{EmployeeID: 1, RoleName: auth.RoleAdmin}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data metrics.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, uint64(1), env.Data.RequestsTotal)
	assert.Equal(t, uint64(1), env.Data.PayslipsRendered)
}

func TestMetricsDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	router(NewHandler(pinger{}, nil, auth.StaticPermissions{}), auth.UserContext{RoleName: auth.RoleAdmin}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
