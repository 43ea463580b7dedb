package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/platform/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestFailErr(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", apperr.NotFound("employee"), http.StatusNotFound, "not_found", "employee not found"},
		{"conflict", apperr.Conflict("email already registered"), http.StatusConflict, "conflict", "email already registered"},
		{"storage hides cause", apperr.Storage("write failed", errors.New("/var/data: disk full")), http.StatusInternalServerError, "storage_error", "document storage failed"},
		{"untyped", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal_error", "internal error"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FailErr(rec, tc.err, "req-1")

			assert.Equal(t, tc.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, "req-1", env.RequestID)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Equal(t, tc.message, env.Error.Message)
		})
	}
}

func TestFailErrValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailErr(rec, apperr.Invalid("employeeId", "must be a positive integer"), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	fields, ok := env.Error.Details["fields"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "employeeId", fields[0].(map[string]any)["field"])
}

func TestSuccessMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessMessage(rec, "done", map[string]int{"id": 1}, "r")

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "done", env.Message)
}
