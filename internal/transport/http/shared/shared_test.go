package shared

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

	"ems/internal/platform/apperr"
)

type samplePayload struct {
	EmployeeID int64   `json:"employeeId" validate:"gt=0"`
	Email      string  `json:"email" validate:"required,email"`
	IDs        []int64 `json:"employeeIds" validate:"min=1"`
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	appErr, ok := apperr.As(err)
	require.True(t, ok, "expected app error, got %v", err)
	out := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestDecodeJSONValidates(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"valid", `{"employeeId":7,"email":"a@b.co","employeeIds":[1]}`, nil},
		{"empty body", ``, []string{"body"}},
		{"bad json", `{"employeeId":`, []string{"body"}},
		{"unknown field", `{"employeeId":7,"email":"a@b.co","employeeIds":[1],"extra":1}`, []string{"body"}},
		{"tag failures", `{"employeeId":0,"email":"nope","employeeIds":[]}`, []string{"email", "employeeId", "employeeIds"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst samplePayload
			err := DecodeJSON(req, &dst)
			if tc.fields == nil {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tc.fields, fieldsOf(t, err))
		})
	}
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range tests {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", tc.raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		got, err := IDParam(req, "id")
		assert.Equal(t, tc.ok, err == nil, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestBoolQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?active=false&bad=maybe", nil)
	v, err := BoolQuery(req, "active")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, *v)

	v, err = BoolQuery(req, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = BoolQuery(req, "bad")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil)
	p := ParsePagination(req, 50, 200)
	assert.Equal(t, Pagination{Limit: 200, Offset: 20}, p)

	req = httptest.NewRequest(http.MethodGet, "/?limit=-1&offset=x", nil)
	assert.Equal(t, Pagination{Limit: 50}, ParsePagination(req, 50, 200))
}

func TestValidatorDateHelpers(t *testing.T) {
	v := NewValidator()
	start := v.Date("startDate", "2025-03-10")
	end := v.Date("endDate", "2025-03-01")
	assert.Nil(t, v.Date("dateOfBirth", ""))
	v.Date("other", "10/03/2025")
	require.NotNil(t, start)
	require.NotNil(t, end)
	v.DateOrder("startDate", *start, "endDate", *end)

	issues := v.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "endDate", issues[0].Field)
	assert.Equal(t, "other", issues[1].Field)
	assert.True(t, apperr.Is(v.Err(), apperr.KindValidation))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", ClientIP(req))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-03-01", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: " 2025-03-01 ", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2025-03-01T23:30:00+05:30", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "01/03/2025", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDate(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s", got)
		})
	}
}

func TestPaginationPage(t *testing.T) {
	page := Pagination{Limit: 10, Offset: 20}.Page([]int{1}, 21)
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 20, page.Offset)
}
