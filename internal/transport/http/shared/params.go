package shared

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ems/internal/platform/apperr"
)

// IDParam reads a positive integer path parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	return positiveInt(name, chi.URLParam(r, name))
}

// IDQuery reads an optional positive integer query parameter; zero means unset.
func IDQuery(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	return positiveInt(name, raw)
}

// BoolQuery reads an optional boolean query parameter.
func BoolQuery(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Invalid(name, "must be true or false")
	}
	return &v, nil
}

func positiveInt(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(field, "must be a positive integer")
	}
	return id, nil
}

// ClientIP prefers RemoteAddr, which chi's RealIP middleware has already
// rewritten from the forwarding headers.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}
