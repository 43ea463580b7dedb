package middleware

import (
	"net/http"
	"strings"
)

// BodyLimit caps request bodies. Multipart uploads get uploadBytes, every
// other write gets maxBytes.
func BodyLimit(maxBytes, uploadBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				limit := maxBytes
				if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
					limit = uploadBytes
				}
				if limit > 0 {
					r.Body = http.MaxBytesReader(w, r.Body, limit)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
