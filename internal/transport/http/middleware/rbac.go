package middleware

import (
	"context"
	"net/http"

	"ems/internal/platform/apperr"
	"ems/internal/transport/http/api"
)

// PermissionStore answers whether a role holds a permission.
type PermissionStore interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

var errNoPermission = apperr.Forbidden("insufficient permissions")

// RequirePermission rejects callers whose role lacks permission. It must run
// after Auth; anonymous callers get 401.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.FailErr(w, errUnauthenticated, requestID)
				return
			}
			allowed, err := store.HasPermission(r.Context(), user.RoleName, permission)
			if err != nil {
				api.FailErr(w, apperr.Internal("permission check failed", err), requestID)
				return
			}
			if !allowed {
				api.FailErr(w, errNoPermission, requestID)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
