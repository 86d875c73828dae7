package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/maviontech/project-management/internal"
)

// AdminKey guards the operator endpoints (tenant registration, batch
// provisioning) with a shared key. These endpoints sit outside any tenant, so
// session auth does not apply to them.
func AdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				writeAppError(w, internal.NewForbiddenError("admin API is disabled", internal.ErrCodePermissionDenied))
				return
			}

			got := r.Header.Get("X-Admin-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeAppError(w, internal.NewForbiddenError("invalid admin key", internal.ErrCodePermissionDenied))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
