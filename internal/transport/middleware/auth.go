package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/session"
	"github.com/maviontech/project-management/pkg/logger"
)

// SessionAuth resolves the session token into a Principal and injects it into
// the request context. Requests without a live session are rejected before
// any tenant database is touched.
func SessionAuth(store session.Store, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r, cookieName)
			if token == "" {
				writeAppError(w, internal.ErrSessionExpired)
				return
			}

			principal, err := store.Get(r.Context(), token)
			if err != nil {
				if appErr, ok := internal.IsAppError(err); ok {
					writeAppError(w, appErr)
					return
				}
				writeAppError(w, internal.ErrServiceUnavailable)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.With(ctx, "user_id", principal.UserID, "tenant", principal.Tenant.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	w.Header().Set("Content-Type", "application/json")
	status, body := appErr.ToHTTPResponse()
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
