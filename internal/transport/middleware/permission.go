package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/rbac"
	"github.com/maviontech/project-management/internal/tenant"
)

// Gate evaluates permissions against the principal's tenant database. Each
// check opens the tenant connection resolved at login, asks the resolver, and
// closes it again; no tenant state is shared between requests.
type Gate struct {
	Connector tenant.Connector
	Resolver  *rbac.Resolver
	Logger    *slog.Logger
}

// RequirePermission guards a route with a permission code. When scopeParam is
// non-empty, the named URL or query parameter narrows the check to that
// project, so project-scoped roles apply only there. An unresolvable scope or
// any evaluation failure denies the request.
func (g *Gate) RequirePermission(code, scopeParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrSessionExpired)
				return
			}

			var projectID *int64
			if scopeParam != "" {
				raw := chi.URLParam(r, scopeParam)
				if raw == "" {
					raw = r.URL.Query().Get(scopeParam)
				}
				if raw == "" {
					// form-encoded bodies only; JSON bodies are left unread
					raw = r.PostFormValue(scopeParam)
				}
				if raw != "" {
					id, err := strconv.ParseInt(raw, 10, 64)
					if err != nil {
						writeAppError(w, internal.NewValidationError("invalid project id", internal.ErrCodeInvalidID))
						return
					}
					projectID = &id
				}
			}

			db, err := g.Connector.Open(r.Context(), &principal.Tenant)
			if err != nil {
				g.Logger.Error("permission check could not reach tenant database",
					"tenant", principal.Tenant.Name, "error", err)
				writeAppError(w, internal.ErrServiceUnavailable)
				return
			}
			defer db.Close()

			if !g.Resolver.HasPermission(r.Context(), db, principal.MemberID, projectID, code) {
				g.Logger.Warn("permission denied",
					"member_id", principal.MemberID,
					"permission", code,
					"project_id", projectID)
				writeAppError(w, internal.ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
