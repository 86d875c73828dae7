package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/maviontech/project-management/internal"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
	"github.com/maviontech/project-management/internal/rbac"
	"github.com/maviontech/project-management/pkg/logger"
)

func TestMiddleware(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Middleware Suite")
}

const (
	tenantRolesQuery  = "SELECT role_id FROM tenant_role_assignments WHERE member_id = ?"
	projectRolesQuery = "SELECT role_id FROM project_role_assignments WHERE member_id = ? AND project_id = ?"
	permsQuery        = "SELECT p.code FROM permissions p JOIN role_permissions rp ON p.id = rp.permission_id WHERE rp.role_id IN (?)"
)

type connectorFunc func(ctx context.Context, cfg *tenantDatamodel.Config) (*sqlx.DB, error)

func (f connectorFunc) Open(ctx context.Context, cfg *tenantDatamodel.Config) (*sqlx.DB, error) {
	return f(ctx, cfg)
}

var _ = ginkgo.Describe("Gate", func() {
	var (
		mock      sqlmock.Sqlmock
		gate      *Gate
		principal *internal.Principal
		nextHit   bool
		next      http.Handler
	)

	ginkgo.BeforeEach(func() {
		mockDB, m, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		mock = m

		db := sqlx.NewDb(mockDB, "sqlmock")
		gate = &Gate{
			Connector: connectorFunc(func(_ context.Context, _ *tenantDatamodel.Config) (*sqlx.DB, error) {
				return db, nil
			}),
			Resolver: rbac.NewResolver(logger.L()),
			Logger:   logger.L(),
		}

		principal = &internal.Principal{
			MemberID: 7,
			Tenant:   tenantDatamodel.Config{Engine: "mysql", Name: "tenant_acme", User: "tenant_1", Password: "pw"},
		}

		nextHit = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextHit = true
			w.WriteHeader(http.StatusOK)
		})
	})

	roleRows := func(ids ...int64) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"role_id"})
		for _, id := range ids {
			rows.AddRow(id)
		}
		return rows
	}

	codeRows := func(codes ...string) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"code"})
		for _, code := range codes {
			rows.AddRow(code)
		}
		return rows
	}

	withPrincipal := func(r *http.Request) *http.Request {
		return r.WithContext(internal.ContextWithPrincipal(r.Context(), principal))
	}

	ginkgo.It("narrows the check to the project from the URL param", func() {
		mock.ExpectQuery(tenantRolesQuery).WithArgs(int64(7)).WillReturnRows(roleRows())
		mock.ExpectQuery(projectRolesQuery).WithArgs(int64(7), int64(5)).WillReturnRows(roleRows(3))
		mock.ExpectQuery(permsQuery).WithArgs(int64(3)).WillReturnRows(codeRows("tasks.create"))

		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("projectID", "5")
		req := httptest.NewRequest(http.MethodPost, "/projects/5/tasks", nil)
		req = withPrincipal(req)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		rec := httptest.NewRecorder()
		gate.RequirePermission("tasks.create", "projectID")(next).ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(nextHit).To(gomega.BeTrue())
		gomega.Expect(mock.ExpectationsWereMet()).To(gomega.Succeed())
	})

	ginkgo.It("falls back to a form-encoded scope value", func() {
		mock.ExpectQuery(tenantRolesQuery).WithArgs(int64(7)).WillReturnRows(roleRows())
		mock.ExpectQuery(projectRolesQuery).WithArgs(int64(7), int64(5)).WillReturnRows(roleRows(3))
		mock.ExpectQuery(permsQuery).WithArgs(int64(3)).WillReturnRows(codeRows("tasks.create"))

		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("projectID=5"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = withPrincipal(req)

		rec := httptest.NewRecorder()
		gate.RequirePermission("tasks.create", "projectID")(next).ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(nextHit).To(gomega.BeTrue())
		gomega.Expect(mock.ExpectationsWereMet()).To(gomega.Succeed())
	})

	ginkgo.It("checks tenant-wide only when no scope value is present", func() {
		mock.ExpectQuery(tenantRolesQuery).WithArgs(int64(7)).WillReturnRows(roleRows(1))
		mock.ExpectQuery(permsQuery).WithArgs(int64(1)).WillReturnRows(codeRows("projects.view"))

		req := withPrincipal(httptest.NewRequest(http.MethodGet, "/projects", nil))

		rec := httptest.NewRecorder()
		gate.RequirePermission("projects.view", "projectID")(next).ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(nextHit).To(gomega.BeTrue())
		gomega.Expect(mock.ExpectationsWereMet()).To(gomega.Succeed())
	})

	ginkgo.It("denies with 403 and never calls the handler without the grant", func() {
		mock.ExpectQuery(tenantRolesQuery).WithArgs(int64(7)).WillReturnRows(roleRows())

		req := withPrincipal(httptest.NewRequest(http.MethodGet, "/projects", nil))

		rec := httptest.NewRecorder()
		gate.RequirePermission("projects.view", "")(next).ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(nextHit).To(gomega.BeFalse())
	})

	ginkgo.It("rejects an unauthenticated request outright", func() {
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)

		rec := httptest.NewRecorder()
		gate.RequirePermission("projects.view", "")(next).ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(nextHit).To(gomega.BeFalse())
	})
})
