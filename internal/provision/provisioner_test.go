package provision

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/maviontech/project-management/internal/core/datamodel/rbac"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
	"github.com/maviontech/project-management/internal/password"
	"github.com/maviontech/project-management/pkg/logger"
)

func TestProvision(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Provision Suite")
}

var _ = ginkgo.Describe("randomPassword", func() {
	ginkgo.It("produces the requested length", func() {
		pw, err := randomPassword(generatedPasswordLength)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(pw).To(gomega.HaveLen(generatedPasswordLength))
	})

	ginkgo.It("only draws from the quote-free alphabet", func() {
		for i := 0; i < 20; i++ {
			pw, err := randomPassword(generatedPasswordLength)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			for _, r := range pw {
				gomega.Expect(strings.ContainsRune(passwordAlphabet, r)).To(gomega.BeTrue())
			}
			gomega.Expect(pw).ToNot(gomega.ContainSubstring("'"))
			gomega.Expect(pw).ToNot(gomega.ContainSubstring(`"`))
		}
	})

	ginkgo.It("does not repeat", func() {
		a, err := randomPassword(generatedPasswordLength)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		b, err := randomPassword(generatedPasswordLength)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(a).ToNot(gomega.Equal(b))
	})
})

var _ = ginkgo.Describe("permission catalogue", func() {
	catalogue := map[string]bool{}
	for _, p := range permissionCatalogue {
		catalogue[p.Code] = true
	}

	ginkgo.It("has no duplicate codes", func() {
		gomega.Expect(catalogue).To(gomega.HaveLen(len(permissionCatalogue)))
	})

	ginkgo.It("grants every builtin role only known codes", func() {
		for role := range builtinRoles {
			for _, code := range rolePermissionCodes(role) {
				gomega.Expect(catalogue).To(gomega.HaveKey(code),
					"role %s references unknown code %s", role, code)
			}
		}
	})

	ginkgo.It("grants Admin the full catalogue", func() {
		gomega.Expect(rolePermissionCodes(rbac.RoleAdmin)).To(gomega.HaveLen(len(permissionCatalogue)))
	})

	ginkgo.It("keeps Viewer read-only", func() {
		for _, code := range rolePermissionCodes(rbac.RoleViewer) {
			gomega.Expect(code).To(gomega.HaveSuffix(".view"))
		}
	})

	ginkgo.It("gives Developer everything Viewer has and more", func() {
		developer := map[string]bool{}
		for _, code := range rolePermissionCodes(rbac.RoleDeveloper) {
			developer[code] = true
		}
		for _, code := range rolePermissionCodes(rbac.RoleViewer) {
			gomega.Expect(developer).To(gomega.HaveKey(code))
		}
		gomega.Expect(developer).To(gomega.HaveKey("tasks.create"))
		gomega.Expect(rolePermissionCodes(rbac.RoleViewer)).ToNot(gomega.ContainElement("tasks.create"))
	})

	ginkgo.It("withholds task assignment from Tester", func() {
		gomega.Expect(rolePermissionCodes(rbac.RoleTester)).ToNot(gomega.ContainElement("tasks.assign"))
		gomega.Expect(rolePermissionCodes(rbac.RoleDeveloper)).To(gomega.ContainElement("tasks.assign"))
	})

	ginkgo.It("describes every builtin role", func() {
		for role := range builtinRoles {
			gomega.Expect(builtinRoleDescriptions).To(gomega.HaveKey(role))
		}
	})
})

type stubRegistry struct {
	updatedUser     string
	updatedPassword string
}

func (r *stubRegistry) GetByDomainPostfix(_ context.Context, _ string) (*tenantDatamodel.Client, error) {
	return nil, nil
}

func (r *stubRegistry) GetByID(_ context.Context, _ int64) (*tenantDatamodel.Client, error) {
	return nil, nil
}

func (r *stubRegistry) List(_ context.Context) ([]*tenantDatamodel.Client, error) {
	return nil, nil
}

func (r *stubRegistry) ExistsByDomainOrDBName(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (r *stubRegistry) Create(_ context.Context, _ *tenantDatamodel.Client) error {
	return nil
}

func (r *stubRegistry) UpdateCredentials(_ context.Context, _ int64, dbUser, dbPassword string) error {
	r.updatedUser = dbUser
	r.updatedPassword = dbPassword
	return nil
}

type stubConnector struct {
	db *sqlx.DB
}

func (c *stubConnector) Open(_ context.Context, _ *tenantDatamodel.Config) (*sqlx.DB, error) {
	return c.db, nil
}

var _ = ginkgo.Describe("Provision", func() {
	var (
		adminDB     *sqlx.DB
		adminMock   sqlmock.Sqlmock
		tenantDB    *sqlx.DB
		tenantMock  sqlmock.Sqlmock
		registry    *stubRegistry
		provisioner *MySQLProvisioner
		ctx         context.Context
	)

	// expectTenantBootstrap covers the schema and seed phase: every DDL and
	// seed statement is IF NOT EXISTS / INSERT IGNORE, and an established
	// tenant (non-empty users table) gets no admin reseed.
	expectTenantBootstrap := func(mock sqlmock.Sqlmock) {
		mock.MatchExpectationsInOrder(false)
		for range tenantDDL {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
		}
		for range permissionCatalogue {
			mock.ExpectExec("INSERT IGNORE INTO permissions").WillReturnResult(sqlmock.NewResult(0, 1))
		}
		roleID := int64(0)
		for name := range builtinRoles {
			roleID++
			mock.ExpectExec("INSERT IGNORE INTO roles").WillReturnResult(sqlmock.NewResult(roleID, 1))
			mock.ExpectQuery("SELECT id FROM roles WHERE name").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(roleID))
			for range rolePermissionCodes(name) {
				mock.ExpectExec("INSERT IGNORE INTO role_permissions").WillReturnResult(sqlmock.NewResult(0, 1))
			}
		}
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	}

	ginkgo.BeforeEach(func() {
		mockDB, m, err := sqlmock.New()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		adminDB = sqlx.NewDb(mockDB, "sqlmock")
		adminMock = m

		mockDB, m, err = sqlmock.New()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		tenantDB = sqlx.NewDb(mockDB, "sqlmock")
		tenantMock = m
		expectTenantBootstrap(tenantMock)

		registry = &stubRegistry{}
		provisioner = NewMySQLProvisioner("unused", registry, &stubConnector{db: tenantDB}, password.NewHasher(4), logger.L())
		provisioner.openAdmin = func(_ context.Context) (*sqlx.DB, error) {
			return adminDB, nil
		}
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		gomega.Expect(adminMock.ExpectationsWereMet()).To(gomega.Succeed())
		gomega.Expect(tenantMock.ExpectationsWereMet()).To(gomega.Succeed())
	})

	ginkgo.It("reuses existing credentials on a re-run", func() {
		adminMock.ExpectExec("CREATE DATABASE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
		adminMock.ExpectExec("CREATE USER IF NOT EXISTS 'tenant_7'@'%' IDENTIFIED BY 'existing-secret'").
			WillReturnResult(sqlmock.NewResult(0, 0))
		adminMock.ExpectExec("GRANT ALL PRIVILEGES").WillReturnResult(sqlmock.NewResult(0, 0))
		adminMock.ExpectExec("FLUSH PRIVILEGES").WillReturnResult(sqlmock.NewResult(0, 0))

		client := &tenantDatamodel.Client{
			ID:            7,
			DomainPostfix: "@acme.com",
			DBName:        "acme_db",
			DBUser:        "tenant_7",
			DBPassword:    "existing-secret",
		}

		dbUser, dbPassword, err := provisioner.Provision(ctx, client)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(dbUser).To(gomega.Equal("tenant_7"))
		gomega.Expect(dbPassword).To(gomega.Equal("existing-secret"))
		gomega.Expect(registry.updatedUser).To(gomega.Equal("tenant_7"))
		gomega.Expect(registry.updatedPassword).To(gomega.Equal("existing-secret"))
	})

	ginkgo.It("generates credentials only when the tenant has none", func() {
		adminMock.ExpectExec("CREATE DATABASE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
		adminMock.ExpectExec("CREATE USER IF NOT EXISTS 'tenant_42'@").WillReturnResult(sqlmock.NewResult(0, 0))
		adminMock.ExpectExec("GRANT ALL PRIVILEGES").WillReturnResult(sqlmock.NewResult(0, 0))
		adminMock.ExpectExec("FLUSH PRIVILEGES").WillReturnResult(sqlmock.NewResult(0, 0))

		client := &tenantDatamodel.Client{
			ID:            42,
			DomainPostfix: "@initech.com",
			DBName:        "initech_db",
		}

		dbUser, dbPassword, err := provisioner.Provision(ctx, client)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(dbUser).To(gomega.Equal("tenant_42"))
		gomega.Expect(dbPassword).To(gomega.HaveLen(generatedPasswordLength))
		for _, r := range dbPassword {
			gomega.Expect(strings.ContainsRune(passwordAlphabet, r)).To(gomega.BeTrue())
		}
		gomega.Expect(registry.updatedPassword).To(gomega.Equal(dbPassword))
	})
})
